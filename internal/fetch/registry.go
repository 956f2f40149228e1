package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/worker"
)

const (
	defaultWikidataURL      = "https://query.wikidata.org/sparql"
	defaultGLEIFURL         = "https://api.gleif.org/api/v1/lei-records"
	defaultOpenSanctionsURL = "https://api.opensanctions.org/search/default"

	wikidataLimit = 20
)

// RegistryClient discovers companies near a location via Wikidata and
// enriches each with a GLEIF LEI lookup and an OpenSanctions screen.
type RegistryClient struct {
	client            *Client
	wikidataURL       string
	gleifURL          string
	openSanctionsURL  string
	enrichmentWorkers int
}

// NewRegistryClient creates a registry searcher. Empty URLs select the
// public endpoints.
func NewRegistryClient(client *Client, wikidataURL, gleifURL, openSanctionsURL string, enrichmentWorkers int) *RegistryClient {
	if wikidataURL == "" {
		wikidataURL = defaultWikidataURL
	}
	if gleifURL == "" {
		gleifURL = defaultGLEIFURL
	}
	if openSanctionsURL == "" {
		openSanctionsURL = defaultOpenSanctionsURL
	}
	if enrichmentWorkers <= 0 {
		enrichmentWorkers = 1
	}
	return &RegistryClient{
		client:            client,
		wikidataURL:       wikidataURL,
		gleifURL:          strings.TrimRight(gleifURL, "/"),
		openSanctionsURL:  openSanctionsURL,
		enrichmentWorkers: enrichmentWorkers,
	}
}

// Fetch returns companies near center, enriched concurrently.
func (r *RegistryClient) Fetch(ctx context.Context, center geo.Point, radiusKM float64) ([]model.Company, error) {
	companies, err := r.searchWikidata(ctx, center, radiusKM)
	if err != nil {
		return nil, err
	}
	return r.enrich(ctx, companies), nil
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (r *RegistryClient) searchWikidata(ctx context.Context, center geo.Point, radiusKM float64) ([]model.Company, error) {
	query := fmt.Sprintf(`SELECT DISTINCT ?company ?companyLabel ?industryLabel ?founded ?locationLabel WHERE {
  SERVICE wikibase:around {
    ?company wdt:P625 ?coord .
    bd:serviceParam wikibase:center "Point(%f %f)"^^geo:wktLiteral .
    bd:serviceParam wikibase:radius "%f" .
  }
  ?company wdt:P31/wdt:P279* wd:Q43229 .
  OPTIONAL { ?company wdt:P452 ?industry . }
  OPTIONAL { ?company wdt:P571 ?founded . }
  OPTIONAL { ?company wdt:P276 ?location . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT %d`, center.Longitude, center.Latitude, radiusKM, wikidataLimit)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	body, err := r.client.Get(ctx, r.wikidataURL+"?"+params.Encode(), map[string]string{
		"Accept": "application/sparql-results+json",
	})
	if err != nil {
		return nil, fmt.Errorf("wikidata query: %w", err)
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse wikidata response: %w", err)
	}

	companies := make([]model.Company, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		name := b["companyLabel"].Value
		if name == "" {
			continue
		}
		entityURI := b["company"].Value
		companies = append(companies, model.Company{
			Name:       name,
			WikidataID: entityURI[strings.LastIndex(entityURI, "/")+1:],
			Industry:   strings.ToLower(b["industryLabel"].Value),
			Founded:    b["founded"].Value,
			Location:   b["locationLabel"].Value,
			Source:     "wikidata",
		})
	}
	return companies, nil
}

type enrichJob struct {
	registry *RegistryClient
	index    int
	company  model.Company
}

type enrichResult struct {
	index   int
	company model.Company
	err     error
}

func (e enrichResult) GetError() error { return e.err }

func (j enrichJob) Execute(ctx context.Context) worker.Result {
	c := j.company

	// Enrichment failures degrade to the bare Wikidata record; a partial
	// company is still worth reporting.
	if lei, err := j.registry.lookupLEI(ctx, c.Name); err == nil && lei != "" {
		c.LEI = lei
		if status, err := j.registry.leiStatus(ctx, lei); err == nil {
			c.Status = status
		}
	}

	sanctioned, err := j.registry.screenSanctions(ctx, c.Name)
	if err == nil {
		c.Sanctioned = sanctioned
	}

	c.ShellCompany = looksLikeShell(c)
	return enrichResult{index: j.index, company: c, err: err}
}

// enrich runs GLEIF and OpenSanctions lookups across the pool, preserving
// the original ordering.
func (r *RegistryClient) enrich(ctx context.Context, companies []model.Company) []model.Company {
	if len(companies) == 0 {
		return companies
	}

	pool := worker.NewPool(r.enrichmentWorkers)
	pool.Start()
	for i, c := range companies {
		pool.Submit(enrichJob{registry: r, index: i, company: c})
	}

	enriched := make([]model.Company, len(companies))
	copy(enriched, companies)
	for _, res := range pool.Wait() {
		if er, ok := res.(enrichResult); ok {
			enriched[er.index] = er.company
		}
	}
	return enriched
}

type gleifSearchResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Entity struct {
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"attributes"`
	} `json:"data"`
}

func (r *RegistryClient) lookupLEI(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("filter[entity.legalName]", name)
	params.Set("page[size]", "1")

	var resp gleifSearchResponse
	if err := r.client.GetJSON(ctx, r.gleifURL+"?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("gleif search: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].ID, nil
}

type gleifRecordResponse struct {
	Data struct {
		Attributes struct {
			Entity struct {
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"attributes"`
	} `json:"data"`
}

func (r *RegistryClient) leiStatus(ctx context.Context, lei string) (string, error) {
	var resp gleifRecordResponse
	if err := r.client.GetJSON(ctx, r.gleifURL+"/"+url.PathEscape(lei), nil, &resp); err != nil {
		return "", fmt.Errorf("gleif record: %w", err)
	}
	return resp.Data.Attributes.Entity.Status, nil
}

type sanctionsResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

func (r *RegistryClient) screenSanctions(ctx context.Context, name string) (bool, error) {
	params := url.Values{}
	params.Set("q", name)

	var resp sanctionsResponse
	if err := r.client.GetJSON(ctx, r.openSanctionsURL+"?"+params.Encode(), nil, &resp); err != nil {
		return false, fmt.Errorf("opensanctions screen: %w", err)
	}
	return len(resp.Results) > 0, nil
}

// looksLikeShell flags companies with no verifiable registration trail:
// no LEI, no founding date, and no registered location.
func looksLikeShell(c model.Company) bool {
	return c.LEI == "" && c.Founded == "" && c.Location == ""
}
