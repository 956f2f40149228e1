package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/cache"
	"github.com/osintlab/ecoprofiler/internal/fetch"
	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/llm"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/report"
	"github.com/osintlab/ecoprofiler/internal/risk"
	"github.com/osintlab/ecoprofiler/internal/store"
	"github.com/osintlab/ecoprofiler/internal/timeutil"
	"github.com/osintlab/ecoprofiler/internal/util"
	"github.com/osintlab/ecoprofiler/internal/worker"
)

// Pipeline orchestrates the complete profiling run: geocode, fetch the
// four sources concurrently, snapshot, score, assemble, render.
type Pipeline struct {
	geocoder   *geo.Geocoder
	forest     *fetch.ForestClient
	registry   *fetch.RegistryClient
	osm        *fetch.OSMClient
	social     *fetch.SocialClient
	satellite  *fetch.SatelliteClient
	engine     *risk.Engine
	assembler  *report.Assembler
	renderer   *report.Renderer
	store      *store.Store
	summarizer *llm.Summarizer // Optional LLM summarizer (nil provider if disabled)
	config     *model.Config
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg *model.Config) *Pipeline {
	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cacheDir(cfg), cfg.Cache.DiskTTL)
	}

	client := fetch.NewClient(cfg, responseCache)
	// Overpass mirrors and Reddit both throttle aggressive anonymous
	// clients, so hold them well under the default rate.
	client.SetDomainRate("overpass-api.de", 0.5, 1)
	client.SetDomainRate("www.reddit.com", 1, 2)
	robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		geocoder:   geo.NewGeocoder(nil, "", cfg.HTTP.UserAgent),
		forest:     fetch.NewForestClient(client, "", os.Getenv("GFW_API_KEY")),
		registry:   fetch.NewRegistryClient(client, "", "", "", cfg.Concurrency.EnrichmentWorkers),
		osm:        fetch.NewOSMClient(client, ""),
		social:     fetch.NewSocialClient(client, robots, "", cfg.Social, cfg.Output.Verbose),
		satellite:  fetch.NewSatelliteClient(client, "", "", cfg.Satellite),
		engine:     risk.NewEngine(),
		assembler:  report.NewAssembler(cfg.Output.TopPosts, cfg.Output.TopCompanies),
		renderer:   report.NewRenderer(cfg.Output.IncludeFooter),
		store:      store.NewStore(cfg.Analysis.DataDir),
		summarizer: summarizer,
		config:     cfg,
	}
}

func cacheDir(cfg *model.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ecoprofiler-cache"
	}
	return filepath.Join(home, ".ecoprofiler", "cache")
}

// sourceKind identifies one of the concurrently fetched collections.
type sourceKind int

const (
	sourceForest sourceKind = iota
	sourceRegistry
	sourceOSM
	sourceSocial
)

type fetchJob struct {
	kind sourceKind
	run  func(ctx context.Context) (interface{}, error)
}

type fetchResult struct {
	kind    sourceKind
	payload interface{}
	err     error
}

func (r fetchResult) GetError() error { return r.err }

func (j fetchJob) Execute(ctx context.Context) worker.Result {
	payload, err := j.run(ctx)
	return fetchResult{kind: j.kind, payload: payload, err: err}
}

// ProfileRegion geocodes a region name and runs the full pipeline.
// Only geocoding failure aborts the run.
func (p *Pipeline) ProfileRegion(ctx context.Context, region string) (*model.Profile, error) {
	center, err := p.geocoder.Resolve(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("resolve region %q: %w", region, err)
	}
	return p.ProfileAt(ctx, region, center)
}

// ProfileAt runs the full pipeline for an explicit center point,
// bypassing geocoding. A failing source degrades to an empty collection.
func (p *Pipeline) ProfileAt(ctx context.Context, region string, center geo.Point) (*model.Profile, error) {
	radiusKM := p.config.Analysis.RadiusKM
	if max := p.config.Analysis.MaxRadiusKM; max > 0 && radiusKM > max {
		radiusKM = max
	}
	daysBack := p.config.Analysis.DaysBack

	p.logf("Profiling %s at (%.4f, %.4f), radius %dkm, last %d days",
		region, center.Latitude, center.Longitude, radiusKM, daysBack)

	pool := worker.NewPool(p.config.Concurrency.Workers)
	pool.Start()
	pool.Submit(fetchJob{kind: sourceForest, run: func(ctx context.Context) (interface{}, error) {
		return p.forest.Fetch(ctx, center, float64(radiusKM), daysBack)
	}})
	pool.Submit(fetchJob{kind: sourceRegistry, run: func(ctx context.Context) (interface{}, error) {
		return p.registry.Fetch(ctx, center, float64(radiusKM))
	}})
	if p.config.Analysis.IncludeOSM {
		pool.Submit(fetchJob{kind: sourceOSM, run: func(ctx context.Context) (interface{}, error) {
			return p.osm.Fetch(ctx, center, float64(radiusKM))
		}})
	}
	pool.Submit(fetchJob{kind: sourceSocial, run: func(ctx context.Context) (interface{}, error) {
		return p.social.Fetch(ctx, region)
	}})

	var (
		alerts     []model.ForestAlert
		companies  []model.Company
		businesses []model.Business
		posts      []model.SocialPost
	)
	for _, res := range pool.Wait() {
		fr, ok := res.(fetchResult)
		if !ok {
			continue
		}
		if fr.err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s fetch failed: %v\n", sourceName(fr.kind), fr.err)
			continue
		}
		switch fr.kind {
		case sourceForest:
			alerts, _ = fr.payload.([]model.ForestAlert)
		case sourceRegistry:
			companies, _ = fr.payload.([]model.Company)
		case sourceOSM:
			businesses, _ = fr.payload.([]model.Business)
		case sourceSocial:
			posts, _ = fr.payload.([]model.SocialPost)
		}
	}

	// Satellite imagery is best-effort and never affects the score.
	var imagePaths []string
	if p.config.Analysis.IncludeSatellite {
		images, err := p.satellite.Fetch(ctx, center, float64(radiusKM), daysBack)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: satellite fetch failed: %v\n", err)
		}
		for _, img := range images {
			path, err := p.store.SaveImage(region, img.Name, img.PNG)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: save satellite image: %v\n", err)
				continue
			}
			imagePaths = append(imagePaths, path)
		}
	}

	p.snapshot(region, alerts, companies, businesses, posts)

	profile := p.buildProfile(region, center, radiusKM, daysBack, alerts, companies, posts, businesses)
	profile.SatelliteImages = imagePaths

	// LLM narrative runs AFTER scoring so it can never affect the result.
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			profile.LLM = summary
		}
	}

	return profile, nil
}

// ReportFromSnapshot rebuilds a profile from stored snapshots without
// refetching. Scores reflect the snapshot contents as of now.
func (p *Pipeline) ReportFromSnapshot(ctx context.Context, region string) (*model.Profile, error) {
	alerts, err := p.store.LoadAlerts(region)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	companies, err := p.store.LoadCompanies(region)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	businesses, err := p.store.LoadBusinesses(region)
	if err != nil {
		return nil, fmt.Errorf("load businesses: %w", err)
	}
	posts, err := p.store.LoadPosts(region)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	if len(alerts) == 0 && len(companies) == 0 && len(businesses) == 0 && len(posts) == 0 {
		return nil, fmt.Errorf("no snapshot data for region %q (run profile first)", region)
	}

	var center geo.Point
	if resolved, err := p.geocoder.Resolve(ctx, region); err == nil {
		center = resolved
	}

	return p.buildProfile(region, center, p.config.Analysis.RadiusKM, p.config.Analysis.DaysBack,
		alerts, companies, posts, businesses), nil
}

func (p *Pipeline) buildProfile(region string, center geo.Point, radiusKM, daysBack int,
	alerts []model.ForestAlert, companies []model.Company, posts []model.SocialPost, businesses []model.Business) *model.Profile {

	assessment := p.engine.Score(alerts, companies, posts, businesses)
	sections := p.assembler.Assemble(alerts, companies, posts, businesses, region, radiusKM, assessment)

	return &model.Profile{
		Region:      region,
		Latitude:    center.Latitude,
		Longitude:   center.Longitude,
		RadiusKM:    radiusKM,
		DaysBack:    daysBack,
		GeneratedAt: timeutil.Clock().Now().UTC(),
		Alerts:      alerts,
		Companies:   companies,
		Posts:       posts,
		Businesses:  businesses,
		Risk:        assessment,
		Sections:    sections,
	}
}

func (p *Pipeline) snapshot(region string, alerts []model.ForestAlert, companies []model.Company,
	businesses []model.Business, posts []model.SocialPost) {

	if err := p.store.SaveAlerts(region, alerts); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: save alerts snapshot: %v\n", err)
	}
	if err := p.store.SaveCompanies(region, companies); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: save companies snapshot: %v\n", err)
	}
	if err := p.store.SaveBusinesses(region, businesses); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: save businesses snapshot: %v\n", err)
	}
	if err := p.store.SavePosts(region, posts); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: save posts snapshot: %v\n", err)
	}
}

// RenderProfile writes the profile to the requested outputs and prints
// the terminal summary.
func (p *Pipeline) RenderProfile(profile *model.Profile, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(profile, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(profile, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote Markdown: %s\n", mdPath)
		}
	}

	// LLM narrative goes to a separate file so the scored report stays
	// clearly delineated from generated prose.
	if profile.LLM != nil && profile.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderNarrative(llm.RenderSeparateMarkdown(profile.LLM), llmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("Wrote LLM summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(os.Stdout, profile)
	return nil
}

// Store exposes the snapshot store for commands that inspect it directly.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

func sourceName(kind sourceKind) string {
	switch kind {
	case sourceForest:
		return "forest alerts"
	case sourceRegistry:
		return "company registry"
	case sourceOSM:
		return "mapped businesses"
	case sourceSocial:
		return "social posts"
	}
	return "unknown"
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
