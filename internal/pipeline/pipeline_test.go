package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/ecoprofiler/internal/fetch"
	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/report"
	"github.com/osintlab/ecoprofiler/internal/risk"
	"github.com/osintlab/ecoprofiler/internal/store"
)

// newTestPipeline wires every adapter to the given mux so a full run
// touches no external hosts.
func newTestPipeline(t *testing.T, mux *http.ServeMux) *Pipeline {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.BurstSize = 1000
	cfg.Cache.Enabled = false
	cfg.Analysis.DataDir = t.TempDir()
	cfg.Social.SearchTerms = []string{"deforestation"}

	client := fetch.NewClient(cfg, nil)

	return &Pipeline{
		geocoder:  geo.NewGeocoder(server.Client(), server.URL, cfg.HTTP.UserAgent),
		forest:    fetch.NewForestClient(client, server.URL, ""),
		registry:  fetch.NewRegistryClient(client, server.URL+"/sparql", server.URL+"/lei-records", server.URL+"/os-search", 2),
		osm:       fetch.NewOSMClient(client, server.URL+"/overpass"),
		social:    fetch.NewSocialClient(client, nil, server.URL, cfg.Social, false),
		satellite: fetch.NewSatelliteClient(client, server.URL+"/oauth", server.URL+"/process", cfg.Satellite),
		engine:    risk.NewEngine(),
		assembler: report.NewAssembler(cfg.Output.TopPosts, cfg.Output.TopCompanies),
		renderer:  report.NewRenderer(cfg.Output.IncludeFooter),
		store:     store.NewStore(cfg.Analysis.DataDir),
		config:    cfg,
	}
}

func testMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/dataset/umd_glad_landsat_alerts/latest/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"latitude":0.8,"longitude":101.3,"umd_glad_landsat_alerts__date":"2026-02-01","umd_glad_landsat_alerts__confidence":"high","area__ha":1.0},
			{"latitude":0.81,"longitude":101.31,"umd_glad_landsat_alerts__date":"2026-02-02","umd_glad_landsat_alerts__confidence":"high","area__ha":2.0}
		]}`)
	})
	mux.HandleFunc("/sparql", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":{"bindings":[
			{"company":{"value":"http://www.wikidata.org/entity/Q1"},"companyLabel":{"value":"Sanctioned Timber"},"industryLabel":{"value":"Logging"},"founded":{"value":"1990"},"locationLabel":{"value":"Riau"}}
		]}}`)
	})
	mux.HandleFunc("/lei-records", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	mux.HandleFunc("/os-search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"hit"}]}`)
	})
	mux.HandleFunc("/overpass", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements":[
			{"id":1,"type":"node","lat":0.8,"lon":101.3,"tags":{"landuse":"industrial"}}
		]}`)
	})
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"id":"p1","title":"Illegal logging is devastating the forest","subreddit":"environment","score":10}}
		]}}`)
	})
	return mux
}

func TestPipeline_ProfileRegion(t *testing.T) {
	p := newTestPipeline(t, testMux())

	profile, err := p.ProfileRegion(context.Background(), "sumatra")
	require.NoError(t, err)

	assert.Equal(t, "sumatra", profile.Region)
	assert.InDelta(t, 0.7893, profile.Latitude, 1e-6, "gazetteer regions skip the geocoder")
	require.Len(t, profile.Alerts, 2)
	require.Len(t, profile.Companies, 1)
	require.Len(t, profile.Businesses, 1)
	require.Len(t, profile.Posts, 1)

	// forest 2*2 + corporate 15 + social 20 (all posts negative) + industrial 2
	assert.InDelta(t, 41, profile.Risk.Score, 0.001)
	assert.Equal(t, model.TierHigh, profile.Risk.Tier)
	assert.Len(t, profile.Sections, 5)
	assert.Empty(t, profile.SatelliteImages, "no credentials means no imagery")

	// Snapshots should be written for every source.
	regions, err := p.store.ListRegions()
	require.NoError(t, err)
	assert.Equal(t, []string{"sumatra"}, regions)
}

func TestPipeline_ProfileRegion_SourceFailureDegradesToEmpty(t *testing.T) {
	mux := testMux()
	failing := http.NewServeMux()
	failing.HandleFunc("/sparql", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	failing.Handle("/", mux)

	p := newTestPipeline(t, failing)

	profile, err := p.ProfileRegion(context.Background(), "sumatra")
	require.NoError(t, err, "a failing source must not abort the run")

	assert.Empty(t, profile.Companies)
	assert.Len(t, profile.Alerts, 2, "other sources are unaffected")
	// Without the sanctioned company: forest 4 + social 20 + industrial 2.
	assert.InDelta(t, 26, profile.Risk.Score, 0.001)
}

func TestPipeline_ProfileAt_BypassesGeocoding(t *testing.T) {
	p := newTestPipeline(t, testMux())

	center := geo.Point{Latitude: 1.23, Longitude: -56.77}
	profile, err := p.ProfileAt(context.Background(), "coords_123_-5677", center)
	require.NoError(t, err)

	assert.Equal(t, "coords_123_-5677", profile.Region)
	assert.InDelta(t, 1.23, profile.Latitude, 1e-9)
	assert.InDelta(t, -56.77, profile.Longitude, 1e-9)
}

func TestPipeline_ProfileRegion_SkipsOSMWhenExcluded(t *testing.T) {
	p := newTestPipeline(t, testMux())
	p.config.Analysis.IncludeOSM = false

	profile, err := p.ProfileRegion(context.Background(), "sumatra")
	require.NoError(t, err)

	assert.Empty(t, profile.Businesses)
	// No industrial component: forest 4 + corporate 15 + social 20.
	assert.InDelta(t, 39, profile.Risk.Score, 0.001)
}

func TestPipeline_ReportFromSnapshot(t *testing.T) {
	p := newTestPipeline(t, testMux())

	_, err := p.ProfileRegion(context.Background(), "sumatra")
	require.NoError(t, err)

	rebuilt, err := p.ReportFromSnapshot(context.Background(), "sumatra")
	require.NoError(t, err)

	assert.InDelta(t, 41, rebuilt.Risk.Score, 0.001)
	assert.Len(t, rebuilt.Sections, 5)
	assert.Len(t, rebuilt.Alerts, 2)
}

func TestPipeline_ReportFromSnapshot_NoData(t *testing.T) {
	p := newTestPipeline(t, testMux())

	_, err := p.ReportFromSnapshot(context.Background(), "atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot data")
}
