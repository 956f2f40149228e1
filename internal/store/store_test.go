package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/ecoprofiler/internal/model"
)

func TestStore_AlertsRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	alerts := []model.ForestAlert{
		{Latitude: 0.79, Longitude: 101.34, Date: "2026-02-01", Confidence: 0.8, AreaHa: 1.5, AlertType: "GLAD-L"},
		{Latitude: 0.81, Longitude: 101.36, Date: "2026-02-03", AlertType: "GLAD-S2"},
	}
	require.NoError(t, s.SaveAlerts("Sumatra", alerts))

	loaded, err := s.LoadAlerts("sumatra")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, alerts[0], loaded[0])
	assert.Equal(t, "GLAD-S2", loaded[1].AlertType)
}

func TestStore_LoadAlerts_MissingIsEmpty(t *testing.T) {
	s := NewStore(t.TempDir())

	alerts, err := s.LoadAlerts("nowhere")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestStore_LoadAlerts_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	csv := "latitude,longitude,date,confidence,area,alert_type\n" +
		"not-a-number,101.3,2026-02-01,0.8,1.0,GLAD-L\n" +
		"0.79,101.34,2026-02-02,0.9,2.0,GLAD-L\n" +
		"0.80,101.35\n"
	path := filepath.Join(dir, "alerts", "sumatra_glad.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	alerts, err := s.LoadAlerts("sumatra")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "2026-02-02", alerts[0].Date)
}

func TestStore_CompaniesAndBusinessesRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	companies := []model.Company{
		{Name: "Borneo Timber Ltd", Industry: "logging", Sanctioned: true},
	}
	businesses := []model.Business{
		{ID: 42, Type: "node", Lat: 0.9, Lon: 114.5, Tags: map[string]string{"landuse": "industrial"}},
	}
	require.NoError(t, s.SaveCompanies("borneo", companies))
	require.NoError(t, s.SaveBusinesses("borneo", businesses))

	gotC, err := s.LoadCompanies("borneo")
	require.NoError(t, err)
	assert.Equal(t, companies, gotC)

	gotB, err := s.LoadBusinesses("borneo")
	require.NoError(t, err)
	assert.Equal(t, businesses, gotB)
}

func TestStore_PostsRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	posts := []model.SocialPost{
		{ID: "abc", Title: "illegal logging spotted", Channel: "environment", Sentiment: -0.4},
	}
	require.NoError(t, s.SavePosts("amazon", posts))

	got, err := s.LoadPosts("amazon")
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestStore_ListRegions(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.SaveAlerts("sumatra", nil))
	require.NoError(t, s.SaveCompanies("borneo", nil))
	require.NoError(t, s.SavePosts("amazon", nil))

	regions, err := s.ListRegions()
	require.NoError(t, err)
	assert.Equal(t, []string{"amazon", "borneo", "sumatra"}, regions)
}

func TestStore_ReportPathAndImage(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	path, err := s.ReportPath("New Guinea", "md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "new_guinea_report.md"), path)

	imgPath, err := s.SaveImage("sumatra", "true_color", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	data, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}
