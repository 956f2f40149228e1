package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/timeutil"
)

const (
	defaultForestBaseURL = "https://data-api.globalforestwatch.org"
	gladDataset          = "umd_glad_landsat_alerts"
)

// ForestClient fetches GLAD deforestation alerts from the Global Forest
// Watch data API.
type ForestClient struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewForestClient creates a GLAD alert fetcher. baseURL may be empty to
// use the public API. apiKey is optional; without it GFW serves a reduced
// rate tier.
func NewForestClient(client *Client, baseURL, apiKey string) *ForestClient {
	if baseURL == "" {
		baseURL = defaultForestBaseURL
	}
	return &ForestClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type gladQuery struct {
	SQL      string        `json:"sql"`
	Geometry *gladGeometry `json:"geometry,omitempty"`
}

type gladGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type gladResponse struct {
	Data []struct {
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
		Date       string  `json:"umd_glad_landsat_alerts__date"`
		Confidence string  `json:"umd_glad_landsat_alerts__confidence"`
		AreaHa     float64 `json:"area__ha"`
	} `json:"data"`
}

// Fetch returns GLAD alerts within radiusKM of center over the last
// daysBack days.
func (f *ForestClient) Fetch(ctx context.Context, center geo.Point, radiusKM float64, daysBack int) ([]model.ForestAlert, error) {
	since := timeutil.Clock().Now().UTC().AddDate(0, 0, -daysBack).Format("2006-01-02")
	box := geo.BoundingBox(center, radiusKM)

	query := gladQuery{
		SQL: fmt.Sprintf(
			"SELECT latitude, longitude, %s__date, %s__confidence, area__ha FROM results WHERE %s__date >= '%s'",
			gladDataset, gladDataset, gladDataset, since,
		),
		Geometry: &gladGeometry{
			Type: "Polygon",
			Coordinates: [][][2]float64{{
				{box.MinLon, box.MinLat},
				{box.MaxLon, box.MinLat},
				{box.MaxLon, box.MaxLat},
				{box.MinLon, box.MaxLat},
				{box.MinLon, box.MinLat},
			}},
		},
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal alert query: %w", err)
	}

	headers := map[string]string{}
	if f.apiKey != "" {
		headers["x-api-key"] = f.apiKey
	}

	url := fmt.Sprintf("%s/dataset/%s/latest/query", f.baseURL, gladDataset)
	body, err := f.client.Post(ctx, url, "application/json", payload, headers)
	if err != nil {
		return nil, fmt.Errorf("query glad alerts: %w", err)
	}

	var resp gladResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse glad response: %w", err)
	}

	alerts := make([]model.ForestAlert, 0, len(resp.Data))
	for _, row := range resp.Data {
		alerts = append(alerts, model.ForestAlert{
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
			Date:       row.Date,
			Confidence: parseConfidence(row.Confidence),
			AreaHa:     row.AreaHa,
			AlertType:  "GLAD-L",
		})
	}
	return alerts, nil
}

// parseConfidence maps the API's nominal confidence labels to [0,1].
// Numeric strings pass through; unknown labels get the shared default.
func parseConfidence(raw string) float64 {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "highest":
		return 0.95
	case "high":
		return 0.9
	case "nominal", "low":
		return 0.7
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
		return v
	}
	return model.DefaultConfidence
}
