package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
)

const defaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OSMClient fetches mapped businesses around a location from the
// Overpass API.
type OSMClient struct {
	client  *Client
	baseURL string
}

// NewOSMClient creates an Overpass client. baseURL may be empty to use
// the public instance.
func NewOSMClient(client *Client, baseURL string) *OSMClient {
	if baseURL == "" {
		baseURL = defaultOverpassURL
	}
	return &OSMClient{client: client, baseURL: baseURL}
}

type overpassResponse struct {
	Elements []struct {
		ID     int64             `json:"id"`
		Type   string            `json:"type"`
		Lat    float64           `json:"lat"`
		Lon    float64           `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Fetch returns businesses tagged as offices, shops, or industrial sites
// within radiusKM of center. Untagged skeleton elements are dropped.
func (o *OSMClient) Fetch(ctx context.Context, center geo.Point, radiusKM float64) ([]model.Business, error) {
	radiusM := int(radiusKM * 1000)
	var q strings.Builder
	q.WriteString("[out:json];(")
	for _, selector := range []string{`["office"="company"]`, `["shop"]`, `["landuse"="industrial"]`, `["industrial"]`} {
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&q, "%s%s(around:%d,%f,%f);", kind, selector, radiusM, center.Latitude, center.Longitude)
		}
	}
	q.WriteString(");out center;")

	form := url.Values{}
	form.Set("data", q.String())

	body, err := o.client.Post(ctx, o.baseURL, "application/x-www-form-urlencoded", []byte(form.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse overpass response: %w", err)
	}

	businesses := make([]model.Business, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if len(el.Tags) == 0 {
			continue
		}
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		businesses = append(businesses, model.Business{
			ID:   el.ID,
			Type: el.Type,
			Lat:  lat,
			Lon:  lon,
			Tags: el.Tags,
		})
	}
	return businesses, nil
}
