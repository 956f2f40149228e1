package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// BBox is a geographic bounding box (south, west, north, east).
type BBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// gazetteer covers the regions most frequently profiled, so the common
// case never touches the network.
var gazetteer = map[string]Point{
	"sumatra": {Latitude: 0.7893, Longitude: 101.3431},
	"amazon":  {Latitude: -3.4653, Longitude: -62.2159},
	"borneo":  {Latitude: 0.9619, Longitude: 114.5548},
	"congo":   {Latitude: -4.0383, Longitude: 21.7587},
}

const degreeKM = 111.0

// Geocoder resolves region names to coordinates, preferring the built-in
// gazetteer and falling back to Nominatim.
type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewGeocoder creates a geocoder. baseURL may be empty to use the public
// Nominatim instance.
func NewGeocoder(client *http.Client, baseURL, userAgent string) *Geocoder {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Geocoder{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// Resolve returns the coordinates for a region name.
func (g *Geocoder) Resolve(ctx context.Context, region string) (Point, error) {
	key := strings.ToLower(strings.TrimSpace(region))
	if p, ok := gazetteer[key]; ok {
		return p, nil
	}
	return g.nominatim(ctx, region)
}

// Known reports whether the region is covered by the built-in gazetteer.
func Known(region string) bool {
	_, ok := gazetteer[strings.ToLower(strings.TrimSpace(region))]
	return ok
}

// GazetteerRegions returns the built-in region names, unsorted.
func GazetteerRegions() []string {
	names := make([]string, 0, len(gazetteer))
	for name := range gazetteer {
		names = append(names, name)
	}
	return names
}

func (g *Geocoder) nominatim(ctx context.Context, region string) (Point, error) {
	q := url.Values{}
	q.Set("q", region)
	q.Set("format", "json")
	q.Set("limit", "1")

	reqURL := g.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Point{}, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode %q: %w", region, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode %q: status %d", region, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Point{}, fmt.Errorf("read geocode response: %w", err)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return Point{}, fmt.Errorf("parse geocode response: %w", err)
	}
	if len(results) == 0 {
		return Point{}, fmt.Errorf("region %q not found", region)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse longitude: %w", err)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

// BoundingBox returns a box of radiusKM around the point. Longitude spread
// widens toward the poles; latitude uses a flat 111 km per degree.
func BoundingBox(center Point, radiusKM float64) BBox {
	latDelta := radiusKM / degreeKM
	lonScale := degreeKM * math.Cos(center.Latitude*math.Pi/180)
	if lonScale < 1 {
		lonScale = 1
	}
	lonDelta := radiusKM / lonScale
	return BBox{
		MinLat: center.Latitude - latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLat: center.Latitude + latDelta,
		MaxLon: center.Longitude + lonDelta,
	}
}
