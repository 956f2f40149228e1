package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/url"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/timeutil"
)

const (
	defaultSentinelTokenURL   = "https://services.sentinel-hub.com/oauth/token"
	defaultSentinelProcessURL = "https://services.sentinel-hub.com/api/v1/process"

	maxImageDimension = 2500
)

// trueColorEvalscript renders Sentinel-2 L2A bands as natural color.
const trueColorEvalscript = `//VERSION=3
function setup() {
  return {
    input: [{ bands: ["B02", "B03", "B04"], units: "REFLECTANCE" }],
    output: { bands: 3 }
  };
}
function evaluatePixel(sample) {
  return [2.5 * sample.B04, 2.5 * sample.B03, 2.5 * sample.B02];
}`

// ndviEvalscript maps the vegetation index onto a fixed color ramp.
const ndviEvalscript = `//VERSION=3
function setup() {
  return {
    input: [{ bands: ["B04", "B08"], units: "REFLECTANCE" }],
    output: { bands: 3, sampleType: "AUTO" }
  };
}
function evaluatePixel(sample) {
  let ndvi = (sample.B08 - sample.B04) / (sample.B08 + sample.B04);
  if (ndvi < -0.2) return [0, 0, 0.3];
  if (ndvi < 0.0) return [0.5, 0.4, 0.3];
  if (ndvi < 0.1) return [0.8, 0.8, 0.4];
  if (ndvi < 0.3) return [0.5, 0.7, 0.3];
  if (ndvi < 0.5) return [0.3, 0.6, 0.2];
  if (ndvi < 0.7) return [0.1, 0.5, 0.1];
  return [0.0, 0.4, 0.0];
}`

// SatelliteImage is a named, legend-annotated PNG ready to persist.
type SatelliteImage struct {
	Name string
	PNG  []byte
}

// SatelliteClient fetches Sentinel-2 imagery through the Sentinel Hub
// process API. Without credentials Fetch returns no images and no error.
type SatelliteClient struct {
	client     *Client
	tokenURL   string
	processURL string
	cfg        model.SatelliteConfig
}

// NewSatelliteClient creates an imagery fetcher. Empty URLs select the
// public Sentinel Hub endpoints.
func NewSatelliteClient(client *Client, tokenURL, processURL string, cfg model.SatelliteConfig) *SatelliteClient {
	if tokenURL == "" {
		tokenURL = defaultSentinelTokenURL
	}
	if processURL == "" {
		processURL = defaultSentinelProcessURL
	}
	return &SatelliteClient{
		client:     client,
		tokenURL:   tokenURL,
		processURL: processURL,
		cfg:        cfg,
	}
}

// Fetch downloads true color and, when configured, NDVI imagery for the
// area and composites an explanatory legend under each image.
func (s *SatelliteClient) Fetch(ctx context.Context, center geo.Point, radiusKM float64, daysBack int) ([]SatelliteImage, error) {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return nil, nil
	}

	token, err := s.authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("sentinel hub auth: %w", err)
	}

	box := geo.BoundingBox(center, radiusKM)
	width, height := imageDimensions(box, s.cfg.ResolutionM)

	var images []SatelliteImage

	trueColor, err := s.process(ctx, token, box, width, height, daysBack, trueColorEvalscript)
	if err != nil {
		return nil, fmt.Errorf("true color imagery: %w", err)
	}
	annotated, err := addLegend(trueColor, trueColorLegend())
	if err != nil {
		annotated = trueColor
	}
	images = append(images, SatelliteImage{Name: "true_color", PNG: annotated})

	if s.cfg.IncludeNDVI {
		ndvi, err := s.process(ctx, token, box, width, height, daysBack, ndviEvalscript)
		if err != nil {
			return images, fmt.Errorf("ndvi imagery: %w", err)
		}
		annotated, err := addLegend(ndvi, ndviLegend())
		if err != nil {
			annotated = ndvi
		}
		images = append(images, SatelliteImage{Name: "ndvi", PNG: annotated})
	}
	return images, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *SatelliteClient) authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	body, err := s.client.PostNoCache(ctx, s.tokenURL, "application/x-www-form-urlencoded", []byte(form.Encode()), nil)
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return resp.AccessToken, nil
}

func (s *SatelliteClient) process(ctx context.Context, token string, box geo.BBox, width, height, daysBack int, evalscript string) ([]byte, error) {
	now := timeutil.Clock().Now().UTC()
	from := now.AddDate(0, 0, -daysBack).Format("2006-01-02") + "T00:00:00Z"
	to := now.Format("2006-01-02") + "T23:59:59Z"

	request := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"bbox": []float64{box.MinLon, box.MinLat, box.MaxLon, box.MaxLat},
			},
			"data": []map[string]interface{}{{
				"type": "sentinel-2-l2a",
				"dataFilter": map[string]interface{}{
					"timeRange":       map[string]string{"from": from, "to": to},
					"mosaickingOrder": "mostRecent",
				},
			}},
		},
		"output": map[string]interface{}{
			"width":  width,
			"height": height,
			"responses": []map[string]interface{}{{
				"identifier": "default",
				"format":     map[string]string{"type": "image/png"},
			}},
		},
		"evalscript": evalscript,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal process request: %w", err)
	}

	return s.client.PostNoCache(ctx, s.processURL, "application/json", payload, map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "image/png",
	})
}

// imageDimensions converts the box extent to pixels at the configured
// ground resolution, clamped to the API's size ceiling.
func imageDimensions(box geo.BBox, resolutionM int) (int, int) {
	if resolutionM <= 0 {
		resolutionM = 50
	}
	widthM := (box.MaxLon - box.MinLon) * 111_000
	heightM := (box.MaxLat - box.MinLat) * 111_000

	width := int(widthM) / resolutionM
	height := int(heightM) / resolutionM
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width > maxImageDimension {
		width = maxImageDimension
	}
	if height > maxImageDimension {
		height = maxImageDimension
	}
	return width, height
}

type legend struct {
	Title string
	Items []legendItem
}

type legendItem struct {
	Color color.RGBA
	Label string
}

func trueColorLegend() legend {
	return legend{
		Title: "True Color Satellite Imagery (B04/B03/B02)",
		Items: []legendItem{
			{Color: color.RGBA{0, 100, 0, 255}, Label: "Vegetation"},
			{Color: color.RGBA{100, 100, 100, 255}, Label: "Urban areas"},
			{Color: color.RGBA{0, 0, 150, 255}, Label: "Water bodies"},
			{Color: color.RGBA{150, 150, 100, 255}, Label: "Bare soil"},
		},
	}
}

func ndviLegend() legend {
	return legend{
		Title: "NDVI Vegetation Index (-1.0 to +1.0)",
		Items: []legendItem{
			{Color: color.RGBA{0, 0, 100, 255}, Label: "Water (< -0.2)"},
			{Color: color.RGBA{150, 120, 100, 255}, Label: "Bare soil / urban (0.0 to 0.1)"},
			{Color: color.RGBA{200, 200, 100, 255}, Label: "Sparse vegetation (0.1 to 0.3)"},
			{Color: color.RGBA{100, 180, 100, 255}, Label: "Moderate vegetation (0.3 to 0.5)"},
			{Color: color.RGBA{0, 150, 0, 255}, Label: "Dense vegetation (0.5 to 0.7)"},
			{Color: color.RGBA{0, 100, 0, 255}, Label: "Very dense vegetation (> 0.7)"},
		},
	}
}

// addLegend decodes a PNG and appends a white legend strip below it with
// a color box per item.
func addLegend(pngData []byte, l legend) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode imagery png: %w", err)
	}

	const rowHeight = 22
	bounds := src.Bounds()
	legendHeight := rowHeight*(len(l.Items)+1) + 10

	combined := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()+legendHeight))
	draw.Draw(combined, bounds, src, bounds.Min, draw.Src)
	draw.Draw(combined, image.Rect(0, bounds.Dy(), bounds.Dx(), bounds.Dy()+legendHeight),
		image.NewUniform(color.White), image.Point{}, draw.Src)

	drawText(combined, 10, bounds.Dy()+15, l.Title, color.RGBA{0, 0, 0, 255})

	y := bounds.Dy() + rowHeight + 5
	for _, item := range l.Items {
		swatch := image.Rect(10, y, 26, y+16)
		draw.Draw(combined, swatch, image.NewUniform(item.Color), image.Point{}, draw.Src)
		drawText(combined, 34, y+12, item.Label, color.RGBA{0, 0, 0, 255})
		y += rowHeight
	}

	var out bytes.Buffer
	if err := png.Encode(&out, combined); err != nil {
		return nil, fmt.Errorf("encode annotated png: %w", err)
	}
	return out.Bytes(), nil
}

func drawText(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
