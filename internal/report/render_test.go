package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/osintlab/ecoprofiler/internal/model"
)

func testProfile() *model.Profile {
	sections := []model.Section{
		{
			Heading: "Executive Summary",
			Body:    []string{"This region shows 2 forest loss alerts."},
			Table: &model.Table{
				Header: []string{"Metric", "Value"},
				Rows:   [][]string{{"Risk Assessment", "MEDIUM (33.0/100)"}},
			},
		},
		{Heading: "Forest Loss Analysis", Body: []string{"No forest loss alert data available for this region."}},
	}
	return &model.Profile{
		Region:      "Sumatra",
		RadiusKM:    20,
		GeneratedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		Risk:        model.RiskAssessment{Score: 33, Tier: model.TierMedium},
		Sections:    sections,
	}
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	renderer := NewRenderer(true)
	path := filepath.Join(t.TempDir(), "report.md")

	if err := renderer.RenderMarkdown(testProfile(), path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rendered file: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# EcoProfiler Intelligence Report: Sumatra",
		"## Executive Summary",
		"| Risk Assessment | MEDIUM (33.0/100) |",
		"## Forest Loss Analysis",
		"No forest loss alert data available for this region.",
		"Generated by EcoProfiler",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderer_JSONAndMarkdownShareFigures(t *testing.T) {
	renderer := NewRenderer(false)
	dir := t.TempDir()
	profile := testProfile()

	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	if err := renderer.RenderJSON(profile, jsonPath); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if err := renderer.RenderMarkdown(profile, mdPath); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	jsonData, _ := os.ReadFile(jsonPath)
	var decoded model.Profile
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("decode rendered JSON: %v", err)
	}

	// Both outputs come from the same section data: the risk figure in
	// the JSON must appear verbatim in the Markdown table.
	mdData, _ := os.ReadFile(mdPath)
	wantRow := decoded.Sections[0].Table.Rows[0][1]
	if !strings.Contains(string(mdData), wantRow) {
		t.Errorf("markdown missing shared figure %q", wantRow)
	}
}

func TestRenderer_RenderSummary(t *testing.T) {
	renderer := NewRenderer(false)

	var buf bytes.Buffer
	renderer.RenderSummary(&buf, testProfile())

	out := buf.String()
	if !strings.Contains(out, "EcoProfiler: Sumatra") {
		t.Errorf("summary missing region: %q", out)
	}
	if !strings.Contains(out, "MEDIUM (33.0/100)") {
		t.Errorf("summary missing risk line: %q", out)
	}
}
