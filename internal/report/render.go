package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Renderer writes a profile to its output formats. Both formats render
// the same assembled sections, so the figures in each are identical.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the complete profile as indented JSON.
func (r *Renderer) RenderJSON(profile *model.Profile, path string) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report sections as a Markdown document.
func (r *Renderer) RenderMarkdown(profile *model.Profile, path string) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# EcoProfiler Intelligence Report: %s\n\n", profile.Region))
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", profile.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString("Data sources: Global Forest Watch (GLAD), Wikidata, GLEIF, OpenSanctions, OpenStreetMap, Reddit, Sentinel Hub.\n\n")

	for _, section := range profile.Sections {
		b.WriteString(fmt.Sprintf("## %s\n\n", section.Heading))
		for _, para := range section.Body {
			b.WriteString(para)
			b.WriteString("\n\n")
		}
		if section.Table != nil {
			writeMarkdownTable(&b, section.Table)
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by EcoProfiler from open data only.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderNarrative writes pre-rendered LLM narrative markdown to its own
// file, kept separate from the scored report. Empty input is a no-op.
func (r *Renderer) RenderNarrative(markdown, path string) error {
	if markdown == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write narrative: %w", err)
	}
	return nil
}

// RenderSummary prints the run summary to w in the terminal format.
func (r *Renderer) RenderSummary(w io.Writer, profile *model.Profile) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  EcoProfiler: %s\n", profile.Region)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Risk:        %s (%.1f/100)\n", profile.Risk.Tier, profile.Risk.Score)
	fmt.Fprintf(w, "  Alerts:      %d\n", len(profile.Alerts))
	fmt.Fprintf(w, "  Companies:   %d\n", len(profile.Companies))
	fmt.Fprintf(w, "  Businesses:  %d\n", len(profile.Businesses))
	fmt.Fprintf(w, "  Posts:       %d\n", len(profile.Posts))
	fmt.Fprintf(w, "\n")
	for _, sig := range profile.Risk.Signals {
		fmt.Fprintf(w, "  [%s] %s\n", sig.Severity, sig.Description)
	}
	fmt.Fprintf(w, "\n")
}

func writeMarkdownTable(b *strings.Builder, table *model.Table) {
	b.WriteString("| " + strings.Join(table.Header, " | ") + " |\n")

	sep := make([]string, len(table.Header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range table.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
}
