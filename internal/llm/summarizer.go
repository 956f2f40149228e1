package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Summarizer generates optional narrative summaries of risk profiles.
// It never affects scoring: the profile is fully assembled before the
// summarizer ever sees it.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from configuration. An empty
// provider yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider name, or empty when disabled.
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces a narrative for the profile. Failures degrade
// to a summary carrying warnings; they never propagate as errors so a
// broken LLM setup cannot sink a profiling run.
func (s *Summarizer) GenerateSummary(ctx context.Context, profile model.Profile) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:      false,
			Provider:     s.provider.Name(),
			StrictSource: s.config.StrictSource,
			Warnings:     []string{fmt.Sprintf("Provider %s is not available", s.provider.Name())},
		}, nil
	}

	req := SummarizeRequest{
		Profile:    profile,
		SourceURLs: SourceAllowlist(profile),
		Model:      s.config.Model,
		MaxTokens:  s.config.MaxTokens,
	}

	resp, err := s.provider.Summarize(ctx, req)
	if err != nil {
		return &model.LLMSummary{
			Enabled:      true,
			Provider:     s.provider.Name(),
			Model:        s.config.Model,
			StrictSource: s.config.StrictSource,
			Warnings:     []string{fmt.Sprintf("Summary generation failed: %v", err)},
		}, nil
	}

	return &model.LLMSummary{
		Enabled:      true,
		Provider:     s.provider.Name(),
		Model:        resp.Model,
		StrictSource: s.config.StrictSource,
		SummaryMD:    resp.Summary,
		Warnings: []string{
			fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
			fmt.Sprintf("Verified %d citations against the source allowlist", len(resp.CitedURLs)),
		},
	}, nil
}

// SourceAllowlist collects the URLs the narrative may cite: the open
// data endpoints plus the permalinks of fetched posts.
func SourceAllowlist(profile model.Profile) []string {
	urls := []string{
		"https://data-api.globalforestwatch.org",
		"https://query.wikidata.org",
		"https://api.gleif.org",
		"https://www.opensanctions.org",
		"https://www.openstreetmap.org",
	}
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	for _, post := range profile.Posts {
		link := post.URL
		if link == "" && post.Permalink != "" {
			link = "https://www.reddit.com" + post.Permalink
		}
		if link != "" && !seen[link] {
			seen[link] = true
			urls = append(urls, link)
		}
	}
	return urls
}

// RenderSeparateMarkdown renders the narrative as a standalone document,
// clearly marked as generated content.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("# LLM Summary\n\n")
	sb.WriteString("> **GENERATED CONTENT** - This narrative was produced by a language model.\n")
	sb.WriteString("> The risk score and tier were determined independently and are not\n")
	sb.WriteString("> influenced by this text.\n\n")

	fmt.Fprintf(&sb, "- Provider: %s\n", summary.Provider)
	fmt.Fprintf(&sb, "- Model: %s\n", summary.Model)
	fmt.Fprintf(&sb, "- Strict Source Mode: %t\n\n", summary.StrictSource)

	if summary.SummaryMD != "" {
		sb.WriteString(summary.SummaryMD)
		sb.WriteString("\n")
	} else {
		sb.WriteString("No summary generated.\n")
	}

	if len(summary.Warnings) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}
