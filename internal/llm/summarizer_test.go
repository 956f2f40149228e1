package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	config := Config{
		Provider: "", // Empty = disabled
	}

	summarizer, err := NewSummarizer(config)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.provider != nil {
		t.Error("Expected provider to be nil when disabled")
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}

	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := &Summarizer{
		provider: nil,
		config:   Config{},
	}

	profile := model.Profile{Region: "sumatra"}

	summary, err := summarizer.GenerateSummary(context.Background(), profile)

	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}

	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: false,
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config:   Config{StrictSource: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), model.Profile{Region: "sumatra"})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}

	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}

	if len(summary.Warnings) == 0 {
		t.Error("Expected warning about provider unavailability")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "not available") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected warning to mention provider unavailability")
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "Forest alert data shows elevated activity.",
			CitedURLs:  []string{"https://data-api.globalforestwatch.org"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config: Config{
			Model:        "test-model",
			StrictSource: true,
		},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), model.Profile{Region: "sumatra"})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary to be generated")
	}

	if !summary.Enabled {
		t.Error("Expected summary to be enabled")
	}

	if summary.Provider != "test-provider" {
		t.Errorf("Expected provider 'test-provider', got '%s'", summary.Provider)
	}

	if summary.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", summary.Model)
	}

	if !summary.StrictSource {
		t.Error("Expected strict source mode to be enabled")
	}

	if summary.SummaryMD != "Forest alert data shows elevated activity." {
		t.Errorf("Expected summary text to match, got '%s'", summary.SummaryMD)
	}

	foundTokens := false
	foundCitations := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "Tokens used") {
			foundTokens = true
		}
		if strings.Contains(warning, "Verified") && strings.Contains(warning, "citations") {
			foundCitations = true
		}
	}

	if !foundTokens {
		t.Error("Expected warning about tokens used")
	}

	if !foundCitations {
		t.Error("Expected warning about verified citations")
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &mockError{msg: "API rate limit exceeded"},
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config: Config{
			Model:        "test-model",
			StrictSource: true,
		},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), model.Profile{Region: "sumatra"})

	// Should not fail the entire run, just return summary with warnings
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary with error warning")
	}

	if !summary.Enabled {
		t.Error("Expected summary to be marked as enabled (but failed)")
	}

	if len(summary.Warnings) == 0 {
		t.Fatal("Expected warning about generation failure")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "failed") && strings.Contains(warning, "rate limit") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestSourceAllowlist(t *testing.T) {
	profile := model.Profile{
		Posts: []model.SocialPost{
			{ID: "p1", URL: "https://example.com/article"},
			{ID: "p2", Permalink: "/r/environment/comments/p2/title/"},
			{ID: "p3", URL: "https://example.com/article"}, // duplicate
		},
	}

	urls := SourceAllowlist(profile)

	wantContains := []string{
		"https://data-api.globalforestwatch.org",
		"https://example.com/article",
		"https://www.reddit.com/r/environment/comments/p2/title/",
	}
	for _, want := range wantContains {
		found := false
		for _, u := range urls {
			if u == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected allowlist to contain %s", want)
		}
	}

	count := 0
	for _, u := range urls {
		if u == "https://example.com/article" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected duplicate post URLs to be collapsed, got %d entries", count)
	}
}

func TestRenderSeparateMarkdown_Disabled(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled: false,
	}

	if md := RenderSeparateMarkdown(summary); md != "" {
		t.Error("Expected empty markdown when disabled")
	}
}

func TestRenderSeparateMarkdown_Nil(t *testing.T) {
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled:      true,
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		StrictSource: true,
		SummaryMD:    "This is the generated narrative content.",
		Warnings: []string{
			"Tokens used: 150",
			"Verified 5 citations against the source allowlist",
		},
	}

	md := RenderSeparateMarkdown(summary)

	if md == "" {
		t.Fatal("Expected markdown to be generated")
	}

	requiredSections := []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"Provider",
		"openai",
		"Model",
		"gpt-4o-mini",
		"Strict Source Mode",
		"true",
		"This is the generated narrative content.",
		"## Notes",
		"Tokens used: 150",
		"Verified 5 citations",
	}

	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain '%s'", section)
		}
	}

	if !strings.Contains(md, "determined independently") {
		t.Error("Expected disclaimer about independence from the LLM")
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled:      true,
		Provider:     "test-provider",
		StrictSource: true,
		SummaryMD:    "",
	}

	md := RenderSeparateMarkdown(summary)

	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	profile := model.Profile{
		Region: "sumatra",
		Risk: model.RiskAssessment{
			Score: 33,
			Tier:  model.TierMedium,
			Signals: []model.Signal{
				{Type: model.SignalForestLoss, Description: "3 deforestation alerts detected"},
				{Type: model.SignalCorporateRisk, Description: "1 sanctioned entity"},
			},
		},
		Alerts:    []model.ForestAlert{{}, {}, {}},
		Companies: []model.Company{{Name: "A"}, {Name: "B"}},
		Posts:     []model.SocialPost{{ID: "p1"}},
	}

	sourceURLs := []string{
		"https://data-api.globalforestwatch.org",
		"https://query.wikidata.org",
	}

	prompt := BuildPrompt(profile, sourceURLs)

	requiredElements := []string{
		"CRITICAL RULES",
		"MUST ONLY cite URLs from this allowed list",
		"https://data-api.globalforestwatch.org",
		"https://query.wikidata.org",
		"DO NOT infer, speculate",
		"Region: sumatra",
		"Risk Score: 33.0/100 (MEDIUM)",
		"Forest Alerts: 3",
		"Companies: 2",
		"Social Posts: 1",
		"deforestation alerts detected",
		"OBSERVED INDICATORS, not accusations",
	}

	for _, element := range requiredElements {
		if !strings.Contains(prompt, element) {
			t.Errorf("Expected prompt to contain '%s'", element)
		}
	}
}

func TestBuildPrompt_NoSources(t *testing.T) {
	prompt := BuildPrompt(model.Profile{Region: "sumatra"}, []string{})

	if !strings.Contains(prompt, "No source URLs available") {
		t.Error("Expected message about no source URLs")
	}
}

func TestBuildPrompt_ManyURLs(t *testing.T) {
	sourceURLs := make([]string, 25)
	for i := 0; i < 25; i++ {
		sourceURLs[i] = "https://example.com/" + string(rune('a'+i))
	}

	prompt := BuildPrompt(model.Profile{Region: "sumatra"}, sourceURLs)

	if !strings.Contains(prompt, "and 5 more URLs") {
		t.Error("Expected truncation message for many URLs")
	}

	if !strings.Contains(prompt, sourceURLs[0]) {
		t.Error("Expected first URL to be in prompt")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}

	if !config.StrictSource {
		t.Error("Expected strict source mode to be enabled by default (CRITICAL)")
	}

	if config.Timeout <= 0 {
		t.Error("Expected positive timeout")
	}

	if config.MaxTokens <= 0 {
		t.Error("Expected positive max tokens")
	}
}

func TestSummarizer_IsEnabled(t *testing.T) {
	disabled := &Summarizer{provider: nil}
	if disabled.IsEnabled() {
		t.Error("Expected IsEnabled() to return false when provider is nil")
	}

	enabled := &Summarizer{provider: &MockProvider{name: "test"}}
	if !enabled.IsEnabled() {
		t.Error("Expected IsEnabled() to return true when provider exists")
	}
}

func TestSummarizer_ProviderName(t *testing.T) {
	disabled := &Summarizer{provider: nil}
	if disabled.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	enabled := &Summarizer{provider: &MockProvider{name: "test-provider"}}
	if enabled.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name 'test-provider', got '%s'", enabled.ProviderName())
	}
}

func TestJoinURLs_Empty(t *testing.T) {
	result := joinURLs([]string{})

	if !strings.Contains(result, "No source URLs available") {
		t.Error("Expected message about no URLs")
	}
}

func TestJoinURLs_Few(t *testing.T) {
	urls := []string{
		"https://example.com/1",
		"https://example.com/2",
	}

	result := joinURLs(urls)

	for _, url := range urls {
		if !strings.Contains(result, url) {
			t.Errorf("Expected result to contain %s", url)
		}
	}
}

// Mock error type for testing
type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
