package llm

import (
	"context"
	"fmt"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative for the profile with strict source mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Profile is the regional risk profile to summarize
	Profile model.Profile

	// SourceURLs is the STRICT allowlist of URLs the LLM can cite.
	// This prevents hallucination - the LLM cannot reference any URL not
	// in this list.
	SourceURLs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated narrative text
	Summary string

	// CitedURLs are the URLs the LLM actually cited (for verification)
	CitedURLs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictSource enforces the URL allowlist (should always be true)
	StrictSource bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:     "", // Disabled by default
		Model:        "",
		Timeout:      30,
		StrictSource: true, // CRITICAL: Always enforce
		MaxTokens:    1000,
	}
}

// BuildPrompt constructs the default prompt for profile narration with
// strict source mode
func BuildPrompt(profile model.Profile, sourceURLs []string) string {
	prompt := fmt.Sprintf(`You are narrating an environmental risk profile built from open data. The profile reports INDICATORS from public sources - it NEVER asserts guilt or wrongdoing.

CRITICAL RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. DO NOT infer, speculate, or cite external sources beyond this list.
3. If a data source returned nothing, state that explicitly.
4. Focus on OBSERVED INDICATORS, not accusations. Use phrases like:
   - "Forest alert data shows X detections..."
   - "N companies matched sanctions screening..."
   - "Social coverage skews negative/positive..."
5. Never name an entity as criminal - only describe what the open data records.

Profile Summary:
- Region: %s
- Risk Score: %.1f/100 (%s)
- Forest Alerts: %d
- Companies: %d
- Social Posts: %d
- Mapped Businesses: %d

Key Signals:
`, joinURLs(sourceURLs), profile.Region, profile.Risk.Score, profile.Risk.Tier,
		len(profile.Alerts), len(profile.Companies), len(profile.Posts), len(profile.Businesses))

	// Add top 3 signals
	for i, signal := range profile.Risk.Signals {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- %s: %s\n", signal.Type, signal.Description)
	}

	prompt += "\nProvide a 3-4 sentence narrative focusing on what the open data shows, not conclusions of guilt."

	return prompt
}

// Helper functions

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No source URLs available)"
	}
	result := ""
	for i, url := range urls {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more URLs", len(urls)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", url)
	}
	return result
}
