package model

import "time"

// Config is the complete runtime configuration assembled from defaults,
// the config file, environment variables, and CLI flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Social      SocialConfig      `yaml:"social"`
	Satellite   SatelliteConfig   `yaml:"satellite"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Output      OutputConfig      `yaml:"output"`
	LLM         LLMConfig         `yaml:"llm"`
}

// HTTPConfig controls all outbound HTTP clients.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// CacheConfig controls the layered fetch-response cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// AnalysisConfig holds the geographic analysis parameters.
type AnalysisConfig struct {
	RadiusKM         int    `yaml:"radius_km"`
	MaxRadiusKM      int    `yaml:"max_radius_km"`
	DaysBack         int    `yaml:"days_back"`
	DataDir          string `yaml:"data_dir"`
	IncludeOSM       bool   `yaml:"include_osm"`
	IncludeSatellite bool   `yaml:"include_satellite"`
}

// SocialConfig controls the social post fetcher.
type SocialConfig struct {
	MaxPostsPerQuery   int      `yaml:"max_posts_per_query"`
	MaxCommentsPerPost int      `yaml:"max_comments_per_post"`
	SearchTerms        []string `yaml:"search_terms"`
}

// SatelliteConfig holds Sentinel Hub credentials and rendering options.
type SatelliteConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	ResolutionM  int    `yaml:"resolution_m"`
	IncludeNDVI  bool   `yaml:"include_ndvi"`
}

// ConcurrencyConfig sets worker counts for adapter fan-out and
// per-company registry enrichment.
type ConcurrencyConfig struct {
	Workers           int `yaml:"workers"`
	EnrichmentWorkers int `yaml:"enrichment_workers"`
}

// RateLimitConfig sets the per-domain outbound request rate.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls rendering behavior.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
	TopPosts      int  `yaml:"top_posts"`
	TopCompanies  int  `yaml:"top_companies"`
}

// LLMConfig configures the optional narrative summarizer.
type LLMConfig struct {
	Provider     string `yaml:"provider"` // openai, ollama, or empty for disabled
	Model        string `yaml:"model"`
	APIKey       string `yaml:"-"` // environment only, never serialized
	BaseURL      string `yaml:"base_url"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	MaxTokens    int    `yaml:"max_tokens"`
	StrictSource bool   `yaml:"strict_source"`
}

// DefaultConfig returns the built-in defaults. The search terms mirror
// the environmental monitoring focus of the tool.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "EcoProfiler/1.0 (+https://github.com/osintlab/ecoprofiler)",
			MaxBodyBytes: 5_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Analysis: AnalysisConfig{
			RadiusKM:         20,
			MaxRadiusKM:      100,
			DaysBack:         30,
			DataDir:          "data",
			IncludeOSM:       true,
			IncludeSatellite: true,
		},
		Social: SocialConfig{
			MaxPostsPerQuery:   100,
			MaxCommentsPerPost: 10,
			SearchTerms: []string{
				"illegal logging",
				"deforestation",
				"mining",
				"environmental crime",
				"pollution",
				"wildlife trafficking",
				"forest fire",
			},
		},
		Satellite: SatelliteConfig{
			ResolutionM: 50,
			IncludeNDVI: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			EnrichmentWorkers: 8,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
			TopPosts:      5,
			TopCompanies:  10,
		},
		LLM: LLMConfig{
			Provider:     "",
			TimeoutSec:   30,
			MaxTokens:    1000,
			StrictSource: true,
		},
	}
}
