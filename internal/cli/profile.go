package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/pipeline"
	"github.com/osintlab/ecoprofiler/internal/store"
)

var (
	coords      string
	radiusKM    int
	daysBack    int
	outJSON     string
	outMD       string
	dataDir     string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	includeOSM  bool
	includeSat  bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile <region>",
	Short: "Profile a region and generate an environmental risk report",
	Long: `Profile fetches open-source signals for a geographic region:
- GLAD deforestation alerts from Global Forest Watch
- Companies near the region from Wikidata, enriched with GLEIF and
  OpenSanctions lookups
- Social media posts with sentiment analysis
- Industrial sites and businesses from OpenStreetMap
- Optional Sentinel Hub satellite imagery

Signals are snapshotted, scored, and rendered as JSON, Markdown, and
a terminal summary.

Example:
  ecoprofiler profile sumatra
  ecoprofiler profile "new guinea" --radius 50 --days 90
  ecoprofiler profile --coords "1.23,-56.77"
  ecoprofiler profile amazon --json report.json --md report.md
  ecoprofiler profile borneo --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)

	// Analysis flags
	profileCmd.Flags().StringVar(&coords, "coords", "", `coordinates "lat,lon" instead of a region name`)
	profileCmd.Flags().IntVar(&radiusKM, "radius", 0, "analysis radius in km (default from config)")
	profileCmd.Flags().IntVar(&daysBack, "days", 0, "days of history to fetch (default from config)")
	profileCmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot directory (default from config)")

	// Output flags
	profileCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: <data-dir>/reports/<region>_report.json)")
	profileCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (default: <data-dir>/reports/<region>_report.md)")
	profileCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// HTTP flags
	profileCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall profiling timeout")
	profileCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	profileCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (default from config)")
	profileCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	profileCmd.Flags().BoolVar(&includeOSM, "include-osm", true, "include the OpenStreetMap business search")
	profileCmd.Flags().BoolVar(&includeSat, "include-satellite", true, "fetch satellite imagery when credentials are set")
	profileCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	profileCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	profileCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	profileCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative generation")
	profileCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	profileCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runProfile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && coords == "" {
		return fmt.Errorf("a region name or --coords is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	region, center, useCoords, err := resolveTarget(args)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Profiling: %s\n", region)
		fmt.Fprintf(os.Stderr, "Radius: %dkm, History: %d days\n", cfg.Analysis.RadiusKM, cfg.Analysis.DaysBack)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg)

	var profile *model.Profile
	if useCoords {
		profile, err = p.ProfileAt(ctx, region, center)
	} else {
		profile, err = p.ProfileRegion(ctx, region)
	}
	if err != nil {
		return fmt.Errorf("profile failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Fetched %d forest alerts\n", len(profile.Alerts))
		fmt.Fprintf(os.Stderr, "✓ Found %d companies\n", len(profile.Companies))
		fmt.Fprintf(os.Stderr, "✓ Collected %d social posts\n", len(profile.Posts))
		fmt.Fprintf(os.Stderr, "✓ Mapped %d businesses\n", len(profile.Businesses))
		fmt.Fprintf(os.Stderr, "✓ Risk score: %.1f/100 (%s)\n", profile.Risk.Score, profile.Risk.Tier)
		if profile.LLM != nil && profile.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", profile.LLM.Provider, profile.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	jsonPath, mdPath, err := reportPaths(p.Store(), region)
	if err != nil {
		return err
	}
	if err := p.RenderProfile(profile, jsonPath, mdPath, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// resolveTarget picks the profiling target from the positional region
// name and the --coords flag. Explicit coordinates bypass geocoding and
// get a synthetic region name unless one was also given.
func resolveTarget(args []string) (region string, center geo.Point, useCoords bool, err error) {
	if coords == "" {
		return args[0], geo.Point{}, false, nil
	}

	parts := strings.SplitN(coords, ",", 2)
	if len(parts) != 2 {
		return "", geo.Point{}, false, fmt.Errorf("invalid --coords %q (expected \"lat,lon\")", coords)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return "", geo.Point{}, false, fmt.Errorf("invalid latitude in --coords: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", geo.Point{}, false, fmt.Errorf("invalid longitude in --coords: %w", err)
	}

	region = fmt.Sprintf("coords_%s", strings.NewReplacer(",", "_", ".", "", " ", "").Replace(coords))
	if len(args) > 0 {
		region = args[0]
	}
	return region, geo.Point{Latitude: lat, Longitude: lon}, true, nil
}

// reportPaths resolves output paths, defaulting into the snapshot store's
// reports directory.
func reportPaths(st *store.Store, region string) (jsonPath, mdPath string, err error) {
	jsonPath = outJSON
	if jsonPath == "" {
		jsonPath, err = st.ReportPath(region, "json")
		if err != nil {
			return "", "", fmt.Errorf("resolve JSON report path: %w", err)
		}
	}
	mdPath = outMD
	if mdPath == "" {
		mdPath, err = st.ReportPath(region, "md")
		if err != nil {
			return "", "", fmt.Errorf("resolve Markdown report path: %w", err)
		}
	}
	return jsonPath, mdPath, nil
}

// loadConfig layers defaults, the viper config file, and CLI flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "yaml"
		}); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Flags override the file only when explicitly set.
	if radiusKM > 0 {
		cfg.Analysis.RadiusKM = radiusKM
	}
	if daysBack > 0 {
		cfg.Analysis.DaysBack = daysBack
	}
	if dataDir != "" {
		cfg.Analysis.DataDir = dataDir
	}
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.Analysis.IncludeOSM = includeOSM
	cfg.Analysis.IncludeSatellite = includeSat
	if includeSat {
		if id := os.Getenv("SENTINELHUB_CLIENT_ID"); id != "" && cfg.Satellite.ClientID == "" {
			cfg.Satellite.ClientID = id
		}
		if secret := os.Getenv("SENTINELHUB_CLIENT_SECRET"); secret != "" && cfg.Satellite.ClientSecret == "" {
			cfg.Satellite.ClientSecret = secret
		}
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictSource = true // Always enforce

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			baseURL := os.Getenv("OLLAMA_BASE_URL")
			if baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
