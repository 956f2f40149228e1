package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintlab/ecoprofiler/internal/pipeline"
	"github.com/osintlab/ecoprofiler/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Profile multiple regions from a file in parallel",
	Long: `Batch profiles multiple regions concurrently:
- Read region names from input file (one per line, # comments allowed)
- Profile regions in parallel with configurable worker count
- Each run snapshots its data and writes reports into the data directory

Example:
  ecoprofiler batch regions.txt
  ecoprofiler batch regions.txt --concurrency 4 --timeout 30m
  ecoprofiler batch regions.txt --radius 50 --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent region profiles")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared analysis and output flags
	batchCmd.Flags().IntVar(&radiusKM, "radius", 0, "analysis radius in km (default from config)")
	batchCmd.Flags().IntVar(&daysBack, "days", 0, "days of history to fetch (default from config)")
	batchCmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot directory (default from config)")
	batchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&includeOSM, "include-osm", true, "include the OpenStreetMap business search")
	batchCmd.Flags().BoolVar(&includeSat, "include-satellite", true, "fetch satellite imagery when credentials are set")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  EcoProfiler Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Data dir:     %s\n", cfg.Analysis.DataDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading regions from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d regions\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Region, result.Error)
			continue
		}

		successCount++

		jsonPath, err := p.Store().ReportPath(result.Region, "json")
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to resolve report path: %v\n", result.Region, err)
			continue
		}
		mdPath, err := p.Store().ReportPath(result.Region, "md")
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to resolve report path: %v\n", result.Region, err)
			continue
		}
		if err := p.RenderProfile(result.Profile, jsonPath, mdPath, false); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to render: %v\n", result.Region, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (score: %.1f/100, %s)\n", result.Region, result.Profile.Risk.Score, result.Profile.Risk.Tier)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d regions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Analysis.DataDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
