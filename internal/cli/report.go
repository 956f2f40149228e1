package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintlab/ecoprofiler/internal/pipeline"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <region>",
	Short: "Rebuild a report from stored snapshots without refetching",
	Long: `Report re-scores and re-renders a region from its stored
snapshots. No network fetches are performed except a best-effort
geocoding lookup for the region coordinates.

Example:
  ecoprofiler report sumatra
  ecoprofiler report amazon --md amazon.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: <data-dir>/reports/<region>_report.json)")
	reportCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (default: <data-dir>/reports/<region>_report.md)")
	reportCmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot directory (default from config)")
	reportCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runReport(cmd *cobra.Command, args []string) error {
	region := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)

	profile, err := p.ReportFromSnapshot(ctx, region)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded snapshot: %d alerts, %d companies, %d posts, %d businesses\n",
			len(profile.Alerts), len(profile.Companies), len(profile.Posts), len(profile.Businesses))
		fmt.Fprintf(os.Stderr, "✓ Risk score: %.1f/100 (%s)\n\n", profile.Risk.Score, profile.Risk.Tier)
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
