package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osintlab/ecoprofiler/internal/geo"
	"github.com/osintlab/ecoprofiler/internal/store"
)

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions with stored snapshots and built-in gazetteer entries",
	Long: `Regions lists every region with snapshot data in the data
directory, plus the built-in gazetteer regions that resolve without a
geocoding lookup.`,
	RunE: runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot directory (default from config)")
}

func runRegions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewStore(cfg.Analysis.DataDir)
	snapshotted, err := st.ListRegions()
	if err != nil {
		return fmt.Errorf("list regions: %w", err)
	}

	fmt.Println("Snapshotted regions:")
	if len(snapshotted) == 0 {
		fmt.Println("  (none; run 'ecoprofiler profile <region>' first)")
	}
	for _, region := range snapshotted {
		fmt.Printf("  %s\n", region)
	}

	fmt.Println()
	fmt.Println("Built-in gazetteer regions:")
	for _, region := range geo.GazetteerRegions() {
		fmt.Printf("  %s\n", region)
	}

	return nil
}
