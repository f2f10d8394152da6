package cli

import (
	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
)

var importCmd = &cobra.Command{
	Use:   "import [stack-name]",
	Short: "Bulk-load the CSV dataset into the database",
	Long: `Import reads the dataset from the manifest's path and writes one document
per record. Malformed records are logged and skipped; they never abort the
batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	res, err := importDataset(cmd.Context(), cfg, newProvider(cfg))
	if err != nil {
		return err
	}
	logging.Info("dataset imported",
		"total", res.Total,
		"imported", res.Imported,
		"skipped", res.Skipped)
	return nil
}
