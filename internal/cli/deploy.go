package cli

import (
	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
	"github.com/reelstack-io/reelstack/internal/state"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [stack-name]",
	Short: "Provision resources, import the dataset, and publish the site",
	Long: `Deploy runs the full pipeline: provision the storage bucket and database
table (and CDN if configured), bulk-load the CSV dataset, and upload the
generated frontend.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	prov := newProvider(cfg)

	if err := provisionStack(ctx, cfg, prov, state.DefaultPath); err != nil {
		return err
	}

	res, err := importDataset(ctx, cfg, prov)
	if err != nil {
		return err
	}
	logging.Info("dataset imported", "imported", res.Imported, "skipped", res.Skipped)

	if err := publishSite(ctx, cfg, prov); err != nil {
		return err
	}

	logging.Info("deployment complete",
		"stack", cfg.Stack,
		"website", prov.WebsiteEndpoint())
	if domain := prov.DistributionDomain(); domain != "" {
		logging.Info("cdn ready", "domain", domain)
	}
	return nil
}
