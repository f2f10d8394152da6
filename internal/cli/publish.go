package cli

import (
	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
)

var publishCmd = &cobra.Command{
	Use:   "publish [stack-name]",
	Short: "Generate the frontend and upload it to the bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	prov := newProvider(cfg)
	if err := publishSite(cmd.Context(), cfg, prov); err != nil {
		return err
	}
	logging.Info("site published", "website", prov.WebsiteEndpoint())
	return nil
}
