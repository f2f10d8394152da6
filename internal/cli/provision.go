package cli

import (
	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
	"github.com/reelstack-io/reelstack/internal/state"
)

var provisionCmd = &cobra.Command{
	Use:   "provision [stack-name]",
	Short: "Provision the stack's cloud resources",
	Long: `Provision creates the storage bucket and database table, waits for each to
report ready, and applies the static-hosting sub-resources with retries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProvision,
}

func runProvision(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	prov := newProvider(cfg)
	if err := provisionStack(cmd.Context(), cfg, prov, state.DefaultPath); err != nil {
		return err
	}
	logging.Info("stack provisioned", "stack", cfg.Stack)
	return nil
}
