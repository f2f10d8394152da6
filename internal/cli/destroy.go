package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
	"github.com/reelstack-io/reelstack/internal/provision"
	"github.com/reelstack-io/reelstack/internal/state"
)

var destroyAutoApprove bool

var destroyCmd = &cobra.Command{
	Use:   "destroy [stack-name]",
	Short: "Delete the recorded stack resources",
	Long: `Destroy deletes every resource in the deployment record, CDN first, then
database, then storage. The bucket must already be empty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDestroy,
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyAutoApprove, "auto-approve", false, "Skip interactive approval before destroying")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	mgr := state.NewManager(state.DefaultPath)
	rec, err := mgr.Read()
	if err != nil {
		return err
	}
	if len(rec.Resources) == 0 {
		fmt.Println("No deployment recorded; nothing to destroy.")
		return nil
	}

	if !destroyAutoApprove {
		fmt.Printf("This will delete %d resource(s) of stack %q. Only 'yes' will be accepted: ", len(rec.Resources), rec.Stack)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Destroy cancelled.")
			return nil
		}
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	p := provision.New(newProvider(cfg), cfg.Poller(), cfg.RetryPolicy())

	// Reverse of provisioning order.
	for i := len(rec.Resources) - 1; i >= 0; i-- {
		res := rec.Resources[i]
		desc := provision.ResourceDescriptor{
			Name:   res.Name,
			Kind:   provision.ResourceKind(res.Kind),
			Region: res.Region,
		}
		if err := p.Destroy(cmd.Context(), desc); err != nil {
			return err
		}
	}

	if err := mgr.Remove(); err != nil {
		return err
	}
	logging.Info("stack destroyed", "stack", rec.Stack)
	return nil
}
