package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/provision"
	"github.com/reelstack-io/reelstack/internal/state"
)

var statusLive bool

var statusCmd = &cobra.Command{
	Use:   "status [stack-name]",
	Short: "Show the recorded deployment and optionally query live state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusLive, "live", false, "query the control plane for current resource states")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rec, err := state.NewManager(state.DefaultPath).Read()
	if err != nil {
		return err
	}
	if len(rec.Resources) == 0 {
		fmt.Println("No deployment recorded.")
		return nil
	}

	var cp provision.ControlPlane
	if statusLive {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		cp = newProvider(cfg)
	}

	fmt.Printf("Stack:   %s\n", rec.Stack)
	fmt.Printf("Lineage: %s (serial %d)\n", rec.Lineage, rec.Serial)
	fmt.Println("Resources:")
	for _, res := range rec.Resources {
		line := fmt.Sprintf("  %s.%s (%s)", res.Kind, res.Name, res.Region)
		if cp != nil {
			desc := provision.ResourceDescriptor{
				Name:   res.Name,
				Kind:   provision.ResourceKind(res.Kind),
				Region: res.Region,
			}
			st, err := cp.ResourceState(cmd.Context(), desc)
			if err != nil {
				line += fmt.Sprintf("  state: error (%v)", err)
			} else {
				line += fmt.Sprintf("  state: %s", st)
			}
		}
		fmt.Println(line)
	}

	for key, val := range rec.Outputs {
		fmt.Printf("Output %s = %s\n", key, val)
	}
	return nil
}
