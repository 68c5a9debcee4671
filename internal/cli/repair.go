package cli

import (
	"github.com/spf13/cobra"
)

// NewRepairCommand runs the (currently no-op) repair pass.
func NewRepairCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "attempt to repair data consistency violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			moved, err := store.RepairDataConsistency(ctx)
			if err != nil {
				return out.Error("E_REPAIR", err.Error(), nil)
			}
			return out.Success(map[string]any{"entries_moved": moved})
		},
	}
	return cmd
}
