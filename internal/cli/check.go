package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckCommand runs the read-only consistency scan.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "verify data consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			if err := store.CheckDataConsistency(ctx); err != nil {
				return out.Error("E_INCONSISTENT", err.Error(), nil)
			}
			return out.Success(map[string]any{"status": "consistent"})
		},
	}
	return cmd
}
