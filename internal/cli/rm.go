package cli

import (
	"github.com/spf13/cobra"
)

// NewRmCommand deletes an entry.
func NewRmCommand(opts *RootOptions) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0], recursive); err != nil {
				return out.Error("E_RM", err.Error(), nil)
			}
			return out.Success(map[string]any{"name": args[0], "status": "deleted"})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete the entire subtree")
	return cmd
}
