package cli

import (
	"github.com/spf13/cobra"
)

// NewLsCommand lists an entry's direct children.
func NewLsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [name]",
		Short: "list an entry's direct children",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			children, err := store.GetChildren(ctx, name)
			if err != nil {
				return out.Error("E_LS", err.Error(), nil)
			}
			return out.Success(children)
		},
	}
	return cmd
}
