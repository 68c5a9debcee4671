package cli

import (
	"github.com/spf13/cobra"

	"github.com/halvorsen/regtree/internal/importexport"
)

// NewExportCommand writes a subtree out as YAML.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name> <file>",
		Short: "write a subtree out as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			if err := importexport.Export(ctx, store, args[0], args[1]); err != nil {
				return out.Error("E_EXPORT", err.Error(), nil)
			}
			return out.Success(map[string]any{"name": args[0], "file": args[1], "status": "exported"})
		},
	}
	return cmd
}
