package cli

import (
	"github.com/spf13/cobra"

	"github.com/halvorsen/regtree/internal/importexport"
)

// NewImportCommand bulk-loads a YAML document into the store.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "bulk-load a YAML document into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			if err := importexport.Import(ctx, store, args[0], base); err != nil {
				return out.Error("E_IMPORT", err.Error(), nil)
			}
			return out.Success(map[string]any{"file": args[0], "status": "imported"})
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "name under which to import the document (default: root)")
	return cmd
}
