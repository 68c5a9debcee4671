package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/halvorsen/regtree/internal/tree"
)

// openStore opens the store at opts.DBPath, creating it (with opts.Delim)
// if it does not already exist.
func openStore(ctx context.Context, opts *RootOptions) (*tree.Store, error) {
	runes := []rune(opts.Delim)
	delim := '.'
	if len(runes) == 1 {
		delim = runes[0]
	}
	return tree.Open(ctx, opts.DBPath, tree.Config{Create: true, Delimiter: delim})
}

// formatter builds an OutputFormatter from the command's global options.
func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}
