package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halvorsen/regtree/internal/entries"
)

// NewGetCommand reads a single entry's value and revision.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "read an entry's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			name := args[0]
			typ, err := store.GetType(ctx, name)
			if err != nil {
				return out.Error("E_GET", err.Error(), nil)
			}

			var rendered string
			switch typ {
			case entries.TypeInteger:
				v, err := store.GetInteger(ctx, name)
				if err != nil {
					return out.Error("E_GET", err.Error(), nil)
				}
				rendered = fmt.Sprintf("%d", v)
			case entries.TypeText:
				v, err := store.GetString(ctx, name)
				if err != nil {
					return out.Error("E_GET", err.Error(), nil)
				}
				rendered = v
			case entries.TypeBlob:
				v, err := store.GetBinary(ctx, name)
				if err != nil {
					return out.Error("E_GET", err.Error(), nil)
				}
				rendered = base64.StdEncoding.EncodeToString(v)
			}

			rev, err := store.GetRevision(ctx, name)
			if err != nil {
				return out.Error("E_GET", err.Error(), nil)
			}

			return out.Success(map[string]any{
				"name":     name,
				"type":     typ.String(),
				"value":    rendered,
				"revision": rev,
			})
		},
	}
	return cmd
}
