package cli

import (
	"github.com/spf13/cobra"
)

// NewCreateCommand creates a new entry (and any missing ancestors).
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	var typ string
	var orUpdate bool

	cmd := &cobra.Command{
		Use:   "create <name> <value>",
		Short: "create a new entry, auto-vivifying missing ancestors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := formatter(cmd, opts)

			value, err := parseValue(typ, args[1])
			if err != nil {
				return out.Error("E_ARGS", err.Error(), nil)
			}

			store, err := openStore(ctx, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer store.Close()

			if orUpdate {
				err = store.SetOrCreate(ctx, args[0], value)
			} else {
				err = store.Create(ctx, args[0], value)
			}
			if err != nil {
				return out.Error("E_CREATE", err.Error(), nil)
			}
			return out.Success(map[string]any{"name": args[0], "status": "created"})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "text", "value type: int, text, or blob")
	cmd.Flags().BoolVar(&orUpdate, "or-update", false, "overwrite the value if the entry already exists")
	return cmd
}
