package cli

import (
	"github.com/spf13/cobra"
)

// NewSetCommand overwrites an existing entry's value.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "overwrite an existing entry's value",
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

			if err := store.Set(ctx, args[0], value); err != nil {
				return out.Error("E_SET", err.Error(), nil)
			}
			return out.Success(map[string]any{"name": args[0], "status": "set"})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "text", "value type: int, text, or blob")
	return cmd
}
