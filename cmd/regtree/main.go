// Command regtree is the CLI front end for the hierarchical configuration
// store in internal/tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/halvorsen/regtree/internal/cli"
)

func main() {
	ctx := context.Background()
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
