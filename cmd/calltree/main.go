// Command calltree rebuilds call trees from JavaScript runtime traces.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/calltree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
