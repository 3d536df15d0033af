// Command layercast runs the live compositor and its tooling.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/layercast/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "layercast:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
