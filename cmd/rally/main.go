// Command rally is a rally-scoring badminton scorekeeper.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rally/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
