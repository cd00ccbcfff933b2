// Command leadclean checks and cleans lead spreadsheets from the shell.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JonMunkholm/LeadParser/internal/cli"
)

// Version is injected at build time.
var Version = "dev"

func main() {
	root := cli.NewRootCmd()
	root.Version = Version
	if err := root.Execute(); err != nil {
		if !errors.Is(err, cli.ErrHasErrors) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
