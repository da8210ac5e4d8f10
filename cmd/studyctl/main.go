package main

import (
	"os"

	"github.com/pterm/pterm"
)

func main() {
	if err := newRootCommand(defaultDeps()).Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
