package main

import (
	"fmt"
	"os"
	"strings"

	"churnflow/internal/cli/commands"
	"churnflow/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		// Handle unknown command errors specially
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'churnctl --help' for usage.")
		}
		os.Exit(1)
	}
}
