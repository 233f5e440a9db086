package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"churnflow/internal/cli/ui"
)

const version = "0.1.0"

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "churnctl",
	Short:   "Churn batch prediction CLI",
	Version: version,
	Long: `A command-line tool for running customer files through the churn prediction
service. Parses CSV or JSON uploads, submits them as one batch, summarizes the
results and writes a CSV or Excel download.

The prediction service location and batch limits are read from the same
CHURNFLOW_* environment variables as the API server.`,
	Example: `  # Predict a CSV file and write churn_predictions_<timestamp>.csv
  $ churnctl run customers.csv

  # Write an Excel workbook instead
  $ churnctl run customers.json --format xlsx --out results.xlsx

  # Show the expected record fields
  $ churnctl schema

  # Convert a spreadsheet into an uploadable CSV
  $ churnctl xlsx2csv customers.xlsx --sheet Customers`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(xlsx2csvCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("churnctl version %s\n", version)
}
