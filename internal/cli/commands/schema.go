package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"churnflow/internal/cli/ui"
	"churnflow/internal/normalize"
)

// schemaCmd is the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "show the customer record fields",
	Long: `Show the fields a customer record may carry, their kinds and the values the
prediction service was trained on. Category values are not checked locally.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.RenderSchema(normalize.Schema()))
	},
}
