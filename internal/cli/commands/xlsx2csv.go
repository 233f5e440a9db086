package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"churnflow/internal/cli/ui"
	"churnflow/internal/ingest"
)

var (
	xlsxSheet   string
	xlsxOut     string
	xlsxDialect string
)

// xlsx2csvCmd is the xlsx2csv command
var xlsx2csvCmd = &cobra.Command{
	Use:   "xlsx2csv FILE.xlsx",
	Short: "convert a spreadsheet into an uploadable CSV",
	Long: `Convert one sheet of an Excel workbook into CSV that the batch upload accepts.

The default simple dialect has no quoting, so a cell holding a comma or a line
break is reported instead of written; pass --dialect rfc4180 to quote it.`,
	Example: `  $ churnctl xlsx2csv customers.xlsx
  $ churnctl xlsx2csv customers.xlsx --sheet Q3 --out q3.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runXLSX2CSV,
}

func init() {
	xlsx2csvCmd.Flags().StringVarP(&xlsxSheet, "sheet", "s", "", "Sheet name (default first sheet)")
	xlsx2csvCmd.Flags().StringVarP(&xlsxOut, "out", "o", "", "Output file path (default FILE with .csv suffix)")
	xlsx2csvCmd.Flags().StringVar(&xlsxDialect, "dialect", "simple", "CSV dialect: simple or rfc4180")

	xlsx2csvCmd.SilenceUsage = true
}

func runXLSX2CSV(cmd *cobra.Command, args []string) error {
	path := args[0]

	dialect, err := ingest.ParseDialect(xlsxDialect)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid dialect")
	}

	f, err := os.Open(path)
	if err != nil {
		ui.PrintError("failed to open %s: %v", path, err)
		return fmt.Errorf("open failed")
	}
	defer func() { _ = f.Close() }()

	data, err := ingest.XLSXToCSV(f, xlsxSheet, dialect)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("conversion failed")
	}

	out := xlsxOut
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		ui.PrintError("failed to write %s: %v", out, err)
		return fmt.Errorf("write failed")
	}

	ui.PrintSuccess("Wrote %s", out)
	return nil
}
