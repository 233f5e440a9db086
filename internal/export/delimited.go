// Package export renders batch results into downloadable files.
package export

import (
	"strconv"
	"strings"

	"churnflow/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Placeholder fills columns that have no value on a failure row.
const Placeholder = ""

// columns defines the header row shared by every export format.
var columns = []string{
	"Index",
	"Churn",
	"Churn Probability",
	"Confidence",
	"Risk Level",
	"Error",
}

// Columns returns a copy of the export header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// ToDelimitedText renders result as comma-separated rows joined by "\n",
// header first, one row per outcome in index order. Fields are not quoted, so
// a failure message containing a comma or newline shifts the row.
func ToDelimitedText(result domain.BatchResult) string {
	lines := make([]string, 0, len(result)+1)
	lines = append(lines, strings.Join(columns, ","))
	for i := range result {
		lines = append(lines, strings.Join(outcomeToRow(&result[i]), ","))
	}
	return strings.Join(lines, "\n")
}

// outcomeToRow converts a single outcome to a 6-element string slice.
func outcomeToRow(o *domain.Outcome) []string {
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(o.Index)

	if o.IsFailure() {
		row[1] = Placeholder
		row[2] = Placeholder
		row[3] = Placeholder
		row[4] = Placeholder
		row[5] = o.ErrorMessage()
		return row
	}

	p := o.Success
	row[1] = formatBool(p.Churn)
	row[2] = FormatPercent(p.ChurnProbability)
	row[3] = FormatPercent(p.Confidence)
	row[4] = string(p.RiskLevel)
	return row
}

// FormatPercent renders a fraction in [0, 1] as a percentage with two decimals.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
