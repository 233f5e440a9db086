package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"churnflow/internal/domain"
	"churnflow/internal/stats"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteXLSX writes result as an Excel workbook with a Results sheet using the
// delimited-text columns and a Summary sheet holding the batch statistics.
// Probability and confidence are stored as numbers with a percent format.
func WriteXLSX(w io.Writer, result domain.BatchResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeResultsSheet(f, result); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, stats.Aggregate(result)); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, result domain.BatchResult) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(resultsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	// Built-in number format 10 is "0.00%".
	pct, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("creating percent style: %w", err)
	}

	for i := range result {
		o := &result[i]
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		var row []interface{}
		if o.IsFailure() {
			row = []interface{}{o.Index, nil, nil, nil, nil, o.ErrorMessage()}
		} else {
			p := o.Success
			row = []interface{}{o.Index, formatBool(p.Churn), p.ChurnProbability, p.Confidence, string(p.RiskLevel), nil}
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", o.Index, err)
		}
	}

	if len(result) > 0 {
		last := len(result) + 1
		if err := f.SetCellStyle(resultsSheet, "C2", fmt.Sprintf("D%d", last), pct); err != nil {
			return fmt.Errorf("styling percentages: %w", err)
		}
	}
	if err := f.SetColWidth(resultsSheet, "B", "E", 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	return f.SetColWidth(resultsSheet, "F", "F", 48)
}

func writeSummarySheet(f *excelize.File, s domain.BatchStatistics) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Customers", s.Total},
		{"Predicted to Churn", s.ChurnCount},
		{"Predicted to Stay", s.StayCount},
		{"Errors", s.Errors},
		{"Churn Rate", stats.FormatPercent(s.ChurnRate)},
		{"Avg Churn Probability", stats.FormatPercent(s.AvgProbability)},
	}
	for _, level := range domain.RiskLevels {
		rows = append(rows, []interface{}{"Risk: " + string(level), s.RiskBreakdown[level]})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 24)
}
