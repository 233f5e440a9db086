package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"churnflow/internal/domain"
)

// XLSXToCSV reads one sheet of a workbook and renders it as CSV text that
// Parse accepts in the given dialect. An empty sheet name selects the first
// sheet. The simple dialect cannot represent a cell holding a comma or a line
// break, so such a workbook is rejected rather than silently shifted.
func XLSXToCSV(r io.Reader, sheet string, dialect domain.CSVDialect) ([]byte, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var buf bytes.Buffer
	if dialect == domain.CSVDialectRFC4180 {
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			return nil, fmt.Errorf("writing csv: %w", err)
		}
		return buf.Bytes(), nil
	}

	for i, row := range rows {
		for j, cell := range row {
			if strings.ContainsAny(cell, ",\r\n") {
				name, _ := excelize.CoordinatesToCellName(j+1, i+1)
				return nil, fmt.Errorf("cell %s contains a comma or line break; use the %s dialect", name, domain.CSVDialectRFC4180)
			}
		}
		buf.WriteString(strings.Join(row, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
