package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"churnflow/internal/domain"
)

// WriteFunc writes a batch result to w in one export format.
type WriteFunc func(w io.Writer, result domain.BatchResult) error

// Format describes one downloadable export format.
type Format struct {
	Name        string
	Extension   string
	ContentType string
	Write       WriteFunc
}

// registry of export formats, keyed by lowercase name.
var formats = map[string]Format{}

// RegisterFormat registers an export format by name.
func RegisterFormat(f Format) {
	formats[strings.ToLower(f.Name)] = f
}

// Lookup returns the export format registered under name. An empty name
// selects csv.
func Lookup(name string) (Format, error) {
	if name == "" {
		name = "csv"
	}
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q (allowed: %s)", domain.ErrUnsupportedExport, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(formats))
	for n := range formats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WriteCSV writes the delimited text prefixed with a UTF-8 BOM.
func WriteCSV(w io.Writer, result domain.BatchResult) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	_, err := io.WriteString(w, ToDelimitedText(result))
	return err
}

func init() {
	RegisterFormat(Format{
		Name:        "csv",
		Extension:   "csv",
		ContentType: "text/csv; charset=utf-8",
		Write:       WriteCSV,
	})
	RegisterFormat(Format{
		Name:        "xlsx",
		Extension:   "xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Write:       WriteXLSX,
	})
}
