// Package ingest turns uploaded batch files into ordered raw field maps.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"churnflow/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel prepends to CSV exports.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls parsing. The zero value parses CSV with the simple dialect
// and no size limit.
type Options struct {
	Dialect  domain.CSVDialect
	MaxBytes int64
}

// FormatFromFilename infers the declared format from the file name suffix.
func FormatFromFilename(name string) (domain.FileFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	format, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: csv, json)", domain.ErrUnsupportedFormat, name)
	}
	return format, nil
}

// ParseDialect validates a configured CSV dialect name.
func ParseDialect(name string) (domain.CSVDialect, error) {
	switch domain.CSVDialect(strings.ToLower(strings.TrimSpace(name))) {
	case "", domain.CSVDialectSimple:
		return domain.CSVDialectSimple, nil
	case domain.CSVDialectRFC4180:
		return domain.CSVDialectRFC4180, nil
	default:
		return "", fmt.Errorf("unknown csv dialect %q", name)
	}
}

// Parse decodes data into one RawRecord per uploaded row. It either returns
// every record or a single terminal error; there are no per-row failures.
func Parse(data []byte, format domain.FileFormat, opts Options) ([]domain.RawRecord, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, domain.ErrFileTooLarge
	}
	data = bytes.TrimPrefix(data, BOM)

	switch format {
	case domain.FileFormatCSV:
		if opts.Dialect == domain.CSVDialectRFC4180 {
			return parseQuotedCSV(data)
		}
		return parseSimpleCSV(data), nil
	case domain.FileFormatJSON:
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

// parseSimpleCSV splits on newlines and commas with no quoting. Blank lines
// are skipped and consume no index.
func parseSimpleCSV(data []byte) []domain.RawRecord {
	records := []domain.RawRecord{}
	var header []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if header == nil {
			header = trimAll(fields)
			continue
		}
		records = append(records, rowToRecord(header, fields))
	}
	return records
}

func parseQuotedCSV(data []byte) ([]domain.RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records := []domain.RawRecord{}
	var header []string
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCSV, err)
		}
		if isBlankRow(fields) {
			continue
		}
		if header == nil {
			header = trimAll(fields)
			continue
		}
		records = append(records, rowToRecord(header, fields))
	}
}

// rowToRecord assigns fields positionally to header names. Missing trailing
// values become "" and surplus values are dropped.
func rowToRecord(header, fields []string) domain.RawRecord {
	rec := make(domain.RawRecord, len(header))
	for i, name := range header {
		val := ""
		if i < len(fields) {
			val = strings.TrimSpace(fields[i])
		}
		rec[name] = val
	}
	return rec
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseJSON(data []byte) ([]domain.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", domain.ErrMalformedJSON)
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an array of records", domain.ErrMalformedJSON)
	}

	records := make([]domain.RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not an object", domain.ErrMalformedJSON, i)
		}
		records = append(records, domain.RawRecord(obj))
	}
	return records, nil
}
