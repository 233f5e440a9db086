package domain

import "strings"

// FileFormat is the declared format of an uploaded batch file.
type FileFormat string

const (
	FileFormatCSV  FileFormat = "csv"
	FileFormatJSON FileFormat = "json"
)

// AllowedExtensions maps file extensions (without dot) to FileFormat.
var AllowedExtensions = map[string]FileFormat{
	"csv":  FileFormatCSV,
	"json": FileFormatJSON,
}

// CSVDialect selects how tabular uploads are split into fields.
type CSVDialect string

const (
	// CSVDialectSimple splits every line on commas with no quoting support.
	CSVDialectSimple CSVDialect = "simple"
	// CSVDialectRFC4180 honours quoted fields with embedded delimiters.
	CSVDialectRFC4180 CSVDialect = "rfc4180"
)

// RiskLevel is the coarse ordinal classification of churn likelihood.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// RiskLevels lists every level in ascending order of severity.
var RiskLevels = []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}

// RiskLevelFromProbability applies the prediction service's thresholds.
func RiskLevelFromProbability(p float64) RiskLevel {
	switch {
	case p < 0.3:
		return RiskLevelLow
	case p < 0.6:
		return RiskLevelMedium
	case p < 0.8:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// ParseRiskLevel matches s case-insensitively against the known levels.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for _, l := range RiskLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, true
		}
	}
	return "", false
}

// FieldKind is the declared kind of a customer record field.
type FieldKind string

const (
	FieldKindCategorical FieldKind = "categorical"
	FieldKindYesNo       FieldKind = "yes_no"
	FieldKindInteger     FieldKind = "integer"
	FieldKindDecimal     FieldKind = "decimal"
)

// IsNumeric reports whether values of this kind are parsed from text to numbers.
func (k FieldKind) IsNumeric() bool {
	return k == FieldKindInteger || k == FieldKindDecimal
}
