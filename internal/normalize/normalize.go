// Package normalize coerces raw upload rows into typed customer records.
//
// Only type correctness is checked here. Category values are forwarded
// verbatim and judged by the prediction service, and a field that is absent
// from the row is forwarded unset rather than rejected.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"churnflow/internal/domain"
)

// Normalize returns one NormalizedRecord per input row, in input order.
func Normalize(raws []domain.RawRecord) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, len(raws))
	for i, raw := range raws {
		out[i] = NormalizeOne(i, raw)
	}
	return out
}

// NormalizeOne coerces a single row. A JSON null counts as an absent field.
func NormalizeOne(index int, raw domain.RawRecord) domain.NormalizedRecord {
	rec := &domain.CustomerRecord{}
	for _, f := range fields {
		v, ok := raw[f.spec.Name]
		if !ok || v == nil {
			continue
		}
		if err := f.assign(rec, v); err != nil {
			return domain.NormalizedRecord{
				Index:   index,
				Invalid: &domain.InvalidRecord{Index: index, Reason: err.Error()},
			}
		}
	}
	return domain.NormalizedRecord{Index: index, Customer: rec}
}

func (f fieldDef) assign(rec *domain.CustomerRecord, v any) error {
	switch f.spec.Kind {
	case domain.FieldKindInteger:
		n, err := toNumber(f.spec.Name, v)
		if err != nil {
			return err
		}
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return fmt.Errorf("field %s not an integer", f.spec.Name)
		}
		f.setInt(rec, int(n))
	case domain.FieldKindDecimal:
		n, err := toNumber(f.spec.Name, v)
		if err != nil {
			return err
		}
		f.setDecimal(rec, n)
	default:
		f.setText(rec, toText(f.spec.Kind, v))
	}
	return nil
}

func toNumber(name string, v any) (float64, error) {
	var n float64
	var err error
	switch val := v.(type) {
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	case json.Number:
		n, err = strconv.ParseFloat(val.String(), 64)
	case float64:
		n = val
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("field %s not numeric", name)
	}
	return n, nil
}

func toText(kind domain.FieldKind, v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if kind == domain.FieldKindYesNo {
			if val {
				return "Yes"
			}
			return "No"
		}
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
