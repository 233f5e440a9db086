// Package stats derives summary statistics from a batch result.
package stats

import (
	"math"
	"strconv"

	"churnflow/internal/domain"
)

// NotAvailable is displayed for a percentage with a zero denominator.
const NotAvailable = "N/A"

// Aggregate summarizes result. It is pure: the same result always yields the
// same statistics. ChurnRate and AvgProbability are percentages in [0, 100]
// and are nil when every record failed.
func Aggregate(result domain.BatchResult) domain.BatchStatistics {
	s := domain.BatchStatistics{
		Total:         len(result),
		RiskBreakdown: make(map[domain.RiskLevel]int, len(domain.RiskLevels)),
	}
	for _, level := range domain.RiskLevels {
		s.RiskBreakdown[level] = 0
	}

	var probSum float64
	for _, o := range result {
		if o.IsFailure() {
			s.Errors++
			continue
		}
		if o.Success.Churn {
			s.ChurnCount++
		}
		probSum += o.Success.ChurnProbability
		s.RiskBreakdown[o.Success.RiskLevel]++
	}
	s.StayCount = s.Total - s.ChurnCount - s.Errors

	if succeeded := s.Total - s.Errors; succeeded > 0 {
		// Scale before dividing so exact halves such as 23/80 stay exact.
		rate := float64(s.ChurnCount) * 100 / float64(succeeded)
		avg := probSum * 100 / float64(succeeded)
		s.ChurnRate = &rate
		s.AvgProbability = &avg
	}
	return s
}

// FormatPercent renders a percentage with one decimal, rounding half away
// from zero, or NotAvailable for nil. The value is snapped to a millionth of
// a percent first so float error on an exact half cannot round it down.
func FormatPercent(p *float64) string {
	if p == nil {
		return NotAvailable
	}
	micro := math.Round(*p * 1e6)
	rounded := math.Round(micro/1e5) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64) + "%"
}
