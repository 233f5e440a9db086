package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"churnflow/internal/domain"
	"churnflow/internal/stats"
)

// maxFailuresShown caps the failure list under the summary box.
const maxFailuresShown = 10

// RenderSummary renders batch statistics in a bordered box.
func RenderSummary(filename string, s domain.BatchStatistics) string {
	line := func(key, value string) string {
		return fmt.Sprintf("%s %s", Styles.Key.Render(fmt.Sprintf("%-22s", key)), value)
	}

	lines := []string{
		Styles.Title.Render("Batch results: " + filename),
		"",
		line("Total Customers", fmt.Sprint(s.Total)),
		line("Predicted to Churn", fmt.Sprint(s.ChurnCount)),
		line("Predicted to Stay", fmt.Sprint(s.StayCount)),
		line("Errors", fmt.Sprint(s.Errors)),
		line("Churn Rate", stats.FormatPercent(s.ChurnRate)),
		line("Avg Churn Probability", stats.FormatPercent(s.AvgProbability)),
		"",
	}
	for _, level := range domain.RiskLevels {
		style := lipgloss.NewStyle().Foreground(riskColors[string(level)])
		lines = append(lines, line("Risk "+string(level), style.Render(fmt.Sprint(s.RiskBreakdown[level]))))
	}

	return Styles.SummaryBox.Render(strings.Join(lines, "\n"))
}

// RenderFailures lists the first failed records by index.
func RenderFailures(result domain.BatchResult) string {
	var b strings.Builder
	shown := 0
	total := 0
	for i := range result {
		if !result[i].IsFailure() {
			continue
		}
		total++
		if shown < maxFailuresShown {
			fmt.Fprintf(&b, "  %s %s\n", Styles.Key.Render(fmt.Sprintf("#%d", result[i].Index)), result[i].ErrorMessage())
			shown++
		}
	}
	if total == 0 {
		return ""
	}
	if total > shown {
		fmt.Fprintf(&b, "  %s\n", Styles.Muted.Render(fmt.Sprintf("... and %d more", total-shown)))
	}
	return Styles.Bold.Render("Failed records") + "\n" + b.String()
}

// RenderSchema renders the customer record fields as a table.
func RenderSchema(fields []domain.FieldSpec) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))).
		Headers("FIELD", "KIND", "KNOWN VALUES")

	for _, f := range fields {
		options := strings.Join(f.Options, ", ")
		if options == "" {
			options = "-"
		}
		t.Row(f.Name, string(f.Kind), options)
	}
	return t.String()
}
