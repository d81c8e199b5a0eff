package heuristic

import (
	"context"
	"fmt"

	"datadeck/domain/chart"
	"datadeck/ports"
)

// Generator produces rule-based insights from aggregated analytics. It is
// fully deterministic and is the default when no LLM is configured; tests
// use it as the stub collaborator.
type Generator struct{}

// NewGenerator creates a new heuristic insight generator
func NewGenerator() ports.InsightGenerator {
	return &Generator{}
}

// Generate derives short template insights from the summary, the categorical
// distributions and the trend diagnostics, in that order.
func (g *Generator) Generate(ctx context.Context, analytics *chart.Analytics) ([]string, error) {
	if analytics == nil {
		return nil, nil
	}

	var insights []string

	if analytics.Summary.TotalRows > 0 {
		insights = append(insights, fmt.Sprintf(
			"The dataset contains **%d** rows across **%d** columns.",
			analytics.Summary.TotalRows, analytics.Summary.TotalColumns))
	}

	for _, name := range analytics.Summary.NumericOrder {
		ns := analytics.Summary.Numeric[name]
		insights = append(insights, fmt.Sprintf(
			"**%s** ranges from **%s** to **%s** with an average of **%s**.",
			name, formatNumber(ns.Min), formatNumber(ns.Max), formatNumber(ns.Avg)))
	}

	for _, pie := range analytics.PieCharts {
		if top, share, ok := dominantBucket(pie); ok {
			insights = append(insights, fmt.Sprintf(
				"**%s** is the most common value of **%s**, covering **%.0f%%** of rows.",
				top, pie.Title, share*100))
		}
	}

	for _, trend := range analytics.Trends {
		direction := describeDirection(trend.Correlation)
		if direction == "" {
			continue
		}
		insights = append(insights, fmt.Sprintf(
			"**%s** is %s over **%s**.",
			trend.NumericColumn, direction, trend.DateColumn))
	}

	return insights, nil
}

// dominantBucket returns the biggest bucket's label and share of the total
func dominantBucket(spec chart.Spec) (string, float64, bool) {
	if len(spec.Data) == 0 {
		return "", 0, false
	}
	total := 0.0
	for _, p := range spec.Data {
		total += p.Value
	}
	if total == 0 {
		return "", 0, false
	}
	// buckets arrive count-descending, so the first one dominates
	return spec.Data[0].Name, spec.Data[0].Value / total, true
}

// describeDirection maps a correlation coefficient to trend wording
func describeDirection(corr float64) string {
	switch {
	case corr >= 0.5:
		return "trending upward"
	case corr <= -0.5:
		return "trending downward"
	case corr > -0.2 && corr < 0.2:
		return "roughly flat"
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
