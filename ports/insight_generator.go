package ports

import (
	"context"

	"datadeck/domain/chart"
)

// InsightGenerator turns aggregated analytics into short text insights.
// Strings may carry **bold** emphasis markers for the consumer to render.
// Generation is strictly additive: callers bound the call with a timeout and
// degrade to zero insights on failure.
type InsightGenerator interface {
	Generate(ctx context.Context, analytics *chart.Analytics) ([]string, error)
}
