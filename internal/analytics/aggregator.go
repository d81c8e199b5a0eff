package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"datadeck/domain/chart"
	"datadeck/domain/dataset"
	"datadeck/internal"
)

// Config defines aggregation limits
type Config struct {
	// PieMaxCategories is the distinct-value cap for a categorical column
	// to get a pie chart; every categorical column gets a bar chart.
	PieMaxCategories int
}

// DefaultConfig returns the standard aggregation limits
func DefaultConfig() Config {
	return Config{PieMaxCategories: 8}
}

// Aggregator derives the dashboard payload from a cleaned dataset. It only
// reads the dataset, never mutates it, and its output is deterministic for
// the same input.
type Aggregator struct {
	config Config
	log    *internal.Logger
}

// NewAggregator creates an aggregator with the given limits
func NewAggregator(config Config) *Aggregator {
	return &Aggregator{config: config, log: internal.DefaultLogger}
}

// Aggregate computes summary statistics and chart-ready datasets. The three
// chart families are independent and computed concurrently; each family is
// assembled in schema order so the result is stable.
func (a *Aggregator) Aggregate(ctx context.Context, ds *dataset.Dataset) (*chart.Analytics, error) {
	out := &chart.Analytics{AIInsights: []string{}}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Summary = a.summarize(ds)
		return nil
	})
	g.Go(func() error {
		out.PieCharts, out.BarCharts = a.categoricalCharts(ds)
		return nil
	})
	g.Go(func() error {
		out.LineCharts, out.Trends = a.trendCharts(ds)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// summarize computes dataset totals and per-numeric-column avg/min/max over
// the cleaned (post-outlier-removal) values
func (a *Aggregator) summarize(ds *dataset.Dataset) chart.Summary {
	summary := chart.Summary{
		TotalRows:    len(ds.Rows),
		TotalColumns: len(ds.Schema.Columns),
		Numeric:      make(map[string]chart.NumericSummary),
	}

	for _, col := range ds.Schema.ColumnsOfType(dataset.TypeNumeric) {
		values := columnValues(ds.Rows, col.Name)
		if len(values) == 0 {
			continue
		}
		avg, _ := stats.Mean(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		summary.Numeric[col.Name] = chart.NumericSummary{Avg: avg, Min: min, Max: max}
		summary.NumericOrder = append(summary.NumericOrder, col.Name)
	}
	return summary
}

// bucket is one categorical value with its occurrence count and the row
// index where it first appeared (the tie-breaker)
type bucket struct {
	label     string
	count     int
	firstSeen int
}

// categoricalCharts builds a bar chart per categorical column and a pie
// chart for the low-cardinality ones. Buckets are ordered by count
// descending, ties broken by first appearance.
func (a *Aggregator) categoricalCharts(ds *dataset.Dataset) (pies, bars []chart.Spec) {
	for _, col := range ds.Schema.ColumnsOfType(dataset.TypeCategorical) {
		buckets := countBuckets(ds.Rows, col.Name)
		if len(buckets) == 0 {
			continue
		}

		points := make([]chart.Point, len(buckets))
		for i, b := range buckets {
			points[i] = chart.Point{Name: b.label, Value: float64(b.count)}
		}

		bars = append(bars, chart.Spec{
			Title: col.Name,
			Kind:  chart.KindBar,
			Data:  points,
		})
		if len(buckets) <= a.config.PieMaxCategories {
			pies = append(pies, chart.Spec{
				Title: col.Name,
				Kind:  chart.KindPie,
				Data:  points,
			})
		}
	}
	return pies, bars
}

// countBuckets groups a column's non-null values by count
func countBuckets(rows []dataset.Row, name string) []bucket {
	index := make(map[string]int)
	var buckets []bucket

	for i, row := range rows {
		cell := row[name]
		if cell.Null {
			continue
		}
		if at, ok := index[cell.Raw]; ok {
			buckets[at].count++
			continue
		}
		index[cell.Raw] = len(buckets)
		buckets = append(buckets, bucket{label: cell.Raw, count: 1, firstSeen: i})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].firstSeen < buckets[j].firstSeen
	})
	return buckets
}

// trendCharts builds a line chart per (date column, numeric column) pair.
// Points are grouped by the date key, summed per key and ordered ascending
// by the underlying key value, not the display label.
func (a *Aggregator) trendCharts(ds *dataset.Dataset) ([]chart.Spec, []chart.Trend) {
	var lines []chart.Spec
	var trends []chart.Trend

	dateCols := ds.Schema.ColumnsOfType(dataset.TypeDate)
	numCols := ds.Schema.ColumnsOfType(dataset.TypeNumeric)

	for _, dateCol := range dateCols {
		for _, numCol := range numCols {
			points := sumByKey(ds.Rows, dateCol.Name, numCol.Name)
			if len(points) == 0 {
				continue
			}

			specPoints := make([]chart.Point, len(points))
			for i, p := range points {
				specPoints[i] = chart.Point{Name: p.label, Value: p.sum}
			}
			lines = append(lines, chart.Spec{
				Title: fmt.Sprintf("Trend: %s over %s", numCol.Name, dateCol.Name),
				Kind:  chart.KindLine,
				Data:  specPoints,
			})

			if corr, ok := trendCorrelation(points); ok {
				trends = append(trends, chart.Trend{
					DateColumn:    dateCol.Name,
					NumericColumn: numCol.Name,
					Correlation:   corr,
				})
			}
		}
	}
	return lines, trends
}

// keyedPoint is one trend point: sort key, display label and summed value
type keyedPoint struct {
	key   float64
	label string
	sum   float64
}

// sumByKey groups numeric values by the date column's underlying key.
// Rows missing either cell are skipped. The label is the first-seen raw
// text for the key; equal keys keep insertion order via the stable sort.
func sumByKey(rows []dataset.Row, dateName, numName string) []keyedPoint {
	index := make(map[float64]int)
	var points []keyedPoint

	for _, row := range rows {
		dateCell, numCell := row[dateName], row[numName]
		if dateCell.Null || numCell.Null {
			continue
		}
		if at, ok := index[dateCell.Num]; ok {
			points[at].sum += numCell.Num
			continue
		}
		index[dateCell.Num] = len(points)
		points = append(points, keyedPoint{
			key:   dateCell.Num,
			label: dateCell.Raw,
			sum:   numCell.Num,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].key < points[j].key
	})
	return points
}

// columnValues collects a column's non-null numeric values in row order
func columnValues(rows []dataset.Row, name string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if cell := row[name]; !cell.Null {
			values = append(values, cell.Num)
		}
	}
	return values
}
