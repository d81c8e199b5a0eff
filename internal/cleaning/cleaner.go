package cleaning

import (
	"strings"

	"github.com/montanaflynn/stats"

	"datadeck/adapters/ingest"
	"datadeck/domain/dataset"
	"datadeck/internal"
	"datadeck/internal/schema"
)

// Config defines the cleaning thresholds
type Config struct {
	// CompletenessThreshold is the minimum fraction of non-null cells a
	// column needs to stay in aggregation; sparser columns are flagged
	// Sparse but their rows are kept.
	CompletenessThreshold float64
	// ZScoreThreshold is the outlier fence on numeric columns: rows whose
	// value sits more than this many standard deviations from the column
	// mean are removed.
	ZScoreThreshold float64
}

// DefaultConfig returns the standard cleaning thresholds
func DefaultConfig() Config {
	return Config{
		CompletenessThreshold: 0.5,
		ZScoreThreshold:       3.0,
	}
}

// Cleaner normalizes nulls, removes duplicate rows and strips numeric
// outliers, in that order. Output row order is the surviving input order.
type Cleaner struct {
	config Config
	log    *internal.Logger
}

// NewCleaner creates a cleaner with the given thresholds
func NewCleaner(config Config) *Cleaner {
	return &Cleaner{config: config, log: internal.DefaultLogger}
}

// Clean converts raw rows into typed rows under the inferred schema and
// applies the cleaning policies. The returned schema is the input schema
// with sparse columns flagged.
func (c *Cleaner) Clean(table *ingest.Table, sch dataset.Schema) ([]dataset.Row, dataset.Schema, dataset.CleanReport) {
	report := dataset.CleanReport{
		RowsReceived:  len(table.Rows),
		RepairedCells: table.RepairedCells,
	}

	rows := c.typeRows(table, sch)
	sch, report.SparseColumns = c.flagSparseColumns(rows, sch)

	rows = c.dedup(rows, sch)
	report.RowsAfterDedup = len(rows)

	rows = c.removeOutliers(rows, sch)
	report.RowsKept = len(rows)

	c.log.Info("[Cleaner] %d rows received, %d after dedup, %d kept",
		report.RowsReceived, report.RowsAfterDedup, report.RowsKept)
	return rows, sch, report
}

// typeRows converts raw cells into typed cells. Numeric and date cells that
// fail to parse become nulls; every row carries exactly the schema's columns.
func (c *Cleaner) typeRows(table *ingest.Table, sch dataset.Schema) []dataset.Row {
	rows := make([]dataset.Row, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row := make(dataset.Row, len(sch.Columns))
		for _, col := range sch.Columns {
			row[col.Name] = typeCell(raw[col.Name], col.Type)
		}
		rows = append(rows, row)
	}
	return rows
}

func typeCell(raw string, t dataset.ColumnType) dataset.Cell {
	if schema.IsMissing(raw) {
		return dataset.Cell{Null: true}
	}
	switch t {
	case dataset.TypeNumeric:
		v, ok := schema.ParseNumeric(raw)
		if !ok {
			return dataset.Cell{Null: true}
		}
		return dataset.Cell{Raw: raw, Num: v}
	case dataset.TypeDate:
		key, ok := schema.ParseDate(raw)
		if !ok {
			return dataset.Cell{Null: true}
		}
		return dataset.Cell{Raw: raw, Num: key}
	default:
		return dataset.Cell{Raw: raw}
	}
}

// flagSparseColumns marks columns whose completeness falls below the
// threshold. Rows are untouched; the aggregator skips flagged columns.
func (c *Cleaner) flagSparseColumns(rows []dataset.Row, sch dataset.Schema) (dataset.Schema, []string) {
	if len(rows) == 0 {
		return sch, nil
	}

	var sparse []string
	columns := make([]dataset.Column, len(sch.Columns))
	copy(columns, sch.Columns)

	for i, col := range columns {
		nonNull := 0
		for _, row := range rows {
			if !row[col.Name].Null {
				nonNull++
			}
		}
		completeness := float64(nonNull) / float64(len(rows))
		if completeness < c.config.CompletenessThreshold {
			columns[i].Sparse = true
			sparse = append(sparse, col.Name)
			c.log.Debug("[Cleaner] column %q is sparse (%.0f%% complete), excluded from aggregation",
				col.Name, completeness*100)
		}
	}
	return dataset.Schema{Columns: columns}, sparse
}

// dedup removes rows identical across all columns after normalization,
// keeping the first occurrence.
func (c *Cleaner) dedup(rows []dataset.Row, sch dataset.Schema) []dataset.Row {
	names := sch.Names()
	seen := make(map[string]bool, len(rows))
	kept := rows[:0:0]

	for _, row := range rows {
		key := rowKey(row, names)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept
}

// rowKey builds a dedup key from normalized cell values in column order
func rowKey(row dataset.Row, names []string) string {
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		cell := row[name]
		if cell.Null {
			b.WriteByte('\x00')
		} else {
			b.WriteString(cell.Raw)
		}
	}
	return b.String()
}

// removeOutliers drops rows whose value in any non-sparse numeric column
// sits outside the z-score fence. Column statistics are computed once over
// the deduplicated rows, so removal is a single deterministic pass.
func (c *Cleaner) removeOutliers(rows []dataset.Row, sch dataset.Schema) []dataset.Row {
	if len(rows) == 0 {
		return rows
	}

	drop := make([]bool, len(rows))
	for _, col := range sch.ColumnsOfType(dataset.TypeNumeric) {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			if cell := row[col.Name]; !cell.Null {
				values = append(values, cell.Num)
			}
		}
		if len(values) < 3 {
			continue
		}

		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		sd, err := stats.StandardDeviation(values)
		if err != nil || sd == 0 {
			continue
		}

		removed := 0
		for i, row := range rows {
			cell := row[col.Name]
			if cell.Null {
				continue
			}
			z := (cell.Num - mean) / sd
			if z < 0 {
				z = -z
			}
			if z > c.config.ZScoreThreshold {
				drop[i] = true
				removed++
			}
		}
		if removed > 0 {
			c.log.Debug("[Cleaner] column %q: %d outlier rows removed (|z| > %.1f)",
				col.Name, removed, c.config.ZScoreThreshold)
		}
	}

	kept := rows[:0:0]
	for i, row := range rows {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	return kept
}
