package schema

import (
	"datadeck/adapters/ingest"
	"datadeck/domain/dataset"
	"datadeck/internal"
)

// Config defines the inference thresholds
type Config struct {
	// SampleSize caps how many rows are examined per column (first N rows)
	SampleSize int
	// TypeThreshold is the fraction of non-null sampled values that must
	// parse as a number (or date) for the column to take that type
	TypeThreshold float64
	// MaxCategories is the absolute distinct-value cap for categorical columns
	MaxCategories int
	// CategoricalRowFraction is the relative distinct-value cap: distinct
	// count must also stay at or below this fraction of sampled rows
	CategoricalRowFraction float64
}

// DefaultConfig returns the standard inference thresholds
func DefaultConfig() Config {
	return Config{
		SampleSize:             200,
		TypeThreshold:          0.90,
		MaxCategories:          50,
		CategoricalRowFraction: 0.20,
	}
}

// Inferencer classifies each column into a semantic type from a bounded
// sample of rows. Classification is a pure function of the sampled values.
type Inferencer struct {
	config Config
	log    *internal.Logger
}

// NewInferencer creates an inferencer with the given thresholds
func NewInferencer(config Config) *Inferencer {
	return &Inferencer{config: config, log: internal.DefaultLogger}
}

// Infer produces one inferred type per column, in header order
func (inf *Inferencer) Infer(table *ingest.Table) dataset.Schema {
	sample := table.Rows
	if inf.config.SampleSize > 0 && len(sample) > inf.config.SampleSize {
		sample = sample[:inf.config.SampleSize]
	}

	columns := make([]dataset.Column, len(table.Headers))
	for i, name := range table.Headers {
		columns[i] = dataset.Column{
			Name: name,
			Type: inf.classify(name, sample),
		}
	}
	return dataset.Schema{Columns: columns}
}

// classify decides one column's type. Priority: numeric, date, categorical,
// text. Epoch-magnitude numbers count toward date, not numeric, so that
// timestamp columns stored as raw epochs classify as dates.
func (inf *Inferencer) classify(name string, sample []ingest.RawRow) dataset.ColumnType {
	var (
		nonNull      int
		plainNumeric int
		epochNumeric int
		dateString   int
	)
	distinct := make(map[string]bool)

	for _, row := range sample {
		raw := row[name]
		if IsMissing(raw) {
			continue
		}
		nonNull++
		distinct[raw] = true

		if v, ok := ParseNumeric(raw); ok {
			if IsEpoch(v) {
				epochNumeric++
			} else {
				plainNumeric++
			}
			continue
		}
		if _, ok := ParseDate(raw); ok {
			dateString++
		}
	}

	if nonNull == 0 {
		// nothing to classify on; treat as free-form text
		return dataset.TypeText
	}

	threshold := inf.config.TypeThreshold
	numericRatio := float64(plainNumeric+epochNumeric) / float64(nonNull)
	epochRatio := float64(epochNumeric) / float64(nonNull)
	dateRatio := float64(dateString+epochNumeric) / float64(nonNull)

	if numericRatio >= threshold && epochRatio < threshold {
		return dataset.TypeNumeric
	}
	if dateRatio >= threshold {
		return dataset.TypeDate
	}

	limit := inf.categoricalLimit(len(sample))
	if len(distinct) <= limit {
		return dataset.TypeCategorical
	}
	return dataset.TypeText
}

// categoricalLimit is the smaller of the absolute and relative distinct caps.
// The relative cap is floored so that very small samples can still produce
// categorical columns.
func (inf *Inferencer) categoricalLimit(sampledRows int) int {
	const relativeFloor = 10
	relative := int(inf.config.CategoricalRowFraction * float64(sampledRows))
	if relative < relativeFloor {
		relative = relativeFloor
	}
	if relative < inf.config.MaxCategories {
		return relative
	}
	return inf.config.MaxCategories
}
