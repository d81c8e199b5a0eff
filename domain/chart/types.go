package chart

import (
	"encoding/json"
	"fmt"
)

// Kind identifies how a chart is meant to be drawn
type Kind string

const (
	KindPie  Kind = "pie"
	KindBar  Kind = "bar"
	KindLine Kind = "line"
)

// Point is one (label, value) pair. Name keeps the display label; charts are
// ordered by the underlying key, not by Name.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Spec is a named, ordered collection of points ready for visualization.
// Point order is stable and deterministic given the same cleaned dataset.
type Spec struct {
	Title string  `json:"title"`
	Kind  Kind    `json:"kind"`
	Data  []Point `json:"data"`
}

// NumericSummary holds per-column summary statistics over cleaned values
type NumericSummary struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary aggregates dataset totals plus one NumericSummary per numeric
// column. It marshals flat, the way the dashboard consumes it:
// {"totalRows":N,"totalColumns":M,"<col>":{"avg":..,"min":..,"max":..}}
type Summary struct {
	TotalRows    int
	TotalColumns int
	// Numeric column names in schema order; keeps iteration deterministic
	NumericOrder []string
	Numeric      map[string]NumericSummary
}

func (s Summary) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(s.Numeric)+2)
	flat["totalRows"] = s.TotalRows
	flat["totalColumns"] = s.TotalColumns
	for name, ns := range s.Numeric {
		if name == "totalRows" || name == "totalColumns" {
			name = name + "_column"
		}
		flat[name] = ns
	}
	return json.Marshal(flat)
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	s.Numeric = make(map[string]NumericSummary)
	s.NumericOrder = nil
	for key, raw := range flat {
		switch key {
		case "totalRows":
			if err := json.Unmarshal(raw, &s.TotalRows); err != nil {
				return fmt.Errorf("totalRows: %w", err)
			}
		case "totalColumns":
			if err := json.Unmarshal(raw, &s.TotalColumns); err != nil {
				return fmt.Errorf("totalColumns: %w", err)
			}
		default:
			var ns NumericSummary
			if err := json.Unmarshal(raw, &ns); err != nil {
				return fmt.Errorf("column %s: %w", key, err)
			}
			s.Numeric[key] = ns
			s.NumericOrder = append(s.NumericOrder, key)
		}
	}
	return nil
}

// Trend is a per-(date, numeric) pair direction diagnostic fed to the
// insight generator alongside the line charts.
type Trend struct {
	DateColumn    string  `json:"dateColumn"`
	NumericColumn string  `json:"numericColumn"`
	Correlation   float64 `json:"correlation"`
}

// Analytics is the full dashboard payload derived from one dataset
type Analytics struct {
	Summary    Summary  `json:"summary"`
	PieCharts  []Spec   `json:"pieCharts"`
	BarCharts  []Spec   `json:"barCharts"`
	LineCharts []Spec   `json:"lineCharts"`
	Trends     []Trend  `json:"trends,omitempty"`
	AIInsights []string `json:"aiInsights"`
}
