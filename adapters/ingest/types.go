package ingest

// RawRow is one parsed row of raw cell text keyed by header name
type RawRow map[string]string

// Table is the complete parsed upload
type Table struct {
	Headers []string // column headers, trimmed and de-duplicated
	Rows    []RawRow // data rows in file order
	// RepairedCells counts cells padded or truncated to fit the header width
	RepairedCells int
}
