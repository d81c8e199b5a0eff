package dataset

import (
	"datadeck/domain/core"
)

// ColumnType is the semantic type of a column, decided once at inference time
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDate        ColumnType = "date"
	TypeText        ColumnType = "text"
)

// Column describes one column of a dataset
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	// Sparse columns stay in the rows but are skipped by aggregation
	Sparse bool `json:"sparse,omitempty"`
}

// Schema is the ordered column layout of a dataset
type Schema struct {
	Columns []Column `json:"columns"`
}

// Names returns column names in schema order
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnsOfType returns columns with the given type, excluding sparse ones,
// in schema order
func (s Schema) ColumnsOfType(t ColumnType) []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Type == t && !c.Sparse {
			out = append(out, c)
		}
	}
	return out
}

// Cell is one typed value in a row. Raw keeps the original text for display;
// Num carries the parsed value for numeric columns and the epoch-seconds sort
// key for date columns. The column's inferred type decides which applies.
type Cell struct {
	Raw  string  `json:"raw"`
	Num  float64 `json:"num,omitempty"`
	Null bool    `json:"null,omitempty"`
}

// Row maps column name to cell. Every row carries exactly the schema's
// column set.
type Row map[string]Cell

// Status tracks upload processing state
type Status string

const (
	StatusReceived Status = "received"
	StatusCleaned  Status = "cleaned"
	StatusFailed   Status = "failed"
)

// UploadedFile is the metadata of one user upload
type UploadedFile struct {
	ID               core.UploadID  `json:"id"`
	UserID           core.UserID    `json:"userId"`
	OriginalFilename string         `json:"originalFilename"`
	UploadedAt       core.Timestamp `json:"uploadedAt"`
	Status           Status         `json:"status"`
}

// CleanReport carries the processing counts surfaced to the caller
type CleanReport struct {
	RowsReceived   int      `json:"rowsReceived"`
	RowsAfterDedup int      `json:"rowsAfterDedup"`
	RowsKept       int      `json:"rowsKept"`
	RepairedCells  int      `json:"repairedCells"`
	SparseColumns  []string `json:"sparseColumns,omitempty"`
}

// Dataset is the cleaned, schema-tagged row collection for one upload.
// Row order is insertion order from cleaning and is preserved by paged reads.
type Dataset struct {
	Upload UploadedFile `json:"upload"`
	Schema Schema       `json:"schema"`
	Rows   []Row        `json:"rows"`
	Report CleanReport  `json:"report"`
}

// Page is one contiguous slice of rows in stored order
type Page struct {
	Rows       []Row `json:"rows"`
	TotalRows  int   `json:"totalRows"`
	TotalPages int   `json:"totalPages"`
}

// TotalPages computes the page count for a row count and page size.
// An empty dataset still has one (empty) page.
func TotalPages(totalRows, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	if totalRows == 0 {
		return 1
	}
	return (totalRows + pageSize - 1) / pageSize
}
