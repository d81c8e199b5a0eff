package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"datadeck/internal"
	"datadeck/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Reader parses raw uploaded bytes into a Table keyed by first-row headers.
// It accepts .csv, .xls and .xlsx and repairs ragged rows instead of
// dropping them.
type Reader struct {
	log *internal.Logger
}

// NewReader creates a new upload reader
func NewReader() *Reader {
	return &Reader{log: internal.DefaultLogger}
}

// Read parses the uploaded bytes according to the declared filename
func (r *Reader) Read(filename string, data []byte) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return r.readCSV(data)
	case ".xls", ".xlsx":
		return r.readExcel(data)
	default:
		return nil, errors.UnsupportedFormat(
			fmt.Sprintf("unsupported file format %q: only .csv, .xls and .xlsx are accepted", ext))
	}
}

// readCSV reads delimited text rows
func (r *Reader) readCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are repaired, not rejected
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ParseError("malformed CSV content"), err.Error())
	}
	r.log.Debug("[Reader] CSV parsed (%d raw rows)", len(rows))
	return r.buildTable(rows)
}

// readExcel reads the first sheet of an xls/xlsx workbook
func (r *Reader) readExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ParseError("failed to open spreadsheet"), err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.ParseError(fmt.Sprintf("failed to read sheet %q", sheets[0])), err.Error())
	}
	r.log.Debug("[Reader] sheet %q read (%d raw rows)", sheets[0], len(rows))
	return r.buildTable(rows)
}

// buildTable converts raw string rows into a Table: trims and de-duplicates
// headers, pads short rows, truncates long ones, and counts every repair.
func (r *Reader) buildTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.ParseError("file has no rows")
	}

	headers := normalizeHeaders(rows[0])
	if len(headers) == 0 {
		return nil, errors.ParseError("file has no columns")
	}

	if len(rows) < 2 {
		return nil, errors.ParseError("file must have at least a header row and one data row")
	}

	table := &Table{Headers: headers}
	for _, row := range rows[1:] {
		rowData := make(RawRow, len(headers))
		for j, name := range headers {
			if j < len(row) {
				rowData[name] = strings.TrimSpace(row[j])
			} else {
				// missing trailing cell: pad with empty, track the repair
				rowData[name] = ""
				table.RepairedCells++
			}
		}
		if len(row) > len(headers) {
			table.RepairedCells += len(row) - len(headers)
		}
		table.Rows = append(table.Rows, rowData)
	}

	r.log.Info("[Reader] file processed (%d columns, %d rows, %d repaired cells)",
		len(table.Headers), len(table.Rows), table.RepairedCells)
	return table, nil
}

// normalizeHeaders trims header cells, names blank ones and suffixes repeats
func normalizeHeaders(headerRow []string) []string {
	// drop trailing fully-empty header cells
	end := len(headerRow)
	for end > 0 && strings.TrimSpace(headerRow[end-1]) == "" {
		end--
	}

	headers := make([]string, 0, end)
	seen := make(map[string]int, end)
	for i := 0; i < end; i++ {
		name := strings.TrimSpace(headerRow[i])
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					seen[base] = n
					break
				}
			}
		}
		seen[name] = 1
		headers = append(headers, name)
	}
	return headers
}
