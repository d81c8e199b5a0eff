package cleaning

import (
	"fmt"
	"reflect"
	"testing"

	"datadeck/adapters/ingest"
	"datadeck/domain/dataset"
)

func twoColumnSchema() dataset.Schema {
	return dataset.Schema{Columns: []dataset.Column{
		{Name: "name", Type: dataset.TypeCategorical},
		{Name: "amount", Type: dataset.TypeNumeric},
	}}
}

func tableOf(rows ...[2]string) *ingest.Table {
	table := &ingest.Table{Headers: []string{"name", "amount"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, ingest.RawRow{"name": r[0], "amount": r[1]})
	}
	return table
}

func TestClean_DedupKeepsFirstOccurrence(t *testing.T) {
	table := tableOf([2]string{"A", "10"}, [2]string{"B", "20"}, [2]string{"A", "10"})

	rows, _, report := NewCleaner(DefaultConfig()).Clean(table, twoColumnSchema())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", len(rows))
	}
	if rows[0]["name"].Raw != "A" || rows[1]["name"].Raw != "B" {
		t.Errorf("dedup must keep first occurrences in order: %v", rows)
	}
	if report.RowsReceived != 3 || report.RowsAfterDedup != 2 || report.RowsKept != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestClean_UnparseableNumericBecomesNull(t *testing.T) {
	table := tableOf([2]string{"A", "10"}, [2]string{"B", "not-a-number"})

	rows, _, _ := NewCleaner(DefaultConfig()).Clean(table, twoColumnSchema())
	if len(rows) != 2 {
		t.Fatalf("unparseable cells must not drop rows, got %d rows", len(rows))
	}
	if !rows[1]["amount"].Null {
		t.Errorf("expected null cell, got %+v", rows[1]["amount"])
	}
	if rows[0]["amount"].Num != 10 {
		t.Errorf("expected parsed value 10, got %v", rows[0]["amount"].Num)
	}
}

func TestClean_SparseColumnFlagged(t *testing.T) {
	table := tableOf(
		[2]string{"A", "10"},
		[2]string{"B", ""},
		[2]string{"C", "n/a"},
		[2]string{"D", ""},
	)

	rows, sch, report := NewCleaner(DefaultConfig()).Clean(table, twoColumnSchema())
	col, _ := sch.Column("amount")
	if !col.Sparse {
		t.Error("amount is 25% complete and must be flagged sparse")
	}
	if len(rows) != 4 {
		t.Errorf("sparse columns must not drop rows, got %d", len(rows))
	}
	if len(report.SparseColumns) != 1 || report.SparseColumns[0] != "amount" {
		t.Errorf("unexpected sparse report: %v", report.SparseColumns)
	}
	if sparse := sch.ColumnsOfType(dataset.TypeNumeric); len(sparse) != 0 {
		t.Errorf("sparse numeric column must be excluded from aggregation views: %v", sparse)
	}
}

func TestClean_OutlierRowRemoved(t *testing.T) {
	rows := make([][2]string, 0, 11)
	for i := 0; i < 10; i++ {
		rows = append(rows, [2]string{fmt.Sprintf("r%d", i), "10"})
	}
	rows = append(rows, [2]string{"spike", "1000"})

	cleaned, _, report := NewCleaner(DefaultConfig()).Clean(tableOf(rows...), twoColumnSchema())
	if report.RowsAfterDedup != 11 {
		t.Fatalf("expected 11 distinct rows, got %d", report.RowsAfterDedup)
	}
	if report.RowsKept != 10 {
		t.Fatalf("expected the spike row removed, kept %d", report.RowsKept)
	}
	for _, row := range cleaned {
		if row["name"].Raw == "spike" {
			t.Error("outlier row survived cleaning")
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	table := tableOf(
		[2]string{"A", "10"},
		[2]string{"B", "20"},
		[2]string{"A", "10"},
		[2]string{"C", "15"},
	)
	cleaner := NewCleaner(DefaultConfig())
	sch := twoColumnSchema()

	first, firstSchema, _ := cleaner.Clean(table, sch)

	// feed the cleaned rows back through as raw input
	again := &ingest.Table{Headers: []string{"name", "amount"}}
	for _, row := range first {
		again.Rows = append(again.Rows, ingest.RawRow{
			"name":   row["name"].Raw,
			"amount": row["amount"].Raw,
		})
	}
	second, _, secondReport := cleaner.Clean(again, firstSchema)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("cleaning an already-cleaned dataset must be a no-op:\n%v\nvs\n%v", first, second)
	}
	if secondReport.RowsKept != len(first) {
		t.Errorf("row count changed on re-clean: %d vs %d", secondReport.RowsKept, len(first))
	}
}

func TestClean_EmptyInput(t *testing.T) {
	table := &ingest.Table{Headers: []string{"name", "amount"}}
	rows, _, report := NewCleaner(DefaultConfig()).Clean(table, twoColumnSchema())
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
	if report.RowsReceived != 0 || report.RowsKept != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}
