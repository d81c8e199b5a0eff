package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"datadeck/adapters/ingest"
	"datadeck/adapters/llm/heuristic"
	"datadeck/adapters/memory"
	"datadeck/domain/core"
	"datadeck/domain/dataset"
	"datadeck/internal/analytics"
	"datadeck/internal/cleaning"
	"datadeck/internal/errors"
	"datadeck/internal/schema"
	"datadeck/ports"
)

func newTestPipeline(repo ports.DatasetRepository) *PipelineService {
	return NewPipelineService(
		ingest.NewReader(),
		schema.NewInferencer(schema.DefaultConfig()),
		cleaning.NewCleaner(cleaning.DefaultConfig()),
		repo,
	)
}

func newTestQueries(repo ports.DatasetRepository) *QueryService {
	return NewQueryService(repo, analytics.NewAggregator(analytics.DefaultConfig()), heuristic.NewGenerator(), time.Second)
}

const salesCSV = "name,amount\nA,10\nB,20\nA,10\n"

func TestProcessUpload_Scenario(t *testing.T) {
	repo := memory.NewDatasetRepository()
	pipeline := newTestPipeline(repo)
	ctx := context.Background()

	report, err := pipeline.ProcessUpload(ctx, "u1", "sales.csv", []byte(salesCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RowsReceived != 3 || report.RowsKept != 2 {
		t.Errorf("expected 3 received / 2 kept, got %+v", report)
	}

	ds, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("dataset not stored: %v", err)
	}
	if ds.Upload.Status != dataset.StatusCleaned {
		t.Errorf("expected cleaned status, got %s", ds.Upload.Status)
	}
	if len(ds.Rows) != 2 {
		t.Errorf("expected 2 cleaned rows, got %d", len(ds.Rows))
	}

	result, err := newTestQueries(repo).Dashboard(ctx, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasData {
		t.Fatal("expected hasData=true")
	}
	amount := result.Analytics.Summary.Numeric["amount"]
	if amount.Avg != 15 || amount.Min != 10 || amount.Max != 20 {
		t.Errorf("expected avg=15 min=10 max=20, got %+v", amount)
	}
	if len(result.Analytics.PieCharts) != 1 || len(result.Analytics.PieCharts[0].Data) != 2 {
		t.Errorf("expected a two-bucket pie for name, got %+v", result.Analytics.PieCharts)
	}
}

func TestProcessUpload_RejectionLeavesPreviousDataset(t *testing.T) {
	repo := memory.NewDatasetRepository()
	pipeline := newTestPipeline(repo)
	ctx := context.Background()

	if _, err := pipeline.ProcessUpload(ctx, "u1", "sales.csv", []byte(salesCSV)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := pipeline.ProcessUpload(ctx, "u1", "notes.txt", []byte("not a table"))
	if !errors.IsUnsupportedFormat(err) {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %v", err)
	}

	ds, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("previous dataset must remain queryable: %v", err)
	}
	if ds.Upload.OriginalFilename != "sales.csv" || len(ds.Rows) != 2 {
		t.Errorf("previous dataset was disturbed: %+v", ds.Upload)
	}
}

func TestProcessUpload_ParseFailureCommitsNothing(t *testing.T) {
	repo := memory.NewDatasetRepository()
	pipeline := newTestPipeline(repo)
	ctx := context.Background()

	_, err := pipeline.ProcessUpload(ctx, "u1", "empty.csv", []byte(""))
	if !errors.IsParseError(err) {
		t.Fatalf("expected PARSE_ERROR, got %v", err)
	}
	if _, err := repo.Get(ctx, "u1"); !errors.IsNotFound(err) {
		t.Error("no partial dataset may be committed for a failed upload")
	}
}

func TestProcessUpload_ConflictingUploadRejected(t *testing.T) {
	repo := memory.NewDatasetRepository()
	pipeline := newTestPipeline(repo)

	if err := pipeline.acquire("u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pipeline.release("u1")

	_, err := pipeline.ProcessUpload(context.Background(), "u1", "sales.csv", []byte(salesCSV))
	if !errors.IsProcessingInProgress(err) {
		t.Fatalf("expected PROCESSING_IN_PROGRESS, got %v", err)
	}

	// other users are not blocked
	if _, err := pipeline.ProcessUpload(context.Background(), "u2", "sales.csv", []byte(salesCSV)); err != nil {
		t.Errorf("per-user isolation violated: %v", err)
	}
}

func TestPipeline_DeterministicAnalytics(t *testing.T) {
	csv := "ts,amount,region\n1700007200,3,east\n1700000000,1,west\n1700003600,2,east\n"
	ctx := context.Background()

	marshaled := func(user core.UserID) string {
		repo := memory.NewDatasetRepository()
		if _, err := newTestPipeline(repo).ProcessUpload(ctx, user, "series.csv", []byte(csv)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := newTestQueries(repo).Dashboard(ctx, user, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		raw, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return string(raw)
	}

	first := marshaled("u1")
	second := marshaled("u1")
	if first != second {
		t.Errorf("pipeline output must be byte-identical across runs:\n%s\nvs\n%s", first, second)
	}
}

func TestPipeline_EpochColumnBecomesAscendingTrend(t *testing.T) {
	csv := "ts,amount\n1700007200,3\n1700000000,1\n1700003600,2\n"
	repo := memory.NewDatasetRepository()
	ctx := context.Background()

	if _, err := newTestPipeline(repo).ProcessUpload(ctx, "u1", "series.csv", []byte(csv)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds, _ := repo.Get(ctx, "u1")
	col, _ := ds.Schema.Column("ts")
	if col.Type != dataset.TypeDate {
		t.Fatalf("10-digit epochs must infer as date, got %s", col.Type)
	}

	result, err := newTestQueries(repo).Dashboard(ctx, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := result.Analytics.LineCharts
	if len(lines) != 1 {
		t.Fatalf("expected one trend chart, got %d", len(lines))
	}
	for i := 1; i < len(lines[0].Data); i++ {
		if lines[0].Data[i-1].Name > lines[0].Data[i].Name {
			t.Errorf("trend points must ascend by epoch key: %v", lines[0].Data)
		}
	}
	if lines[0].Data[0].Value != 1 || lines[0].Data[2].Value != 3 {
		t.Errorf("unexpected trend values: %v", lines[0].Data)
	}
}
