package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"datadeck/domain/chart"
	"datadeck/internal/errors"
)

func sampleAnalytics() *chart.Analytics {
	return &chart.Analytics{
		Summary: chart.Summary{
			TotalRows:    3,
			TotalColumns: 2,
			NumericOrder: []string{"amount"},
			Numeric: map[string]chart.NumericSummary{
				"amount": {Avg: 15, Min: 10, Max: 20},
			},
		},
		PieCharts:  []chart.Spec{},
		BarCharts:  []chart.Spec{},
		LineCharts: []chart.Spec{},
		AIInsights: []string{},
	}
}

func TestGenerate_ParsesJSONArray(t *testing.T) {
	client := &MockLLMClient{Response: `["First insight.", "Second insight."]`}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	insights, err := gen.Generate(context.Background(), sampleAnalytics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 2 || insights[0] != "First insight." || insights[1] != "Second insight." {
		t.Errorf("unexpected insights: %v", insights)
	}
}

func TestGenerate_ToleratesCodeFences(t *testing.T) {
	client := &MockLLMClient{Response: "```json\n[\"Fenced insight.\"]\n```"}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	insights, err := gen.Generate(context.Background(), sampleAnalytics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 1 || insights[0] != "Fenced insight." {
		t.Errorf("unexpected insights: %v", insights)
	}
}

func TestGenerate_DropsBlankEntries(t *testing.T) {
	client := &MockLLMClient{Response: `["Kept.", "", "   "]`}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	insights, err := gen.Generate(context.Background(), sampleAnalytics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 1 || insights[0] != "Kept." {
		t.Errorf("blank entries must be dropped: %v", insights)
	}
}

func TestGenerate_CapsInsightCount(t *testing.T) {
	response := `["a","b","c","d","e","f","g","h"]`
	client := &MockLLMClient{Response: response}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	insights, err := gen.Generate(context.Background(), sampleAnalytics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != maxInsights {
		t.Errorf("expected at most %d insights, got %d", maxInsights, len(insights))
	}
}

func TestGenerate_ClientErrorCarriesInsightCode(t *testing.T) {
	client := &MockLLMClient{Error: fmt.Errorf("connection refused")}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	_, err := gen.Generate(context.Background(), sampleAnalytics())
	if !errors.HasCode(err, errors.CodeInsightError) {
		t.Errorf("expected INSIGHT_ERROR, got %v", err)
	}
}

func TestGenerate_NonJSONResponseCarriesInsightCode(t *testing.T) {
	client := &MockLLMClient{Response: "Here are some thoughts about your data."}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	_, err := gen.Generate(context.Background(), sampleAnalytics())
	if !errors.HasCode(err, errors.CodeInsightError) {
		t.Errorf("expected INSIGHT_ERROR, got %v", err)
	}
}

func TestGenerate_HonorsContextCancellation(t *testing.T) {
	client := &MockLLMClient{Response: `["never delivered"]`, Delay: time.Second}
	gen := NewInsightGenerator(client, Config{Model: "test-model"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := gen.Generate(ctx, sampleAnalytics())
	if err == nil {
		t.Fatal("expected an error from the expired context")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("generation did not stop when the context expired")
	}
}
