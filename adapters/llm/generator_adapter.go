package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"datadeck/domain/chart"
	"datadeck/internal/errors"
	"datadeck/ports"
)

// maxInsights caps how many insight strings one generation returns
const maxInsights = 6

// InsightGeneratorAdapter implements ports.InsightGenerator against a chat
// completion model. Callers bound the call with a context deadline; any
// failure here is expected to degrade to zero insights upstream.
type InsightGeneratorAdapter struct {
	client LLMClient
	config Config
}

// NewInsightGenerator creates an LLM-backed insight generator
func NewInsightGenerator(client LLMClient, config Config) ports.InsightGenerator {
	return &InsightGeneratorAdapter{client: client, config: config}
}

// Generate asks the model for short dashboard insights as a JSON string array
func (a *InsightGeneratorAdapter) Generate(ctx context.Context, analytics *chart.Analytics) ([]string, error) {
	prompt, err := a.buildPrompt(analytics)
	if err != nil {
		return nil, errors.Wrap(errors.New(errors.CodeInsightError, "failed to build insight prompt"), err.Error())
	}

	raw, err := a.client.ChatCompletion(ctx, a.config.Model, prompt, a.config.MaxTokens)
	if err != nil {
		return nil, errors.Wrap(errors.New(errors.CodeInsightError, "insight generation failed"), err.Error())
	}

	insights, err := parseInsights(raw)
	if err != nil {
		return nil, errors.Wrap(errors.New(errors.CodeInsightError, "unparseable insight response"), err.Error())
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights, nil
}

// buildPrompt serializes the aggregates the model should comment on. The
// analytics payload is already deterministic, so the prompt is too.
func (a *InsightGeneratorAdapter) buildPrompt(analytics *chart.Analytics) (string, error) {
	payload := struct {
		Summary    chart.Summary `json:"summary"`
		PieCharts  []chart.Spec  `json:"pieCharts"`
		LineCharts []chart.Spec  `json:"lineCharts"`
		Trends     []chart.Trend `json:"trends,omitempty"`
	}{
		Summary:    analytics.Summary,
		PieCharts:  analytics.PieCharts,
		LineCharts: analytics.LineCharts,
		Trends:     analytics.Trends,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are given aggregated statistics of a user's dataset as JSON.\n")
	b.WriteString("Write up to ")
	fmt.Fprintf(&b, "%d", maxInsights)
	b.WriteString(" short, concrete insights (one sentence each) about notable values, ")
	b.WriteString("distributions and trends. Emphasize key figures with **bold** markers.\n")
	b.WriteString("Respond with ONLY a JSON array of strings, no prose, no code fences.\n\n")
	b.Write(encoded)
	return b.String(), nil
}

// parseInsights decodes the model response, tolerating markdown code fences
func parseInsights(raw string) ([]string, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var insights []string
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil {
		return nil, err
	}

	out := insights[:0]
	for _, s := range insights {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
