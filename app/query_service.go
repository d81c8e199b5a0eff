package app

import (
	"context"
	"time"

	"datadeck/domain/chart"
	"datadeck/domain/core"
	"datadeck/domain/dataset"
	"datadeck/internal"
	"datadeck/internal/analytics"
	"datadeck/internal/errors"
	"datadeck/ports"
)

// Messages returned with hasData=false. "No dataset" and "zero usable rows"
// are distinct signals.
const (
	msgNoDataset = "No data available. Please upload a file to view analytics."
	msgEmptyData = "The uploaded file produced no usable rows after cleaning."
)

// DashboardResult is the dashboard analytics boundary payload
type DashboardResult struct {
	HasData   bool             `json:"hasData"`
	Analytics *chart.Analytics `json:"analytics,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// TableResult is the paged table boundary payload
type TableResult struct {
	HasData    bool          `json:"hasData"`
	Data       []dataset.Row `json:"data"`
	TotalPages int           `json:"totalPages"`
}

// QueryService answers read queries over the stored dataset: dashboard
// analytics and paged table access. Reads are safe to run concurrently and
// always see a fully committed dataset snapshot.
type QueryService struct {
	repo           ports.DatasetRepository
	aggregator     *analytics.Aggregator
	insights       ports.InsightGenerator
	insightTimeout time.Duration
	log            *internal.Logger
}

// NewQueryService wires the aggregator and the insight collaborator.
// insights may be nil to disable the insight step entirely.
func NewQueryService(
	repo ports.DatasetRepository,
	aggregator *analytics.Aggregator,
	insights ports.InsightGenerator,
	insightTimeout time.Duration,
) *QueryService {
	if insightTimeout <= 0 {
		insightTimeout = 10 * time.Second
	}
	return &QueryService{
		repo:           repo,
		aggregator:     aggregator,
		insights:       insights,
		insightTimeout: insightTimeout,
		log:            internal.DefaultLogger,
	}
}

// Dashboard computes the analytics payload for the user's current dataset.
// withInsights toggles the insight collaborator; its failure or timeout
// degrades to an empty insight list and never fails the request.
func (s *QueryService) Dashboard(ctx context.Context, userID core.UserID, withInsights bool) (*DashboardResult, error) {
	ds, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return &DashboardResult{HasData: false, Message: msgNoDataset}, nil
		}
		return nil, err
	}
	if len(ds.Rows) == 0 {
		return &DashboardResult{HasData: false, Message: msgEmptyData}, nil
	}

	result, err := s.aggregator.Aggregate(ctx, ds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate dataset")
	}

	if withInsights && s.insights != nil {
		result.AIInsights = s.generateInsights(ctx, result)
	}

	return &DashboardResult{HasData: true, Analytics: result}, nil
}

// generateInsights calls the collaborator under a bounded timeout and
// swallows any failure into an empty list
func (s *QueryService) generateInsights(ctx context.Context, result *chart.Analytics) []string {
	insightCtx, cancel := context.WithTimeout(ctx, s.insightTimeout)
	defer cancel()

	insights, err := s.insights.Generate(insightCtx, result)
	if err != nil {
		s.log.Warn("[Query] insight generation degraded to empty list: %v", err)
		return []string{}
	}
	if insights == nil {
		insights = []string{}
	}
	return insights
}

// Table returns one page of the user's dataset in stored order
func (s *QueryService) Table(ctx context.Context, userID core.UserID, page, pageSize int) (*TableResult, error) {
	pg, err := s.repo.Page(ctx, userID, page, pageSize)
	if err != nil {
		if errors.IsNotFound(err) {
			return &TableResult{HasData: false, Data: []dataset.Row{}, TotalPages: 0}, nil
		}
		return nil, err
	}
	return &TableResult{
		HasData:    true,
		Data:       pg.Rows,
		TotalPages: pg.TotalPages,
	}, nil
}
