package memory

import (
	"context"
	"sync"

	"datadeck/domain/core"
	"datadeck/domain/dataset"
	"datadeck/internal/errors"
	"datadeck/ports"
)

// datasetRepository is an in-memory DatasetRepository used by tests and
// database-less runs. Stored datasets are treated as immutable; Replace
// swaps the pointer under the lock, so readers always see a full snapshot.
type datasetRepository struct {
	mu       sync.RWMutex
	datasets map[core.UserID]*dataset.Dataset
}

// NewDatasetRepository creates an empty in-memory repository
func NewDatasetRepository() ports.DatasetRepository {
	return &datasetRepository{
		datasets: make(map[core.UserID]*dataset.Dataset),
	}
}

// Replace atomically swaps in the user's current dataset
func (r *datasetRepository) Replace(ctx context.Context, userID core.UserID, ds *dataset.Dataset) error {
	if ds == nil {
		return errors.New(errors.CodeInternalError, "cannot store a nil dataset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[userID] = ds
	return nil
}

// Get returns the user's current dataset
func (r *datasetRepository) Get(ctx context.Context, userID core.UserID) (*dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[userID]
	if !ok || ds.Upload.Status != dataset.StatusCleaned {
		return nil, errors.NotFound("dataset")
	}
	return ds, nil
}

// Page returns one slice of rows in stored order
func (r *datasetRepository) Page(ctx context.Context, userID core.UserID, page, pageSize int) (*dataset.Page, error) {
	if page < 1 || pageSize < 1 {
		return nil, errors.InvalidPage("page and pageSize must be at least 1")
	}

	ds, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := len(ds.Rows)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &dataset.Page{
		Rows:       ds.Rows[start:end],
		TotalRows:  total,
		TotalPages: dataset.TotalPages(total, pageSize),
	}, nil
}
