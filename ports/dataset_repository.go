package ports

import (
	"context"

	"datadeck/domain/core"
	"datadeck/domain/dataset"
)

// DatasetRepository owns the single current dataset per user. Replace is the
// atomicity boundary: concurrent readers see either the old or the new
// dataset, never a mix.
type DatasetRepository interface {
	// Replace atomically swaps in a fully processed dataset for the user,
	// invalidating any previous one.
	Replace(ctx context.Context, userID core.UserID, ds *dataset.Dataset) error

	// Get returns the current dataset, or a NOT_FOUND error when none exists
	// or the last processing attempt failed.
	Get(ctx context.Context, userID core.UserID) (*dataset.Dataset, error)

	// Page returns a contiguous slice of rows in stored order. page is
	// 1-indexed; page < 1 or pageSize < 1 is an INVALID_PAGE error; a page
	// past the end returns an empty slice, not an error.
	Page(ctx context.Context, userID core.UserID, page, pageSize int) (*dataset.Page, error)
}
