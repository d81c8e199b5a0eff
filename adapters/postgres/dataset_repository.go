package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"datadeck/domain/core"
	"datadeck/domain/dataset"
	"datadeck/internal/errors"
	"datadeck/ports"
)

// rowInsertBatch caps the multi-row insert size when persisting dataset rows
const rowInsertBatch = 500

// datasetRepository implements ports.DatasetRepository on Postgres. One
// datasets row per user plus their cells in dataset_rows; Replace runs in a
// single transaction so readers see either the old or the new dataset.
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a Postgres-backed dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Replace atomically swaps in a fully processed dataset for the user
func (r *datasetRepository) Replace(ctx context.Context, userID core.UserID, ds *dataset.Dataset) error {
	schemaJSON, err := json.Marshal(ds.Schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	reportJSON, err := json.Marshal(ds.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal clean report: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.DatabaseError("failed to begin transaction"), err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_rows WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(errors.DatabaseError("failed to clear previous rows"), err.Error())
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(errors.DatabaseError("failed to clear previous dataset"), err.Error())
	}

	query := `INSERT INTO datasets (
		user_id, upload_id, original_filename, uploaded_at, status,
		schema, report, row_count
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.ExecContext(ctx, query,
		userID, ds.Upload.ID, ds.Upload.OriginalFilename, ds.Upload.UploadedAt.Time(),
		ds.Upload.Status, schemaJSON, reportJSON, len(ds.Rows),
	)
	if err != nil {
		return errors.Wrap(errors.DatabaseError("failed to insert dataset"), err.Error())
	}

	if err := r.insertRows(ctx, tx, userID, ds.Rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.DatabaseError("failed to commit dataset swap"), err.Error())
	}
	return nil
}

// insertRows persists cells in row_index order, batched to keep statements
// bounded for large files
func (r *datasetRepository) insertRows(ctx context.Context, tx *sqlx.Tx, userID core.UserID, rows []dataset.Row) error {
	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO dataset_rows (user_id, row_index, cells) VALUES ($1, $2, $3)`)
	if err != nil {
		return errors.Wrap(errors.DatabaseError("failed to prepare row insert"), err.Error())
	}
	defer stmt.Close()

	for i := 0; i < len(rows); i += rowInsertBatch {
		end := i + rowInsertBatch
		if end > len(rows) {
			end = len(rows)
		}
		for j := i; j < end; j++ {
			cellsJSON, err := json.Marshal(rows[j])
			if err != nil {
				return fmt.Errorf("failed to marshal row %d: %w", j, err)
			}
			if _, err := stmt.ExecContext(ctx, userID, j, cellsJSON); err != nil {
				return errors.Wrap(errors.DatabaseError(fmt.Sprintf("failed to insert row %d", j)), err.Error())
			}
		}
	}
	return nil
}

// Get returns the user's current dataset with all rows in stored order
func (r *datasetRepository) Get(ctx context.Context, userID core.UserID) (*dataset.Dataset, error) {
	meta, err := r.getMeta(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT cells FROM dataset_rows WHERE user_id = $1 ORDER BY row_index`, userID)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError("failed to query dataset rows"), err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON []byte
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, errors.Wrap(errors.DatabaseError("failed to scan dataset row"), err.Error())
		}
		var row dataset.Row
		if err := json.Unmarshal(cellsJSON, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dataset row: %w", err)
		}
		meta.Rows = append(meta.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.DatabaseError("failed reading dataset rows"), err.Error())
	}
	return meta, nil
}

// getMeta loads the datasets row without its cells
func (r *datasetRepository) getMeta(ctx context.Context, userID core.UserID) (*dataset.Dataset, error) {
	query := `SELECT upload_id, original_filename, uploaded_at, status, schema, report
	FROM datasets WHERE user_id = $1`

	var (
		ds         dataset.Dataset
		uploadedAt sql.NullTime
		schemaJSON []byte
		reportJSON []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&ds.Upload.ID, &ds.Upload.OriginalFilename, &uploadedAt,
		&ds.Upload.Status, &schemaJSON, &reportJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("dataset")
		}
		return nil, errors.Wrap(errors.DatabaseError("failed to get dataset"), err.Error())
	}
	if ds.Upload.Status != dataset.StatusCleaned {
		return nil, errors.NotFound("dataset")
	}

	ds.Upload.UserID = userID
	if uploadedAt.Valid {
		ds.Upload.UploadedAt = core.NewTimestamp(uploadedAt.Time)
	}
	if err := json.Unmarshal(schemaJSON, &ds.Schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &ds.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal clean report: %w", err)
		}
	}
	return &ds, nil
}

// Page returns one slice of rows in stored order using the persisted
// row_index, without loading the whole dataset
func (r *datasetRepository) Page(ctx context.Context, userID core.UserID, page, pageSize int) (*dataset.Page, error) {
	if page < 1 || pageSize < 1 {
		return nil, errors.InvalidPage("page and pageSize must be at least 1")
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT row_count FROM datasets WHERE user_id = $1 AND status = $2`,
		userID, dataset.StatusCleaned).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("dataset")
		}
		return nil, errors.Wrap(errors.DatabaseError("failed to count dataset rows"), err.Error())
	}

	result := &dataset.Page{
		Rows:       []dataset.Row{},
		TotalRows:  total,
		TotalPages: dataset.TotalPages(total, pageSize),
	}

	offset := (page - 1) * pageSize
	if offset >= total {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT cells FROM dataset_rows WHERE user_id = $1 ORDER BY row_index LIMIT $2 OFFSET $3`,
		userID, pageSize, offset)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError("failed to query page"), err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON []byte
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, errors.Wrap(errors.DatabaseError("failed to scan page row"), err.Error())
		}
		var row dataset.Row
		if err := json.Unmarshal(cellsJSON, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page row: %w", err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.DatabaseError("failed reading page rows"), err.Error())
	}
	return result, nil
}
