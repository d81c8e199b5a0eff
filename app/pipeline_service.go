package app

import (
	"context"
	"sync"

	"datadeck/adapters/ingest"
	"datadeck/domain/core"
	"datadeck/domain/dataset"
	"datadeck/internal"
	"datadeck/internal/cleaning"
	"datadeck/internal/errors"
	"datadeck/internal/schema"
	"datadeck/ports"
)

// PipelineService runs the upload pipeline: ingest -> infer -> clean ->
// store swap. One upload per user may be in flight at a time; a conflicting
// upload is rejected, never interleaved. A failed upload leaves the user's
// previous dataset untouched.
type PipelineService struct {
	reader     *ingest.Reader
	inferencer *schema.Inferencer
	cleaner    *cleaning.Cleaner
	repo       ports.DatasetRepository
	log        *internal.Logger

	mu       sync.Mutex
	inFlight map[core.UserID]bool
}

// NewPipelineService wires the pipeline stages against a dataset repository
func NewPipelineService(
	reader *ingest.Reader,
	inferencer *schema.Inferencer,
	cleaner *cleaning.Cleaner,
	repo ports.DatasetRepository,
) *PipelineService {
	return &PipelineService{
		reader:     reader,
		inferencer: inferencer,
		cleaner:    cleaner,
		repo:       repo,
		log:        internal.DefaultLogger,
		inFlight:   make(map[core.UserID]bool),
	}
}

// ProcessUpload runs the full pipeline for one uploaded file and commits the
// result as the user's current dataset. Returns the processing counts.
func (s *PipelineService) ProcessUpload(ctx context.Context, userID core.UserID, filename string, data []byte) (*dataset.CleanReport, error) {
	if err := s.acquire(userID); err != nil {
		return nil, err
	}
	defer s.release(userID)

	upload := dataset.UploadedFile{
		ID:               core.UploadID(core.NewID()),
		UserID:           userID,
		OriginalFilename: filename,
		UploadedAt:       core.Now(),
		Status:           dataset.StatusReceived,
	}
	s.log.Info("[Pipeline] upload %s started for user %s (%s)", upload.ID, userID, filename)

	table, err := s.reader.Read(filename, data)
	if err != nil {
		s.log.Warn("[Pipeline] upload %s rejected: %v", upload.ID, err)
		return nil, err
	}

	inferred := s.inferencer.Infer(table)
	rows, cleanedSchema, report := s.cleaner.Clean(table, inferred)

	upload.Status = dataset.StatusCleaned
	ds := &dataset.Dataset{
		Upload: upload,
		Schema: cleanedSchema,
		Rows:   rows,
		Report: report,
	}

	if err := s.repo.Replace(ctx, userID, ds); err != nil {
		s.log.Error("[Pipeline] upload %s failed to commit: %v", upload.ID, err)
		return nil, errors.Wrap(err, "failed to store cleaned dataset")
	}

	s.log.Info("[Pipeline] upload %s committed: %d/%d rows kept", upload.ID, report.RowsKept, report.RowsReceived)
	return &report, nil
}

// acquire marks the user's pipeline slot busy
func (s *PipelineService) acquire(userID core.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return errors.ProcessingInProgress("an upload is already being processed for this user")
	}
	s.inFlight[userID] = true
	return nil
}

func (s *PipelineService) release(userID core.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
