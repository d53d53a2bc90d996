package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeZIP  = "application/zip"
)

// Upload is one alumni import request: a spreadsheet plus an optional photo archive.
type Upload struct {
	Sheet       []byte
	SheetName   string
	Archive     []byte
	ArchiveName string
	SubmittedBy string
}

// ResourceUpload is one external-resource CSV import request.
type ResourceUpload struct {
	Data        []byte
	FileName    string
	SubmittedBy string
}

// JobQueue hands queued imports to the import worker.
type JobQueue interface {
	EnqueueImportJob(ctx context.Context, job model.ImportJob) error
}

func checkFile(data []byte, limit int64, required bool) error {
	if len(data) == 0 {
		if required {
			return errors.ErrFileRequired
		}
		return nil
	}
	if limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", errors.ErrFileTooLarge, len(data), limit)
	}
	return nil
}

func submitter(p auth.Principal, declared string) string {
	if declared != "" {
		return declared
	}
	if p.Username != "" {
		return p.Username
	}
	return "unknown"
}

func download(ctx context.Context, store storage.Storage, key string, limit int64) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	rc, err := store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer rc.Close()

	if limit <= 0 {
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileTooLarge, key)
	}
	return data, nil
}

func rowNote(row int, err error) string {
	return errors.RowError{Row: row, Err: err}.Error()
}

// failBatch marks a batch failed. It ignores cancellation of ctx so an
// abandoned request never leaves the batch in processing.
func failBatch(ctx context.Context, repo db.Repository, log zerolog.Logger, batchID int64, cause error) {
	err := repo.FinalizeBatch(context.WithoutCancel(ctx), batchID, model.BatchResult{
		Status: model.BatchStatusFailed,
		Notes:  []string{cause.Error()},
	})
	if err != nil {
		log.Error().Err(err).Int64("batch_id", batchID).Msg("Failed to mark batch failed")
	}
}

// recoverRow turns a panic while importing one row into that row's error.
func recoverRow(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", errors.ErrRowPanic, r)
	}
}
