package admin

import (
	"context"

	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/model"

	"github.com/rs/zerolog"
)

// singleBatch records one form upload as its own batch so the stored image
// can be traced back to who sent it.
type singleBatch struct {
	repo db.Repository
	id   int64
	log  zerolog.Logger
}

func openSingleBatch(ctx context.Context, repo db.Repository, kind model.BatchKind, fileName, submittedBy string, log zerolog.Logger) (*singleBatch, error) {
	batch := &model.UploadBatch{
		BatchType:      kind,
		SourceFilename: fileName,
		SubmittedBy:    submittedBy,
		TotalRows:      1,
		Status:         model.BatchStatusProcessing,
	}
	if err := repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return &singleBatch{
		repo: repo,
		id:   batch.ID,
		log:  log.With().Int64("batch_id", batch.ID).Logger(),
	}, nil
}

// finish marks the batch completed, or failed with cause as its only note.
// It still runs when ctx has been cancelled.
func (b *singleBatch) finish(ctx context.Context, cause error) {
	ctx = context.WithoutCancel(ctx)
	res := model.BatchResult{Status: model.BatchStatusCompleted, TotalRows: 1, AcceptedRows: 1}
	if cause != nil {
		res = model.BatchResult{Status: model.BatchStatusFailed, TotalRows: 1, Notes: []string{cause.Error()}}
	}
	if err := b.repo.FinalizeBatch(ctx, b.id, res); err != nil {
		b.log.Error().Err(err).Msg("Failed to finalize batch")
	}
}
