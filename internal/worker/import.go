package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/queue"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

// JobRunner executes one queued alumni import.
type JobRunner interface {
	RunJob(ctx context.Context, job model.ImportJob) (*model.ImportSummary, error)
}

// JobSource delivers raw queue messages until ctx ends.
type JobSource interface {
	ConsumeImportQueue(ctx context.Context, handler queue.MessageHandler) error
}

// ImportWorker pulls queued imports and runs them on a bounded pool.
type ImportWorker struct {
	source JobSource
	runner JobRunner
	pool   *Pool
	log    zerolog.Logger
}

func NewImportWorker(source JobSource, runner JobRunner, workers int) *ImportWorker {
	return &ImportWorker{
		source: source,
		runner: runner,
		pool:   NewPool(workers),
		log:    logger.Get().With().Str("component", "import_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled or the queue consumer fails. A
// cancelled ctx is a normal shutdown and returns nil.
func (w *ImportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting import worker")

	w.pool.Start(ctx)
	err := w.source.ConsumeImportQueue(ctx, w.handleMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop waits for running imports. Call it after Start has returned.
func (w *ImportWorker) Stop() {
	w.log.Info().Msg("Stopping import worker")
	w.pool.Stop()
}

// handleMessage rejects undecodable messages so the consumer dead-letters
// them. Accepted jobs report their outcome on the batch row.
func (w *ImportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal import job")
		return fmt.Errorf("invalid import job: %w", err)
	}
	if job.BatchID <= 0 || job.SheetKey == "" {
		return fmt.Errorf("invalid import job: batch %d sheet %q", job.BatchID, job.SheetKey)
	}

	w.log.Info().Int64("batch_id", job.BatchID).Str("sheet_key", job.SheetKey).Msg("Processing import job")

	return w.pool.Submit(ctx, func(ctx context.Context) error {
		return w.process(ctx, job)
	})
}

func (w *ImportWorker) process(ctx context.Context, job model.ImportJob) error {
	log := w.log.With().Int64("batch_id", job.BatchID).Logger()

	summary, err := w.runner.RunJob(ctx, job)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidBatchState) {
			log.Warn().Err(err).Msg("Batch already claimed, skipping")
			return nil
		}
		log.Error().Err(err).Msg("Import job failed")
		return err
	}

	log.Info().
		Int("total", summary.Total).
		Int("accepted", summary.Accepted).
		Int("skipped", summary.Skipped).
		Msg("Import job completed")
	return nil
}
