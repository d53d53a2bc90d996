package importer

import (
	"context"
	"fmt"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/excel"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

// ResourceImporter loads external article lists from CSV, upserting by URL.
type ResourceImporter struct {
	cfg    *config.Config
	repo   db.Repository
	parser excel.ParsingStrategy
	mapper *excel.Mapper
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewResourceImporter(cfg *config.Config, repo db.Repository, listings *cache.Cache) *ResourceImporter {
	return &ResourceImporter{
		cfg:    cfg,
		repo:   repo,
		parser: excel.NewCSVStrategy(),
		mapper: excel.NewMapper(cfg.Location()),
		cache:  listings,
		log:    logger.Get().With().Str("component", "resource_import").Logger(),
	}
}

func (i *ResourceImporter) Import(ctx context.Context, up ResourceUpload) (*model.ImportSummary, error) {
	principal, err := auth.Require(ctx, auth.ScopeResources)
	if err != nil {
		return nil, err
	}
	if err := checkFile(up.Data, i.cfg.Imports.MaxUploadBytes, true); err != nil {
		return nil, err
	}

	batch := &model.UploadBatch{
		BatchType:      model.BatchKindResourceCSV,
		SourceFilename: up.FileName,
		SubmittedBy:    submitter(principal, up.SubmittedBy),
		Status:         model.BatchStatusProcessing,
	}
	if err := i.repo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	log := i.log.With().Int64("batch_id", batch.ID).Logger()

	rows, err := i.parser.Parse(ctx, up.Data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse CSV")
		failBatch(ctx, i.repo, log, batch.ID, err)
		return nil, err
	}

	summary := &model.ImportSummary{
		BatchID:  batch.ID,
		Total:    len(rows),
		Filtered: len(rows),
		Errors:   []string{},
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("row", row.Number).Msg("Import interrupted")
			failBatch(ctx, i.repo, log, batch.ID, fmt.Errorf("import interrupted at row %d: %w", row.Number, err))
			return nil, err
		}
		if err := i.importRow(ctx, batch.ID, row); err != nil {
			log.Warn().Err(err).Int("row", row.Number).Msg("Row skipped")
			summary.Errors = append(summary.Errors, rowNote(row.Number, err))
			continue
		}
		summary.Accepted++
	}
	summary.Skipped = summary.Filtered - summary.Accepted

	done := context.WithoutCancel(ctx)
	if err := i.repo.FinalizeBatch(done, batch.ID, model.BatchResult{
		Status:       model.BatchStatusCompleted,
		TotalRows:    summary.Total,
		AcceptedRows: summary.Accepted,
		Notes:        summary.Errors,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to finalize batch")
		failBatch(done, i.repo, log, batch.ID, err)
		return nil, err
	}

	i.cache.Invalidate(done, cache.PrefixResources)
	log.Info().Int("total", summary.Total).Int("accepted", summary.Accepted).Msg("Resource import completed")
	return summary, nil
}

func (i *ResourceImporter) importRow(ctx context.Context, batchID int64, row excel.Row) (err error) {
	defer recoverRow(&err)

	rec := i.mapper.MapResource(row)
	if rec.Title == "" || rec.URL == "" {
		return errors.ErrMissingTitleOrURL
	}

	resource := &model.ExternalResource{
		Title:       rec.Title,
		Type:        rec.Type,
		URL:         rec.URL,
		PublishedAt: rec.PublishedAt,
		Year:        rec.Year,
		BatchID:     &batchID,
	}
	if rec.Summary != "" {
		summary := rec.Summary
		resource.Summary = &summary
	}

	if err := i.repo.UpsertResource(ctx, resource); err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}
	return nil
}
