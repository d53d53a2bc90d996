package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/excel"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/photoarchive"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

// AlumniImporter runs survey spreadsheet imports, either inline or through the queue.
type AlumniImporter struct {
	cfg     *config.Config
	repo    db.Repository
	storage storage.Storage
	parser  excel.ParsingStrategy
	mapper  *excel.Mapper
	images  *media.Writer
	queue   JobQueue
	cache   *cache.Cache
	log     zerolog.Logger
}

func NewAlumniImporter(
	cfg *config.Config,
	repo db.Repository,
	store storage.Storage,
	images *media.Writer,
	queue JobQueue,
	listings *cache.Cache,
) *AlumniImporter {
	return &AlumniImporter{
		cfg:     cfg,
		repo:    repo,
		storage: store,
		parser:  excel.NewExcelStrategy(),
		mapper:  excel.NewMapper(cfg.Location()),
		images:  images,
		queue:   queue,
		cache:   listings,
		log:     logger.Get().With().Str("component", "alumni_import").Logger(),
	}
}

// Import processes an upload inside the request. Request-level failures after
// the batch exists mark it failed and are returned; row failures only show up
// in the summary.
func (i *AlumniImporter) Import(ctx context.Context, up Upload) (*model.ImportSummary, error) {
	principal, err := auth.Require(ctx, auth.ScopeAlumni)
	if err != nil {
		return nil, err
	}
	if err := i.validate(up); err != nil {
		return nil, err
	}

	batch := &model.UploadBatch{
		BatchType:      model.BatchKindAlumniExcel,
		SourceFilename: up.SheetName,
		SubmittedBy:    submitter(principal, up.SubmittedBy),
		Status:         model.BatchStatusProcessing,
	}
	if err := i.repo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	return i.process(ctx, batch.ID, up.Sheet, up.Archive)
}

// Enqueue stores the upload under imports/<batchID>/ and queues it. The batch
// stays pending until the import worker claims it.
func (i *AlumniImporter) Enqueue(ctx context.Context, up Upload) (*model.UploadBatch, error) {
	principal, err := auth.Require(ctx, auth.ScopeAlumni)
	if err != nil {
		return nil, err
	}
	if i.queue == nil {
		return nil, fmt.Errorf("import queue is not configured")
	}
	if err := i.validate(up); err != nil {
		return nil, err
	}

	batch := &model.UploadBatch{
		BatchType:      model.BatchKindAlumniExcel,
		SourceFilename: up.SheetName,
		SubmittedBy:    submitter(principal, up.SubmittedBy),
		Status:         model.BatchStatusPending,
	}
	if err := i.repo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	log := i.log.With().Int64("batch_id", batch.ID).Logger()

	job := model.ImportJob{
		BatchID:     batch.ID,
		SheetKey:    fmt.Sprintf("imports/%d/sheet.xlsx", batch.ID),
		SubmittedBy: batch.SubmittedBy,
		Role:        string(principal.Role),
	}
	err = i.storage.Upload(ctx, job.SheetKey, bytes.NewReader(up.Sheet), int64(len(up.Sheet)), contentTypeXLSX)
	if err == nil && len(up.Archive) > 0 {
		job.ArchiveKey = fmt.Sprintf("imports/%d/photos.zip", batch.ID)
		err = i.storage.Upload(ctx, job.ArchiveKey, bytes.NewReader(up.Archive), int64(len(up.Archive)), contentTypeZIP)
	}
	if err == nil {
		err = i.queue.EnqueueImportJob(ctx, job)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to queue import")
		i.fail(ctx, batch.ID, err)
		return nil, fmt.Errorf("failed to queue import: %w", err)
	}

	log.Info().Str("sheet_key", job.SheetKey).Msg("Import queued")
	return batch, nil
}

// RunJob executes a queued import on behalf of the admin who submitted it.
func (i *AlumniImporter) RunJob(ctx context.Context, job model.ImportJob) (*model.ImportSummary, error) {
	ctx = auth.WithPrincipal(ctx, auth.Principal{Username: job.SubmittedBy, Role: auth.Role(job.Role)})
	if _, err := auth.Require(ctx, auth.ScopeAlumni); err != nil {
		return nil, err
	}
	if err := i.repo.MarkBatchProcessing(ctx, job.BatchID); err != nil {
		return nil, err
	}

	limit := i.cfg.Imports.MaxUploadBytes
	sheet, err := download(ctx, i.storage, job.SheetKey, limit)
	if err == nil && len(sheet) == 0 {
		err = errors.ErrFileRequired
	}
	var archive []byte
	if err == nil {
		archive, err = download(ctx, i.storage, job.ArchiveKey, limit)
	}
	if err != nil {
		i.fail(ctx, job.BatchID, err)
		return nil, err
	}

	return i.process(ctx, job.BatchID, sheet, archive)
}

func (i *AlumniImporter) validate(up Upload) error {
	limit := i.cfg.Imports.MaxUploadBytes
	if err := checkFile(up.Sheet, limit, true); err != nil {
		return err
	}
	return checkFile(up.Archive, limit, false)
}

func (i *AlumniImporter) process(ctx context.Context, batchID int64, sheet, archive []byte) (*model.ImportSummary, error) {
	log := i.log.With().Int64("batch_id", batchID).Logger()

	photos, err := photoarchive.Open(archive, i.cfg.Imports.MaxUploadBytes)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open photo archive")
		i.fail(ctx, batchID, err)
		return nil, err
	}

	rows, err := i.parser.Parse(ctx, sheet)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse spreadsheet")
		i.fail(ctx, batchID, err)
		return nil, err
	}

	candidates := excel.ConsentFilter(rows)
	summary := &model.ImportSummary{
		BatchID:  batchID,
		Total:    len(rows),
		Filtered: len(candidates),
		Errors:   []string{},
	}
	log.Info().Int("total", summary.Total).Int("filtered", summary.Filtered).Int("photos", photos.Len()).Msg("Processing alumni rows")

	for _, row := range candidates {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("row", row.Number).Msg("Import interrupted")
			i.fail(ctx, batchID, fmt.Errorf("import interrupted at row %d: %w", row.Number, err))
			return nil, err
		}
		warning, err := i.importRow(ctx, batchID, row, photos)
		if warning != "" {
			summary.Warnings = append(summary.Warnings, warning)
		}
		if err != nil {
			log.Warn().Err(err).Int("row", row.Number).Msg("Row skipped")
			summary.Errors = append(summary.Errors, rowNote(row.Number, err))
			continue
		}
		summary.Accepted++
	}
	summary.Skipped = summary.Filtered - summary.Accepted

	// Rows already written stay written, so the outcome is recorded even if ctx
	// was cancelled during the last row.
	done := context.WithoutCancel(ctx)
	notes := append(append([]string{}, summary.Errors...), summary.Warnings...)
	err = i.repo.FinalizeBatch(done, batchID, model.BatchResult{
		Status:       model.BatchStatusCompleted,
		TotalRows:    summary.Total,
		AcceptedRows: summary.Accepted,
		Notes:        notes,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to finalize batch")
		i.fail(done, batchID, err)
		return nil, err
	}

	i.cache.Invalidate(done, cache.PrefixAlumni)
	log.Info().Int("accepted", summary.Accepted).Int("skipped", summary.Skipped).Msg("Alumni import completed")
	return summary, nil
}

// importRow persists one consenting row. A photo problem is returned as a
// warning and never stops the profile from being written.
func (i *AlumniImporter) importRow(ctx context.Context, batchID int64, row excel.Row, photos *photoarchive.Resolver) (warning string, err error) {
	defer recoverRow(&err)

	rec := i.mapper.MapAlumni(row)
	if rec.Email == "" || rec.SubmissionTs == nil {
		return "", errors.ErrMissingIdentity
	}

	var photoID *int64
	if rec.PhotoFilename != "" {
		id, err := i.storePhoto(ctx, batchID, rec.PhotoFilename, photos)
		if err != nil {
			warning = rowNote(row.Number, err)
		} else {
			photoID = id
		}
	}

	profile := &model.AlumniProfile{
		Name:            rec.Name,
		Cohort:          rec.Cohort,
		Gender:          rec.Gender,
		Major:           rec.Major,
		Email:           rec.Email,
		City:            rec.City,
		Industry:        rec.Industry,
		Occupation:      rec.Occupation,
		BioZh:           rec.BioZh,
		BioEn:           rec.BioEn,
		AllowBio:        excel.HasConsent(rec.AllowBio),
		AllowPhoto:      excel.HasConsent(rec.AllowPhoto),
		WebsiteURL:      rec.WebsiteURL,
		PhotoAssetID:    photoID,
		SubmissionEmail: rec.SubmissionEmail,
		SubmissionTs:    rec.SubmissionTs,
		BatchID:         &batchID,
	}
	if _, err := i.repo.UpsertAlumniProfile(ctx, profile, rec.Educations, rec.Experiences); err != nil {
		return warning, fmt.Errorf("failed to save profile: %w", err)
	}
	return warning, nil
}

func (i *AlumniImporter) storePhoto(ctx context.Context, batchID int64, name string, photos *photoarchive.Resolver) (*int64, error) {
	data, ok, err := photos.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrPhotoSkipped, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrPhotoNotFound, name)
	}

	asset, err := i.images.Store(ctx, media.StoreRequest{
		Data:     data,
		FileName: name,
		Usage:    model.UsageAlumniPhoto,
		BatchID:  batchID,
		Shape:    media.Portrait,
		MaxBytes: i.cfg.Imports.MaxProcessedImgBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrPhotoSkipped, err)
	}
	return &asset.AssetID, nil
}

func (i *AlumniImporter) fail(ctx context.Context, batchID int64, cause error) {
	failBatch(ctx, i.repo, i.log, batchID, cause)
}
