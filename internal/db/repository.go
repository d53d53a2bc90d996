package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateBatch(ctx context.Context, batch *model.UploadBatch) error
	MarkBatchProcessing(ctx context.Context, batchID int64) error
	FinalizeBatch(ctx context.Context, batchID int64, result model.BatchResult) error
	GetBatch(ctx context.Context, batchID int64) (*model.UploadBatch, error)

	CreateMediaAsset(ctx context.Context, asset *model.MediaAsset) error
	GetMediaAsset(ctx context.Context, assetID int64) (*model.MediaAsset, error)

	UpsertAlumniProfile(ctx context.Context, profile *model.AlumniProfile, educations, experiences []string) (int64, error)
	CreateAlumniProfile(ctx context.Context, profile *model.AlumniProfile, educations, experiences []string) (int64, error)
	UpdateAlumniProfile(ctx context.Context, profileID int64, profile *model.AlumniProfile, educations, experiences []string) error
	SetAlumniArchived(ctx context.Context, profileID int64, archived bool) error
	GetAlumniProfile(ctx context.Context, profileID int64) (*model.AlumniProfile, error)
	ListAlumniProfiles(ctx context.Context) ([]model.AlumniProfile, error)
	ListAlumniByCohort(ctx context.Context, cohort, take int) ([]model.AlumniProfile, error)
	ListCohorts(ctx context.Context) ([]int, error)

	UpsertResource(ctx context.Context, resource *model.ExternalResource) error
	CreateResource(ctx context.Context, resource *model.ExternalResource) error
	UpdateResource(ctx context.Context, resourceID int64, resource *model.ExternalResource) error
	DeleteResource(ctx context.Context, resourceID int64) error
	ListResources(ctx context.Context, filter ResourceFilter) ([]model.ExternalResource, error)

	CreateActivityMedia(ctx context.Context, item *model.ActivityMedia) error
	UpdateActivityMedia(ctx context.Context, itemID int64, item *model.ActivityMedia) error
	DeleteActivityMedia(ctx context.Context, itemID int64) error
	ListActivityMedia(ctx context.Context, filter ActivityMediaFilter) ([]model.ActivityMedia, error)

	Ping(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, batch *model.UploadBatch) error {
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now()
	}
	if batch.Status == "" {
		batch.Status = model.BatchStatusPending
	}
	return r.db.WithContext(ctx).Create(batch).Error
}

// MarkBatchProcessing moves a queued batch to processing. Any other current
// state yields ErrInvalidBatchState so a job is never run twice.
func (r *repository) MarkBatchProcessing(ctx context.Context, batchID int64) error {
	result := r.db.WithContext(ctx).Model(&model.UploadBatch{}).
		Where("id = ? AND status = ?", batchID, model.BatchStatusPending).
		Updates(map[string]interface{}{
			"status":     model.BatchStatusProcessing,
			"started_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: batch %d is not pending", errors.ErrInvalidBatchState, batchID)
	}
	return nil
}

func (r *repository) FinalizeBatch(ctx context.Context, batchID int64, res model.BatchResult) error {
	updates := map[string]interface{}{
		"status":        res.Status,
		"total_rows":    res.TotalRows,
		"accepted_rows": res.AcceptedRows,
		"finished_at":   time.Now(),
	}
	if len(res.Notes) > 0 {
		updates["notes"] = JoinNotes(res.Notes)
	}

	return r.db.WithContext(ctx).Model(&model.UploadBatch{}).
		Where("id = ?", batchID).
		Updates(updates).Error
}

func (r *repository) GetBatch(ctx context.Context, batchID int64) (*model.UploadBatch, error) {
	var batch model.UploadBatch
	if err := r.db.WithContext(ctx).First(&batch, batchID).Error; err != nil {
		return nil, translate(err)
	}
	return &batch, nil
}

func (r *repository) CreateMediaAsset(ctx context.Context, asset *model.MediaAsset) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(asset).Error
}

func (r *repository) GetMediaAsset(ctx context.Context, assetID int64) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := r.db.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		return nil, translate(err)
	}
	return &asset, nil
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// JoinNotes stores one message per line. Line breaks inside a message are
// flattened so every line stays one message.
func JoinNotes(notes []string) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		n = strings.Join(strings.Fields(strings.ReplaceAll(n, "\n", " ")), " ")
		if n != "" {
			lines = append(lines, n)
		}
	}
	return strings.Join(lines, "\n")
}

// DecodeNotes splits the newline-joined messages stored on a batch.
func DecodeNotes(batch *model.UploadBatch) []string {
	if batch == nil || batch.Notes == nil || *batch.Notes == "" {
		return nil
	}
	return strings.Split(*batch.Notes, "\n")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
