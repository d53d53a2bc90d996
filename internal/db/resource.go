package db

import (
	"context"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"gorm.io/gorm/clause"
)

type ResourceFilter struct {
	// Types restricts results to these raw types. Empty means all.
	Types  []string
	Offset int
	Limit  int
}

// UpsertResource inserts a resource or refreshes the one already stored under its URL.
func (r *repository) UpsertResource(ctx context.Context, resource *model.ExternalResource) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "type", "summary", "published_at", "year", "batch_id", "updated_at"}),
	}).Create(resource).Error
}

func (r *repository) CreateResource(ctx context.Context, resource *model.ExternalResource) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(resource).Error; err != nil {
		if isDuplicate(err) {
			return errors.ErrDuplicateLink
		}
		return err
	}
	return nil
}

func (r *repository) UpdateResource(ctx context.Context, resourceID int64, resource *model.ExternalResource) error {
	result := r.db.WithContext(ctx).Model(&model.ExternalResource{}).
		Where("id = ?", resourceID).
		Updates(map[string]interface{}{
			"title":        resource.Title,
			"type":         resource.Type,
			"summary":      resource.Summary,
			"url":          resource.URL,
			"published_at": resource.PublishedAt,
			"year":         resource.Year,
			"is_featured":  resource.IsFeatured,
			"is_pinned":    resource.IsPinned,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return errors.ErrDuplicateLink
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteResource(ctx context.Context, resourceID int64) error {
	result := r.db.WithContext(ctx).Delete(&model.ExternalResource{}, resourceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// ListResources orders by publish date then creation time, newest first.
func (r *repository) ListResources(ctx context.Context, filter ResourceFilter) ([]model.ExternalResource, error) {
	q := r.db.WithContext(ctx).Model(&model.ExternalResource{})
	if len(filter.Types) > 0 {
		q = q.Where("type IN ?", filter.Types)
	}
	q = q.Order("published_at DESC").Order("created_at DESC").Order("id DESC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var resources []model.ExternalResource
	err := q.Find(&resources).Error
	return resources, err
}
