package db

import (
	"context"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"gorm.io/gorm/clause"
)

type ActivityMediaFilter struct {
	Slot       model.Slot
	ActiveOnly bool
}

func (r *repository) CreateActivityMedia(ctx context.Context, item *model.ActivityMedia) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// UpdateActivityMedia rewrites the editable fields. The image reference is
// replaced only when item.MediaID is set.
func (r *repository) UpdateActivityMedia(ctx context.Context, itemID int64, item *model.ActivityMedia) error {
	updates := map[string]interface{}{
		"title":      item.Title,
		"subtitle":   item.Subtitle,
		"link_url":   item.LinkURL,
		"slot_key":   item.SlotKey,
		"sort_order": item.SortOrder,
		"is_active":  item.IsActive,
		"updated_at": time.Now(),
	}
	if item.MediaID != 0 {
		updates["media_id"] = item.MediaID
	}

	result := r.db.WithContext(ctx).Model(&model.ActivityMedia{}).Where("id = ?", itemID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteActivityMedia(ctx context.Context, itemID int64) error {
	result := r.db.WithContext(ctx).Delete(&model.ActivityMedia{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *repository) ListActivityMedia(ctx context.Context, filter ActivityMediaFilter) ([]model.ActivityMedia, error) {
	q := r.db.WithContext(ctx).Preload("Media")
	if filter.Slot != "" {
		q = q.Where("slot_key = ?", filter.Slot)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var items []model.ActivityMedia
	err := q.Order("sort_order ASC").Order("id ASC").Find(&items).Error
	return items, err
}
