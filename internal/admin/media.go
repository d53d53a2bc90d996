package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
)

// MediaInput is the carousel/gallery form. Image is required on create and
// optional on update.
type MediaInput struct {
	SlotKey   string
	Title     string
	Subtitle  string
	LinkURL   string
	SortOrder int
	IsActive  bool
	Image     []byte
	ImageName string
}

func (in MediaInput) validate() error {
	if !model.Slot(strings.TrimSpace(in.SlotKey)).Valid() {
		return errors.ErrInvalidSlot
	}
	if in.SortOrder < 0 {
		return invalid("sort_order", in.SortOrder, "排序需为非负整数 / Sort order must be >= 0")
	}
	return firstError(
		required("title", in.Title, "标题必填 / Title is required"),
		checkURL("link_url", in.LinkURL, "链接格式不正确 / URL invalid", false),
	)
}

func (in MediaInput) item() *model.ActivityMedia {
	return &model.ActivityMedia{
		Title:     strings.TrimSpace(in.Title),
		Subtitle:  optional(in.Subtitle),
		LinkURL:   optional(in.LinkURL),
		SlotKey:   model.Slot(strings.TrimSpace(in.SlotKey)),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	}
}

type MediaService struct {
	cfg    *config.Config
	repo   db.Repository
	images *media.Writer
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewMediaService(cfg *config.Config, repo db.Repository, images *media.Writer, listings *cache.Cache) *MediaService {
	return &MediaService{
		cfg:    cfg,
		repo:   repo,
		images: images,
		cache:  listings,
		log:    logger.Get().With().Str("component", "admin_media").Logger(),
	}
}

func (s *MediaService) List(ctx context.Context, slot model.Slot) ([]model.ActivityMedia, error) {
	if _, err := auth.Require(ctx, auth.ScopeMedia); err != nil {
		return nil, err
	}
	return s.repo.ListActivityMedia(ctx, db.ActivityMediaFilter{Slot: slot})
}

// Create stores the banner inside an activity_media batch and links it to a
// new slot entry. The batch ends failed when either step fails.
func (s *MediaService) Create(ctx context.Context, in MediaInput) (*model.ActivityMediaResult, error) {
	principal, err := auth.Require(ctx, auth.ScopeMedia)
	if err != nil {
		return nil, err
	}
	if len(in.Image) == 0 {
		return nil, fmt.Errorf("%w: 请上传轮播图片 / Image is required", errors.ErrFileRequired)
	}
	if err := s.checkSource(in.Image); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	batch, err := openSingleBatch(ctx, s.repo, model.BatchKindActivity, in.ImageName, principal.Username, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	asset, err := s.storeBanner(ctx, batch.id, in)
	if err != nil {
		batch.finish(ctx, err)
		return nil, err
	}

	item := in.item()
	item.MediaID = asset.AssetID
	if err := s.repo.CreateActivityMedia(ctx, item); err != nil {
		batch.finish(ctx, err)
		return nil, fmt.Errorf("failed to create activity media: %w", err)
	}
	batch.finish(ctx, nil)

	s.cache.Invalidate(ctx, cache.PrefixMedia)
	s.log.Info().Int64("media_id", item.ID).Str("slot", string(item.SlotKey)).Str("by", principal.Username).Msg("Activity media created")
	return &model.ActivityMediaResult{BatchID: batch.id, MediaID: item.ID, AssetID: asset.AssetID}, nil
}

// Update rewrites the entry. A supplied image is stored in its own batch and
// replaces the linked asset.
func (s *MediaService) Update(ctx context.Context, itemID int64, in MediaInput) error {
	principal, err := auth.Require(ctx, auth.ScopeMedia)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}

	item := in.item()
	if len(in.Image) > 0 {
		if err := s.checkSource(in.Image); err != nil {
			return err
		}
		batch, err := openSingleBatch(ctx, s.repo, model.BatchKindActivity, in.ImageName, principal.Username, s.log)
		if err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}
		asset, err := s.storeBanner(ctx, batch.id, in)
		batch.finish(ctx, err)
		if err != nil {
			return err
		}
		item.MediaID = asset.AssetID
	}

	if err := s.repo.UpdateActivityMedia(ctx, itemID, item); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PrefixMedia)
	return nil
}

func (s *MediaService) Delete(ctx context.Context, itemID int64) error {
	if _, err := auth.Require(ctx, auth.ScopeMedia); err != nil {
		return err
	}
	if err := s.repo.DeleteActivityMedia(ctx, itemID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PrefixMedia)
	return nil
}

func (s *MediaService) checkSource(data []byte) error {
	limit := s.cfg.Imports.MaxSourceImageBytes
	if limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%w: 原始图片超过 %d 字节限制，请压缩后重试。", errors.ErrFileTooLarge, limit)
	}
	return nil
}

func (s *MediaService) storeBanner(ctx context.Context, batchID int64, in MediaInput) (*model.StoredAsset, error) {
	return s.images.Store(ctx, media.StoreRequest{
		Data:           in.Image,
		FileName:       in.ImageName,
		Usage:          model.UsageActivityBanner,
		BatchID:        batchID,
		Shape:          media.Banner,
		MaxSourceBytes: s.cfg.Imports.MaxSourceImageBytes,
		MaxBytes:       s.cfg.Imports.MaxProcessedImgBytes,
	})
}
