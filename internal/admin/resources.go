package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/excel"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/model"

	"github.com/rs/zerolog"
)

// ResourceInput is the resource form as submitted. Dates and years arrive as text.
type ResourceInput struct {
	Title       string
	Type        string
	Summary     string
	URL         string
	PublishedAt string
	Year        string
	IsFeatured  bool
	IsPinned    bool
}

func (in ResourceInput) resource() (*model.ExternalResource, error) {
	if err := firstError(
		required("title", in.Title, "标题必填 / Title is required"),
		required("type", in.Type, "请选择类别 / Type is required"),
		checkURL("url", in.URL, "请输入合法链接 / URL is invalid", true),
	); err != nil {
		return nil, err
	}

	var publishedAt *time.Time
	if strings.TrimSpace(in.PublishedAt) != "" {
		publishedAt = excel.ParseDate(in.PublishedAt, time.UTC)
		if publishedAt == nil {
			return nil, invalid("published_at", in.PublishedAt, "发布日期格式不正确 / Invalid publish date")
		}
	}

	var year *int
	if v := strings.TrimSpace(in.Year); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("year", in.Year, "年份必须为数字 / Year must be a number")
		}
		year = &parsed
	} else if publishedAt != nil {
		y := publishedAt.Year()
		year = &y
	}

	return &model.ExternalResource{
		Title:       strings.TrimSpace(in.Title),
		Type:        strings.TrimSpace(in.Type),
		Summary:     optional(in.Summary),
		URL:         strings.TrimSpace(in.URL),
		PublishedAt: publishedAt,
		Year:        year,
		IsFeatured:  in.IsFeatured,
		IsPinned:    in.IsPinned,
	}, nil
}

type ResourceService struct {
	repo  db.Repository
	cache *cache.Cache
	log   zerolog.Logger
}

func NewResourceService(repo db.Repository, listings *cache.Cache) *ResourceService {
	return &ResourceService{
		repo:  repo,
		cache: listings,
		log:   logger.Get().With().Str("component", "admin_resources").Logger(),
	}
}

// List returns resources of the given raw types, or all of them.
func (s *ResourceService) List(ctx context.Context, types []string) ([]model.ExternalResource, error) {
	if _, err := auth.Require(ctx, auth.ScopeResources); err != nil {
		return nil, err
	}
	return s.repo.ListResources(ctx, db.ResourceFilter{Types: types})
}

// Create fails with ErrDuplicateLink when the URL is already stored.
func (s *ResourceService) Create(ctx context.Context, in ResourceInput) (*model.ExternalResource, error) {
	principal, err := auth.Require(ctx, auth.ScopeResources)
	if err != nil {
		return nil, err
	}
	resource, err := in.resource()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.PrefixResources)
	s.log.Info().Int64("resource_id", resource.ID).Str("by", principal.Username).Msg("Resource created")
	return resource, nil
}

func (s *ResourceService) Update(ctx context.Context, resourceID int64, in ResourceInput) error {
	if _, err := auth.Require(ctx, auth.ScopeResources); err != nil {
		return err
	}
	resource, err := in.resource()
	if err != nil {
		return err
	}
	if err := s.repo.UpdateResource(ctx, resourceID, resource); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PrefixResources)
	return nil
}

func (s *ResourceService) Delete(ctx context.Context, resourceID int64) error {
	if _, err := auth.Require(ctx, auth.ScopeResources); err != nil {
		return err
	}
	if err := s.repo.DeleteResource(ctx, resourceID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PrefixResources)
	return nil
}
