package api

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/media"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/gin-gonic/gin"
)

const (
	resourcePageSize  = 12
	defaultAlumniTake = 24
	maxAlumniTake     = 200

	mediaCacheControl = "public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400"
)

var assetIDPattern = regexp.MustCompile(`^\d+$`)

func mediaURL(assetID int64) string {
	return fmt.Sprintf("/api/media/%d", assetID)
}

// ListAlumni returns the showcase cards of one cohort, photo holders first.
func (h *Handler) ListAlumni(c *gin.Context) {
	cohort, err := strconv.Atoi(c.Query("cohort"))
	if err != nil || cohort < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择期数 / Please select a cohort"})
		return
	}
	take := defaultAlumniTake
	if raw := c.Query("take"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			take = v
		}
	}
	if take > maxAlumniTake {
		take = maxAlumniTake
	}

	key := fmt.Sprintf("%scohort:%d:take:%d", cache.PrefixAlumni, cohort, take)
	cards, err := cache.Fetch(c.Request.Context(), h.Cache, key, func(ctx context.Context) ([]model.AlumniCard, error) {
		profiles, err := h.Repo.ListAlumniByCohort(ctx, cohort, take)
		if err != nil {
			return nil, err
		}
		cards := make([]model.AlumniCard, 0, len(profiles))
		for _, p := range profiles {
			cards = append(cards, alumniCard(p))
		}
		return cards, nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cohort": cohort, "items": cards})
}

func alumniCard(p model.AlumniProfile) model.AlumniCard {
	card := model.AlumniCard{
		ID:         p.ID,
		Name:       p.Name,
		Cohort:     p.Cohort,
		Major:      p.Major,
		BioZh:      p.BioZh,
		WebsiteURL: p.WebsiteURL,
	}
	if p.PhotoAssetID != nil {
		url := mediaURL(*p.PhotoAssetID)
		card.PhotoID = p.PhotoAssetID
		card.PhotoURL = &url
	}
	return card
}

func (h *Handler) ListCohorts(c *gin.Context) {
	cohorts, err := cache.Fetch(c.Request.Context(), h.Cache, cache.PrefixAlumni+"cohorts", h.Repo.ListCohorts)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cohorts == nil {
		cohorts = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"items": cohorts})
}

// ListResources pages through the article list of a site section. A type
// outside the section yields an empty page.
func (h *Handler) ListResources(c *gin.Context) {
	section := model.ResourceSection(strings.TrimSpace(c.Query("section")))
	typ := strings.TrimSpace(c.Query("type"))
	page := 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 1 {
		page = v
	}

	var types []string
	if section != "" {
		types = model.TypesForSection(section)
		if len(types) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown section %q", section)})
			return
		}
	}
	if typ != "" {
		if section != "" && !contains(types, typ) {
			c.JSON(http.StatusOK, model.ResourcePage{Items: []model.ExternalResource{}, Page: page})
			return
		}
		types = []string{typ}
	}

	key := fmt.Sprintf("%s%s:%s:%d", cache.PrefixResources, section, typ, page)
	result, err := cache.Fetch(c.Request.Context(), h.Cache, key, func(ctx context.Context) (model.ResourcePage, error) {
		items, err := h.Repo.ListResources(ctx, db.ResourceFilter{
			Types:  types,
			Offset: (page - 1) * resourcePageSize,
			Limit:  resourcePageSize + 1,
		})
		if err != nil {
			return model.ResourcePage{}, err
		}
		out := model.ResourcePage{Items: items, Page: page}
		if len(items) > resourcePageSize {
			out.Items = items[:resourcePageSize]
			out.HasMore = true
		}
		if out.Items == nil {
			out.Items = []model.ExternalResource{}
		}
		return out, nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

type slotItem struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Subtitle  *string `json:"subtitle,omitempty"`
	LinkURL   *string `json:"link_url,omitempty"`
	SortOrder int     `json:"sort_order"`
	ImageURL  string  `json:"image_url"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
}

// ListSlotMedia returns the active entries of a carousel or gallery slot.
func (h *Handler) ListSlotMedia(c *gin.Context) {
	slot := model.Slot(c.Param("slot"))
	if !slot.Valid() {
		h.fail(c, errors.ErrInvalidSlot)
		return
	}

	items, err := cache.Fetch(c.Request.Context(), h.Cache, cache.PrefixMedia+string(slot), func(ctx context.Context) ([]slotItem, error) {
		rows, err := h.Repo.ListActivityMedia(ctx, db.ActivityMediaFilter{Slot: slot, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		out := make([]slotItem, 0, len(rows))
		for _, r := range rows {
			item := slotItem{
				ID:        r.ID,
				Title:     r.Title,
				Subtitle:  r.Subtitle,
				LinkURL:   r.LinkURL,
				SortOrder: r.SortOrder,
				ImageURL:  mediaURL(r.MediaID),
			}
			if r.Media != nil {
				item.Width = r.Media.Width
				item.Height = r.Media.Height
			}
			out = append(out, item)
		}
		return out, nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "items": items})
}

// ServeMedia streams a stored asset. Only ids recorded in media_assets are served.
func (h *Handler) ServeMedia(c *gin.Context) {
	raw := c.Param("assetId")
	if !assetIDPattern.MatchString(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset id"})
		return
	}
	assetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset id"})
		return
	}

	asset, err := h.Repo.GetMediaAsset(c.Request.Context(), assetID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media asset not found"})
			return
		}
		h.fail(c, err)
		return
	}

	body, err := h.Storage.Download(c.Request.Context(), asset.StoragePath)
	if err != nil {
		h.log.Error().Err(err).Int64("asset_id", assetID).Str("key", asset.StoragePath).Msg("Failed to download media")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to download media: %v", err)})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, asset.FileSize, media.ContentTypeJPEG, body, map[string]string{
		"Cache-Control": mediaCacheControl,
	})
}
