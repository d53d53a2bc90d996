package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/cccbbbaaaa/culture-china/internal/admin"
	"github.com/cccbbbaaaa/culture-china/internal/auth"
	"github.com/cccbbbaaaa/culture-china/internal/cache"
	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/importer"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// QueueStats reports the import queue backlog for the health endpoint.
type QueueStats func(ctx context.Context) (pending, dead int64, err error)

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Repo          db.Repository
	Storage       storage.Storage
	Cache         *cache.Cache
	Authenticator *auth.Authenticator
	Tokens        *auth.Tokens
	Alumni        *importer.AlumniImporter
	Resources     *importer.ResourceImporter
	AlumniAdmin   *admin.AlumniService
	ResourceAdmin *admin.ResourceService
	MediaAdmin    *admin.MediaService
	QueueStats    QueueStats
}

type Handler struct {
	Deps
	cfg *config.Config
	log zerolog.Logger
}

func NewHandler(cfg *config.Config, deps Deps) *Handler {
	return &Handler{
		Deps: deps,
		cfg:  cfg,
		log:  logger.Get().With().Str("component", "api").Logger(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	}
	if h.QueueStats != nil {
		if pending, dead, err := h.QueueStats(c.Request.Context()); err == nil {
			body["import_queue"] = gin.H{"pending": pending, "dead": dead}
		} else {
			h.log.Warn().Err(err).Msg("Failed to read queue depth")
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) DatabaseHealth(c *gin.Context) {
	if err := h.Repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// readFormFile returns the named multipart file, or nil when the field is
// absent. Files above limit are rejected before being read.
func readFormFile(c *gin.Context, field string, limit int64) ([]byte, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	if limit > 0 && header.Size > limit {
		return nil, header.Filename, fmt.Errorf("%w: %s is %d bytes, limit %d", errors.ErrFileTooLarge, header.Filename, header.Size, limit)
	}
	data, err := readMultipart(header)
	if err != nil {
		return nil, header.Filename, err
	}
	return data, header.Filename, nil
}

func readMultipart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", name)})
		return 0, false
	}
	return id, true
}

// formBool reads HTML checkbox style values.
func formBool(c *gin.Context, field string) bool {
	switch strings.ToLower(strings.TrimSpace(c.PostForm(field))) {
	case "on", "true", "1":
		return true
	}
	return false
}

// formLines splits a textarea into one entry per line.
func formLines(c *gin.Context, field string) []string {
	raw := strings.ReplaceAll(c.PostForm(field), "\r\n", "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func formInt(c *gin.Context, field string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ValidationError{Field: field, Value: raw, Message: fmt.Sprintf("%s 需为整数 / %s must be an integer", field, field)}
	}
	return v, nil
}
