package media

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

const ContentTypeJPEG = "image/jpeg"

// AssetStore persists media asset rows.
type AssetStore interface {
	CreateMediaAsset(ctx context.Context, asset *model.MediaAsset) error
}

// StoreRequest describes one source image to normalize and persist.
type StoreRequest struct {
	Data     []byte
	FileName string
	Usage    string
	BatchID  int64
	Shape    Shape
	// MaxSourceBytes rejects oversized sources before decoding. Zero disables the check.
	MaxSourceBytes int64
	MaxBytes       int64
}

// Writer normalizes images, uploads them and records a media asset row.
type Writer struct {
	storage    storage.Storage
	assets     AssetStore
	normalizer *Normalizer
	now        func() time.Time
	log        zerolog.Logger
}

func NewWriter(store storage.Storage, assets AssetStore, normalizer *Normalizer) *Writer {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &Writer{
		storage:    store,
		assets:     assets,
		normalizer: normalizer,
		now:        time.Now,
		log:        logger.Get(),
	}
}

func (w *Writer) Store(ctx context.Context, req StoreRequest) (*model.StoredAsset, error) {
	if len(req.Data) == 0 {
		return nil, errors.ErrFileRequired
	}
	if req.MaxSourceBytes > 0 && int64(len(req.Data)) > req.MaxSourceBytes {
		return nil, fmt.Errorf("%w: source image is %d bytes, limit %d", errors.ErrFileTooLarge, len(req.Data), req.MaxSourceBytes)
	}

	processed, err := w.normalizer.Normalize(req.Data, req.Shape, req.MaxBytes)
	if err != nil {
		return nil, err
	}

	key := StorageKey(req.Usage, req.BatchID, w.now(), req.FileName)
	size := int64(len(processed.Data))
	if err := w.storage.Upload(ctx, key, bytes.NewReader(processed.Data), size, ContentTypeJPEG); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	asset := &model.MediaAsset{
		StoragePath: key,
		Width:       processed.Width,
		Height:      processed.Height,
		FileSize:    size,
		Ratio:       Ratio(processed.Width, processed.Height),
		Usage:       req.Usage,
	}
	if req.BatchID > 0 {
		batchID := req.BatchID
		asset.BatchID = &batchID
	}

	if err := w.assets.CreateMediaAsset(ctx, asset); err != nil {
		if delErr := w.storage.Delete(ctx, key); delErr != nil {
			w.log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to record media asset: %w", err)
	}

	w.log.Debug().
		Int64("asset_id", asset.ID).
		Str("key", key).
		Int("quality", processed.Quality).
		Int64("bytes", size).
		Msg("Stored image")

	return &model.StoredAsset{
		AssetID:     asset.ID,
		StoragePath: key,
		Width:       asset.Width,
		Height:      asset.Height,
		FileSize:    size,
		Ratio:       asset.Ratio,
	}, nil
}

// StorageKey builds "<usage>/<batchID>/<unix-ms>-<safe-name>.jpg".
func StorageKey(usage string, batchID int64, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d/%d-%s.jpg", usage, batchID, at.UnixMilli(), SafeName(fileName))
}

var (
	unsafeRun = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	dashRun   = regexp.MustCompile(`-+`)
)

// SafeName reduces a client file name to lower-case ASCII. The source
// extension is dropped because every stored image is re-encoded as JPEG.
func SafeName(fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	s := norm.NFKD.String(base)
	s = unsafeRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" || s == "." {
		return "image"
	}
	return s
}

// Ratio is width over height rounded to three decimals, or 0 when undefined.
func Ratio(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return math.Round(float64(width)/float64(height)*1000) / 1000
}
