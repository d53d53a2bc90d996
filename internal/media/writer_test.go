package media

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/internal/storage"
	apperrors "github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/disintegration/imaging"
)

type fakeAssets struct {
	created []*model.MediaAsset
	err     error
}

func (f *fakeAssets) CreateMediaAsset(ctx context.Context, asset *model.MediaAsset) error {
	if f.err != nil {
		return f.err
	}
	asset.ID = int64(len(f.created) + 1)
	f.created = append(f.created, asset)
	return nil
}

func TestWriterStore(t *testing.T) {
	store := storage.NewMemoryStorage()
	assets := &fakeAssets{}
	w := NewWriter(store, assets, nil)
	w.now = func() time.Time { return time.UnixMilli(1700000000123) }

	src := encodePNG(t, imaging.New(1200, 900, color.NRGBA{G: 128, A: 255}))
	out, err := w.Store(context.Background(), StoreRequest{
		Data:     src,
		FileName: "Photos/Zhang San.PNG",
		Usage:    model.UsageAlumniPhoto,
		BatchID:  42,
		Shape:    Portrait,
		MaxBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	wantKey := "alumni_photo/42/1700000000123-zhang-san.jpg"
	if out.StoragePath != wantKey {
		t.Fatalf("unexpected key %q", out.StoragePath)
	}
	if ok, _ := store.Exists(context.Background(), wantKey); !ok {
		t.Fatalf("object was not uploaded")
	}
	if store.ContentType(wantKey) != ContentTypeJPEG {
		t.Fatalf("unexpected content type %q", store.ContentType(wantKey))
	}
	if len(assets.created) != 1 {
		t.Fatalf("expected one asset row, got %d", len(assets.created))
	}
	a := assets.created[0]
	if a.Width != 1000 || a.Height != 1400 || a.Ratio != 0.714 || a.BatchID == nil || *a.BatchID != 42 {
		t.Fatalf("unexpected asset %+v", a)
	}
	if out.AssetID != 1 || out.FileSize != a.FileSize {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestWriterRemovesUploadWhenInsertFails(t *testing.T) {
	store := storage.NewMemoryStorage()
	w := NewWriter(store, &fakeAssets{err: errors.New("db down")}, nil)

	_, err := w.Store(context.Background(), StoreRequest{
		Data:     encodePNG(t, imaging.New(100, 100, color.White)),
		FileName: "a.png",
		Usage:    model.UsageActivityBanner,
		BatchID:  1,
		Shape:    Banner,
		MaxBytes: 1 << 20,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Fatalf("expected no orphaned objects, got %v", keys)
	}
}

func TestWriterSourceCeiling(t *testing.T) {
	w := NewWriter(storage.NewMemoryStorage(), &fakeAssets{}, nil)
	_, err := w.Store(context.Background(), StoreRequest{
		Data:           []byte(strings.Repeat("x", 32)),
		MaxSourceBytes: 16,
	})
	if !errors.Is(err, apperrors.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"Alice.JPG":         "alice",
		"Café Photo.png":    "cafe-photo",
		"张三.jpg":            "image",
		"  --a__b--.webp ":  "a__b",
		"dir/sub/Bob  .gif": "bob",
		"":                  "image",
	}
	for in, want := range tests {
		if got := SafeName(in); got != want {
			t.Fatalf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatio(t *testing.T) {
	if Ratio(1000, 1400) != 0.714 || Ratio(2000, 1200) != 1.667 || Ratio(0, 10) != 0 {
		t.Fatalf("unexpected ratios %v %v %v", Ratio(1000, 1400), Ratio(2000, 1200), Ratio(0, 10))
	}
}
