package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	apperrors "github.com/cccbbbaaaa/culture-china/pkg/errors"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	if err := s.Upload(ctx, "alumni-photo/1/a.jpg", strings.NewReader("jpeg"), 4, "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	ok, err := s.Exists(ctx, "alumni-photo/1/a.jpg")
	if err != nil || !ok {
		t.Fatalf("expected object to exist, got %v %v", ok, err)
	}

	rc, err := s.Download(ctx, "alumni-photo/1/a.jpg")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "jpeg" || s.ContentType("alumni-photo/1/a.jpg") != "image/jpeg" {
		t.Fatalf("unexpected object %q (%s)", body, s.ContentType("alumni-photo/1/a.jpg"))
	}

	if err := s.Delete(ctx, "alumni-photo/1/a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Download(ctx, "alumni-photo/1/a.jpg"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNewSelectsDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "memory"
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Fatalf("expected memory storage, got %T", s)
	}

	cfg.Storage.Driver = "ftp"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
