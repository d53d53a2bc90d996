package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: portal\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.App.Name != "portal" {
		t.Fatalf("expected name from yaml, got %q", cfg.App.Name)
	}
	if cfg.App.Timezone != "Asia/Shanghai" {
		t.Fatalf("unexpected default timezone %q", cfg.App.Timezone)
	}
	if cfg.Imports.MaxUploadBytes != 1<<30 {
		t.Fatalf("unexpected upload ceiling %d", cfg.Imports.MaxUploadBytes)
	}
	if cfg.Imports.MaxSourceImageBytes != 8<<20 || cfg.Imports.MaxProcessedImgBytes != 1<<20 {
		t.Fatalf("unexpected image ceilings %+v", cfg.Imports)
	}
	if cfg.Admin.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.Admin.SessionTTL)
	}
	if cfg.Storage.Driver != "s3" {
		t.Fatalf("unexpected storage driver %q", cfg.Storage.Driver)
	}
}

func TestParseEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("ADMIN_SESSION_SECRET", "secret-from-env")
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Parse([]byte("database:\n  password: from-file\nadmin:\n  session_secret: file\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Fatalf("expected env password, got %q", cfg.Database.Password)
	}
	if cfg.Admin.SessionSecret != "secret-from-env" {
		t.Fatalf("expected env session secret, got %q", cfg.Admin.SessionSecret)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("expected env port, got %d", cfg.Server.Port)
	}
}

func TestParseRejectsUnknownTimezone(t *testing.T) {
	if _, err := Parse([]byte("app:\n  timezone: Mars/Olympus\n")); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  host: db
  port: 3306
  user: portal
  password: pw
  name: culture
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dsn := cfg.DatabaseDSN()
	for _, want := range []string{"portal:pw@tcp(db:3306)/culture", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
}
