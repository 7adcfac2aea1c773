package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_TIMEOUT", "JWT_EXPIRATION", "UPLOAD_MAX_BYTES", "DATABASE_URL", "UPLOAD_ALLOWED_EXTENSIONS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Timeout != 5*time.Second {
		t.Errorf("Database.Timeout = %v, want 5s", cfg.Database.Timeout)
	}
	if cfg.JWT.Expiration != 0 {
		t.Errorf("JWT.Expiration = %v, want 0", cfg.JWT.Expiration)
	}
	if cfg.Storage.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("Storage.MaxUploadBytes = %d, want 10MiB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Storage.AllowedExtensions != nil {
		t.Errorf("Storage.AllowedExtensions = %v, want nil", cfg.Storage.AllowedExtensions)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("JWT_EXPIRATION", "24h")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", " png, txt ,,")
	t.Setenv("ORPHAN_SCAN_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Timeout != 250*time.Millisecond {
		t.Errorf("Database.Timeout = %v", cfg.Database.Timeout)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Errorf("JWT.Expiration = %v", cfg.JWT.Expiration)
	}
	if cfg.Storage.MaxUploadBytes != 2048 {
		t.Errorf("Storage.MaxUploadBytes = %d", cfg.Storage.MaxUploadBytes)
	}
	if got := cfg.Storage.AllowedExtensions; len(got) != 2 || got[0] != "png" || got[1] != "txt" {
		t.Errorf("Storage.AllowedExtensions = %v", got)
	}
	if cfg.OrphanScan.Enabled {
		t.Error("OrphanScan.Enabled = true, want false")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad timeout", "STORE_TIMEOUT", "soon"},
		{"zero timeout", "STORE_TIMEOUT", "0s"},
		{"bad expiration", "JWT_EXPIRATION", "forever"},
		{"bad upload size", "UPLOAD_MAX_BYTES", "ten"},
		{"negative upload size", "UPLOAD_MAX_BYTES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", tt.key, tt.value)
			}
		})
	}
}
