package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taqdimot/slide-generation-service/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GEMINI_MODEL", "GENERATE_TIMEOUT", "DB_PATH", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("max upload = %d", cfg.MaxUploadBytes)
	}
	if cfg.GeminiModel != "gemini-3-flash-preview" {
		t.Fatalf("model = %q", cfg.GeminiModel)
	}
	if cfg.GenerateTimeout != 120*time.Second {
		t.Fatalf("generate timeout = %s", cfg.GenerateTimeout)
	}
	if cfg.DBPath != "data/slidegen.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-exp")
	t.Setenv("GENERATE_TIMEOUT", "30s")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "4")

	cfg := Load()
	if cfg.Port != "9090" || cfg.GeminiModel != "gemini-exp" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Fatalf("generate timeout = %s", cfg.GenerateTimeout)
	}
	if cfg.MaxConcurrentRequests != 4 {
		t.Fatalf("max concurrent = %d", cfg.MaxConcurrentRequests)
	}
}

func TestEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_NEG", "-3")
	t.Setenv("SOME_DUR", "eleventy")

	if got := envInt("SOME_INT", 7); got != 7 {
		t.Fatalf("envInt garbage = %d, want fallback", got)
	}
	if got := envInt("SOME_NEG", 7); got != 7 {
		t.Fatalf("envInt negative = %d, want fallback", got)
	}
	if got := envDur("SOME_DUR", time.Minute); got != time.Minute {
		t.Fatalf("envDur garbage = %s, want fallback", got)
	}
	if got := envFloat("SOME_DUR", 0.5); got != 0.5 {
		t.Fatalf("envFloat garbage = %g, want fallback", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{GeminiAPIKey: "k", AdminPassword: "p"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := (Config{AdminPassword: "p"}).Validate(); err == nil {
		t.Fatalf("missing API key accepted")
	}
	if err := (Config{GeminiAPIKey: "k"}).Validate(); err == nil {
		t.Fatalf("missing admin password accepted")
	}
}

func TestBrandingDefaultsWithoutFile(t *testing.T) {
	got, err := Config{}.BrandingDefaults()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if got != store.DefaultSettings() {
		t.Fatalf("expected built-in defaults, got %+v", got)
	}
}

func TestBrandingDefaultsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branding.yaml")
	body := "footer_brand_name: Acme Decks\nhero_badge: Custom badge\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Config{BrandingFile: path}.BrandingDefaults()
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if got.FooterBrandName != "Acme Decks" || got.HeroBadge != "Custom badge" {
		t.Fatalf("overlay not applied: %+v", got)
	}
	// Untouched keys keep their built-in values.
	if got.UploadBoxTitle != store.DefaultSettings().UploadBoxTitle {
		t.Fatalf("unrelated key changed: %q", got.UploadBoxTitle)
	}
}

func TestBrandingDefaultsBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branding.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Config{BrandingFile: path}.BrandingDefaults()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if got != store.DefaultSettings() {
		t.Fatalf("broken overlay should fall back to defaults")
	}
}
