package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taqdimot/slide-generation-service/internal/store"
)

type Config struct {
	// Server
	Port string

	// Secrets
	GeminiAPIKey  string
	AdminUser     string
	AdminPassword string

	// Generation service
	GeminiAPIURL    string
	GeminiModel     string
	GenerateTimeout time.Duration

	// Limits
	MaxUploadBytes   int64
	MaxJSONBodyBytes int64
	MaxImageBytes    int64

	// Concurrency
	MaxConcurrentRequests int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Pipeline timeouts
	UploadPipelineTimeout time.Duration
	ExportTimeout         time.Duration
	ImageFetchTimeout     time.Duration

	// rate limiting (per IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// housekeeping
	CleanupInterval time.Duration

	// health
	HealthDegradeRatio float64

	// http
	MaxHeaderBytes int

	// Storage
	DBPath string

	// Branding overlay file (optional YAML with SiteSettings defaults)
	BrandingFile string

	// Conversion binaries
	LibreOfficeBinary  string
	LibreOfficeTimeout time.Duration
}

func Load() Config {
	return Config{
		Port: envStr("PORT", "8080"),

		GeminiAPIKey:  envStr("GEMINI_API_KEY", ""),
		AdminUser:     envStr("ADMIN_USER", "admin"),
		AdminPassword: envStr("ADMIN_PASSWORD", ""),

		GeminiAPIURL:    envStr("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-3-flash-preview"),
		GenerateTimeout: envDur("GENERATE_TIMEOUT", 120*time.Second),

		MaxUploadBytes:   int64(envInt("MAX_UPLOAD_BYTES", 20<<20)),
		MaxJSONBodyBytes: int64(envInt("MAX_JSON_BODY_BYTES", 2<<20)),
		MaxImageBytes:    int64(envInt("MAX_IMAGE_BYTES", 25<<20)),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 15)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 60*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 300*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		UploadPipelineTimeout: envDur("UPLOAD_PIPELINE_TIMEOUT", 300*time.Second),
		ExportTimeout:         envDur("EXPORT_TIMEOUT", 180*time.Second),
		ImageFetchTimeout:     envDur("IMAGE_FETCH_TIMEOUT", 20*time.Second),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 600*time.Millisecond),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),

		DBPath:       envStr("DB_PATH", "data/slidegen.db"),
		BrandingFile: envStr("BRANDING_FILE", ""),

		LibreOfficeBinary:  envStr("LIBREOFFICE_BINARY", "soffice"),
		LibreOfficeTimeout: envDur("LIBREOFFICE_TIMEOUT", 60*time.Second),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if strings.TrimSpace(c.AdminPassword) == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	return nil
}

// BrandingDefaults returns the built-in site settings, overlaid with the
// optional YAML branding file when one is configured. A broken overlay file
// is reported but never fatal.
func (c Config) BrandingDefaults() (store.SiteSettings, error) {
	defaults := store.DefaultSettings()
	if strings.TrimSpace(c.BrandingFile) == "" {
		return defaults, nil
	}

	b, err := os.ReadFile(c.BrandingFile)
	if err != nil {
		return defaults, fmt.Errorf("read branding file: %w", err)
	}
	if err := yaml.Unmarshal(b, &defaults); err != nil {
		return store.DefaultSettings(), fmt.Errorf("parse branding file: %w", err)
	}
	return defaults, nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
