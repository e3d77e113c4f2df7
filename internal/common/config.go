package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hstay/docextract/constants"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Source SourceConfig
	OCR    OCRConfig
	LLM    LLMConfig
	GCS    GCSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// SourceConfig holds document source resolution configuration
type SourceConfig struct {
	ImageDirectory    string
	AllowedExtensions []string
	MaxDownloadBytes  int64
	DownloadTimeout   time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TessdataDir  string
	PreviewChars int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// GCSConfig holds object-store configuration. Credentials is a
// base64-encoded service-account JSON document.
type GCSConfig struct {
	Credentials   string
	DefaultBucket string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Source: SourceConfig{
			ImageDirectory:    getEnv("IMAGE_DIRECTORY", "./img"),
			AllowedExtensions: getEnvAsList("ALLOWED_EXTENSIONS", constants.DefaultAllowedExtensions),
			MaxDownloadBytes:  getEnvAsInt64("MAX_DOWNLOAD_BYTES", 20<<20),
			DownloadTimeout:   getEnvAsDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		OCR: OCRConfig{
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			PreviewChars: getEnvAsInt("OCR_PREVIEW_CHARS", 240),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: 0.0,
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		GCS: GCSConfig{
			Credentials:   getEnv("GCS_CREDENTIALS", ""),
			DefaultBucket: getEnv("GCS_DEFAULT_BUCKET", ""),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError(KindInternal, "CONFIG_ERROR", "HTTP_ADDR is required", nil)
	}
	if c.Source.ImageDirectory == "" {
		return NewAppError(KindInternal, "CONFIG_ERROR", "IMAGE_DIRECTORY is required", nil)
	}
	if c.Source.MaxDownloadBytes <= 0 {
		return NewAppError(KindInternal, "CONFIG_ERROR", "MAX_DOWNLOAD_BYTES must be positive", nil)
	}
	if c.OCR.PreviewChars < 0 {
		return NewAppError(KindInternal, "CONFIG_ERROR", "OCR_PREVIEW_CHARS must be non-negative", nil)
	}
	return nil
}

// ExtensionAllowed reports whether a dotted, case-insensitive extension is allowlisted.
func (c *Config) ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.Source.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, strings.ToLower(part))
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
