package config

import (
	"os"
	"strconv"
	"time"
)

// ModelConfig holds settings for the external vision/LLM endpoint.
type ModelConfig struct {
	Provider        string // "openai" or "gemini"
	APIKey          string
	BaseURL         string
	Name            string
	Temperature     float64
	MaxOutputTokens int
}

// LimitsConfig bounds the size and shape of accepted input and model output.
type LimitsConfig struct {
	MaxFileSizeMB  int
	MaxPDFPages    int
	MaxOutputBytes int
	PDFRenderDPI   int
}

// InvokerConfig controls retry, timeout, and rate-limit behavior of model calls.
type InvokerConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// ArchiveConfig holds optional object storage settings for upload archival.
// Archival is best-effort and disabled unless Enabled is true.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated once from environment variables at process start and is
// read-only afterwards; pipeline code receives it by reference and never
// reads ambient environment state.
type AppConfig struct {
	Port           string
	RequestTimeout time.Duration
	LogLevel       string
	Model          ModelConfig
	Limits         LimitsConfig
	Invoker        InvokerConfig
	Archive        ArchiveConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	provider := getEnv("MODEL_PROVIDER", "openai")

	defaultModel := "gpt-4o"
	defaultKey := os.Getenv("OPENAI_API_KEY")
	if provider == "gemini" {
		defaultModel = "gemini-2.0-flash"
		defaultKey = os.Getenv("GEMINI_API_KEY")
	}

	return &AppConfig{
		Port:           getEnv("PORT", "8080"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 90)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Model: ModelConfig{
			Provider:        provider,
			APIKey:          defaultKey,
			BaseURL:         getEnv("MODEL_BASE_URL", ""),
			Name:            getEnv("MODEL", defaultModel),
			Temperature:     getEnvFloat("TEMPERATURE", 0.1),
			MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 1500),
		},
		Limits: LimitsConfig{
			MaxFileSizeMB:  getEnvInt("MAX_FILE_SIZE_MB", 10),
			MaxPDFPages:    getEnvInt("MAX_PDF_PAGES", 8),
			MaxOutputBytes: getEnvInt("MAX_OUTPUT_BYTES", 65536),
			PDFRenderDPI:   getEnvInt("PDF_RENDER_DPI", 200),
		},
		Invoker: InvokerConfig{
			Timeout:           time.Duration(getEnvInt("EXTRACTION_TIMEOUT_SEC", 60)) * time.Second,
			MaxRetries:        getEnvInt("MAX_RETRIES", 3),
			RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 60),
		},
		Archive: ArchiveConfig{
			Enabled:   getEnvBool("ARCHIVE_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "invoices"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (c *AppConfig) MaxFileSizeBytes() int64 {
	return int64(c.Limits.MaxFileSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
