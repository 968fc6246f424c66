package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSizeMB int64
	UploadDir       string

	// PipelineAuditDir is the base directory /api/v1/pipeline/* requests
	// write their per-run audit directories under.
	PipelineAuditDir string
	// OpenAIAPIKey and OpenAIBaseURL configure the pkg/pipeline language
	// model the HTTP front end hands every request, read here at the
	// process boundary exactly as cmd/docxpipeline reads them.
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:             envInt("PORT", 8080),
		ReadTimeout:      envDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:     envDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:  envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadSizeMB:  int64(envInt("MAX_UPLOAD_SIZE_MB", 50)),
		UploadDir:        envString("UPLOAD_DIR", "/tmp/docx-uploads"),
		PipelineAuditDir: envString("PIPELINE_AUDIT_DIR", "/tmp/docxpipeline-audit"),
		OpenAIAPIKey:     envString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    envString("OPENAI_BASE_URL", ""),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
