package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	Env             string   `env:"ENV" envDefault:"dev"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	DatabaseURL string `env:"DATABASE_URL"`

	ObjectStoreType string `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion       string `env:"AWS_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX"`

	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"models/gemini-2.5-flash"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	AssemblyAIAPIKey  string        `env:"ASSEMBLYAI_API_KEY"`
	AssemblyAIBaseURL string        `env:"ASSEMBLYAI_BASE_URL" envDefault:"https://api.assemblyai.com/v2"`
	AssemblyAITimeout time.Duration `env:"ASSEMBLYAI_TIMEOUT" envDefault:"30s"`

	TranscribePollInterval time.Duration `env:"TRANSCRIBE_POLL_INTERVAL" envDefault:"2s"`
	TranscribeTimeout      time.Duration `env:"TRANSCRIBE_TIMEOUT" envDefault:"120s"`

	HFAPIKey    string        `env:"HF_API_KEY"`
	HFBaseURL   string        `env:"HF_BASE_URL" envDefault:"https://api-inference.huggingface.co/models"`
	HFFaceModel string        `env:"HF_FACE_MODEL" envDefault:"dima806/facial_emotions_image_detection"`
	HFTimeout   time.Duration `env:"HF_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the environment. Local .env files are
// loaded best-effort first for dev convenience.
func Load() (Config, error) {
	_ = godotenv.Load(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)

	if cfg.Env == "production" && strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required in production")
	}
	return cfg, nil
}

// IsDevLike reports whether the environment tolerates missing external services.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
