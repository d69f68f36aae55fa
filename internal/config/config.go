package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Reasoning     ReasoningConfig
	Session       SessionConfig
	Batch         BatchConfig
	Observability ObservabilityConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
	OutputDir          string
	MaxUploadBytes     int
}

// ReasoningConfig holds the startup snapshot of the backend settings.
// The resolver re-reads the live environment through LoadBackend on every request.
type ReasoningConfig struct {
	Backend         BackendEnv
	RemoteRateLimit float64
	RemoteTimeout   time.Duration
}

// BackendEnv is the raw environment view the backend resolver decides from.
type BackendEnv struct {
	UseGemini    string // raw USE_GEMINI value
	UseGeminiSet bool
	Provider     string // "gemini" | "ollama"
	Model        string
	GoogleAPIKey string
	OllamaURL    string
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type BatchConfig struct {
	BatchSize   int
	Concurrency int
}

type ObservabilityConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			OutputDir:          getEnv("OUTPUT_DIR", "static/output"),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 16*1024*1024),
		},
		Reasoning: ReasoningConfig{
			Backend:         LoadBackend(),
			RemoteRateLimit: getEnvAsFloat("REMOTE_RATE_LIMIT", 2),
			RemoteTimeout:   getEnvAsDuration("REMOTE_TIMEOUT", 60*time.Second),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Batch: BatchConfig{
			BatchSize:   getEnvAsInt("BATCH_SIZE", 5),
			Concurrency: getEnvAsInt("BATCH_CONCURRENCY", 4),
		},
		Observability: ObservabilityConfig{
			OtelEnabled:  getEnv("OTEL_ENABLED", "") == "true",
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// LoadBackend reads the backend-selection variables straight from the process
// environment. It is cheap and is called once per request.
func LoadBackend() BackendEnv {
	useGemini, set := os.LookupEnv("USE_GEMINI")
	apiKey := getEnv("GOOGLE_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}

	return BackendEnv{
		UseGemini:    useGemini,
		UseGeminiSet: set,
		Provider:     strings.ToLower(strings.TrimSpace(getEnv("REMOTE_LLM_PROVIDER", "gemini"))),
		Model:        getEnv("REMOTE_LLM_MODEL", "gemini-1.5-flash"),
		GoogleAPIKey: strings.TrimSpace(apiKey),
		OllamaURL:    strings.TrimSpace(getEnv("OLLAMA_BASE_URL", "")),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
