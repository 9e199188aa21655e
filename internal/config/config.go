package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	HTTPPort string
	Env      string
	LogLevel string

	LLMProvider   string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DefaultModel  string
	LLMTimeout    time.Duration

	UploadDir         string
	ConversationStore string
	DatabaseURL       string

	// Empty means CORS is not enabled.
	CORSAllowedOrigins []string

	// Set when .env could not be read; reported once the logger exists.
	DotEnvErr error
}

// LoadConfig reads the .env file (if any) and the process environment.
func LoadConfig() (*Config, error) {
	dotEnvErr := godotenv.Load()

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		DefaultModel:  getEnv("DEFAULT_MODEL", ""),
		LLMTimeout:    getEnvAsDuration("LLM_TIMEOUT_SECONDS", 60*time.Second),

		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		ConversationStore: strings.ToLower(getEnv("CONVERSATION_STORE", StoreMemory)),
		DatabaseURL:       getEnv("DATABASE_URL", "file:conversations?mode=memory&cache=shared"),

		DotEnvErr: dotEnvErr,
	}

	cfg.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS")
	if cfg.CORSAllowedOrigins == nil && cfg.IsDevelopment() {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	switch cfg.ConversationStore {
	case StoreMemory, StoreSQLite:
	default:
		return nil, fmt.Errorf("unsupported CONVERSATION_STORE %q", cfg.ConversationStore)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration reads a number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvAsInt(key, -1)
	if seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

// getEnvAsList splits a comma-separated variable. Returns nil when unset.
func getEnvAsList(key string) []string {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	out := []string{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
