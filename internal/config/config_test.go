package config

import (
	"os"
	"testing"
	"time"
)

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("ENV", "development")
	unsetEnv(t, "LLM_TIMEOUT_SECONDS")
	unsetEnv(t, "CORS_ALLOWED_ORIGINS")
	unsetEnv(t, "CONVERSATION_STORE")

	// An empty LLM_PROVIDER is not a valid provider.
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for empty LLM_PROVIDER")
	}

	t.Setenv("LLM_PROVIDER", "gemini")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ConversationStore != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.ConversationStore)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.LLMTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected permissive CORS in development, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigProductionCORS(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_TIMEOUT_SECONDS", "5")
	unsetEnv(t, "CORS_ALLOWED_ORIGINS")
	unsetEnv(t, "CONVERSATION_STORE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected CORS disabled in production, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.LLMTimeout)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigMissingKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	unsetEnv(t, "CONVERSATION_STORE")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is empty")
	}
}

func TestLoadConfigUnknownStore(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("CONVERSATION_STORE", "postgres")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported store")
	}
}
