package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gwi.com/chat-assistant/internal/api"
	"gwi.com/chat-assistant/internal/config"
	"gwi.com/chat-assistant/internal/core"
	"gwi.com/chat-assistant/internal/logging"
	"gwi.com/chat-assistant/internal/store"
)

func main() {
	// Command line flag for listing provider models
	listModelsFlag := flag.Bool("list-models", false, "Print the models supported by the configured provider and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	logger := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.DotEnvErr != nil {
		logger.Debug().Msg("no .env file found, relying on environment variables")
	}

	ctx := context.Background()

	// Initialize LLM provider
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.LLMProvider).Msg("failed to initialize LLM provider")
	}
	defer closeProvider()
	logger.Info().Str("provider", provider.Name()).Msg("LLM provider ready")

	catalog := core.NewModelCatalog(provider, cfg.LLMTimeout)

	if *listModelsFlag {
		models, err := catalog.ListModels(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("listing models failed")
		}
		for _, m := range models {
			fmt.Println(m)
		}
		return
	}

	// Initialize conversation store
	conversations, err := newConversationStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.ConversationStore).Msg("failed to initialize conversation store")
	}
	defer conversations.Close()
	logger.Info().Str("store", cfg.ConversationStore).Msg("conversation store ready")

	chatService := core.NewChatService(conversations, provider, cfg.LLMTimeout, logger)
	uploadService := core.NewUploadService(cfg.UploadDir, logger)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, catalog, uploadService, logger)
	router := api.NewRouter(apiHandler, logger, cfg.CORSAllowedOrigins)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,                // uploads can be large
		WriteTimeout: cfg.LLMTimeout + 15*time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", serverAddr).
			Str("env", cfg.Env).
			Strs("cors_origins", cfg.CORSAllowedOrigins).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Str("addr", serverAddr).Msg("could not listen")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exiting gracefully")
}

func newProvider(ctx context.Context, cfg *config.Config) (core.Provider, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return core.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.DefaultModel), func() {}, nil
	default:
		p, err := core.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.DefaultModel)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	}
}

func newConversationStore(cfg *config.Config) (store.ConversationStore, error) {
	if cfg.ConversationStore == config.StoreSQLite {
		s, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return store.NewMemoryStore(), nil
}
