package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/generation"
	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/server"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/spf13/cobra"
)

var (
	servePort      int
	serveTier      string
	serveModel     string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cover letter service",
	Long: `Start an HTTP server that stores cover letter versions, job postings and
PDF context, and generates cover letters with Gemini.

Versions are kept in memory unless DATABASE_URL names a PostgreSQL database.
Bearer token authentication is enabled when JWT_SECRET and API_KEY_HASH are set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Port to listen on")
	serveCmd.Flags().StringVar(&serveTier, "tier", string(llm.TierStandard), "Model tier used for generation (lite, standard, advanced)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model used for the selected tier (overrides the default for that tier)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload-bytes", server.DefaultMaxUploadBytes, "Largest accepted file upload")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	tier, err := parseTier(serveTier)
	if err != nil {
		return err
	}

	// Get API key from environment
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	jwtConfig, apiKeyConfig, err := authFromEnv()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llmConfig(tier, serveModel), apiKey)
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	srv, err := server.New(server.Config{
		Port:           servePort,
		JWT:            jwtConfig,
		APIKey:         apiKeyConfig,
		MaxUploadBytes: serveMaxUpload,
	}, st, generation.NewService(st, client, generation.WithTier(tier)))
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}
	if srv.AuthEnabled() {
		log.Println("Bearer token authentication enabled")
	}

	return srv.Start()
}

// openStore connects to Postgres when databaseURL is set, otherwise it
// returns an in-memory store.
func openStore(ctx context.Context, databaseURL string) (store.Store, error) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, versions are kept in memory")
		return store.NewMemory(), nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// authFromEnv loads the token configuration. Authentication stays off when
// neither JWT_SECRET nor API_KEY_HASH is set; setting only one is an error.
func authFromEnv() (*config.JWTConfig, *config.APIKeyConfig, error) {
	hasSecret := os.Getenv("JWT_SECRET") != ""
	hasHash := os.Getenv("API_KEY_HASH") != ""
	if !hasSecret && !hasHash {
		return nil, nil, nil
	}
	if hasSecret != hasHash {
		return nil, nil, fmt.Errorf("JWT_SECRET and API_KEY_HASH must be set together")
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}
	apiKeyConfig, err := config.NewAPIKeyConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid API key configuration: %w", err)
	}
	return jwtConfig, apiKeyConfig, nil
}

// llmConfig returns the default model configuration, with model replacing
// the model of tier when set.
func llmConfig(tier llm.ModelTier, model string) *llm.Config {
	cfg := llm.DefaultConfig()
	if model != "" {
		cfg = cfg.WithModel(tier, model)
	}
	return cfg
}

func parseTier(s string) (llm.ModelTier, error) {
	switch tier := llm.ModelTier(s); tier {
	case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown model tier %q (expected lite, standard or advanced)", s)
	}
}
