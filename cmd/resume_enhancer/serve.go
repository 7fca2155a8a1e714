package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-enhancer/internal/coaching"
	"github.com/jonathan/resume-enhancer/internal/config"
	"github.com/jonathan/resume-enhancer/internal/db"
	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/server"
	"github.com/jonathan/resume-enhancer/internal/server/ratelimit"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/speech"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   int
	serveLegacy bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the session, resume, coaching and interview endpoints.

Sessions are kept in PostgreSQL when DATABASE_URL is set and in memory otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().BoolVar(&serveLegacy, "legacy", false, "Parse free-text model responses with random fallbacks")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	cfg.LegacyParsing = cfg.LegacyParsing || serveLegacy

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewGeminiClient(ctx, cfg.LLMConfig(), apiKey, llm.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Store:       store,
		Coach:       coaching.NewService(client, coaching.WithLegacyParsing(cfg.LegacyParsing), coaching.WithLogger(log)),
		Transcriber: speech.NewGeminiTranscriber(client, cfg.SpeechTimeout(), log),
		Printer:     rendering.NewPDFRenderer(cfg.ChromePath, cfg.NoSandbox),
		JWT:         jwtConfig,
		RateLimit:   ratelimit.LoadConfig(),
		Logger:      log,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	log.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.Bool("legacy_parsing", cfg.LegacyParsing),
		zap.Bool("postgres_sessions", cfg.DatabaseURL != ""),
		zap.Duration("session_ttl", cfg.SessionTTL()),
	)
	return srv.Start(ctx)
}

// openStore picks PostgreSQL when a database URL is configured
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (session.Store, error) {
	if cfg.DatabaseURL == "" {
		return session.NewMemoryStore(cfg.SessionTTL(), log), nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return db.NewSessionStore(database, cfg.SessionTTL(), log), nil
}
