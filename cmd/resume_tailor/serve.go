package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/events"
	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes task management, streaming generation and export endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.LogDebug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	jwtConfig, err := config.NewJWTConfig(nil)
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	settings, apiKey, err := cfg.LLMSettings()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	streamer, err := llm.NewStreamer(ctx, settings, apiKey)
	if err != nil {
		return err
	}
	defer streamer.Close()

	limiter := ratelimit.NewLimiter(ratelimit.LoadConfig(nil))
	defer limiter.Stop()

	srv := server.New(server.Options{
		Store:          store,
		Generator:      generation.New(store, streamer, publisher, logger),
		JWT:            server.NewJWTService(jwtConfig),
		Passwords:      passwords,
		Limiter:        limiter,
		Printer:        export.NewChromePDF(),
		Jobs:           ingestion.NewJobFetcher(cfg.UseBrowser, logger),
		PageConfig:     cfg.Export,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	logger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("provider", string(settings.Provider)),
		zap.String("model", settings.Model))
	return srv.Run(ctx, ":"+strconv.Itoa(cfg.Port))
}

// newPublisher returns an AMQP publisher when a broker is configured.
func newPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, nil
	}
	p, err := events.DialAMQP(cfg.AMQPURL, events.DefaultExchange)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing events", zap.String("exchange", events.DefaultExchange))
	return p, nil
}
