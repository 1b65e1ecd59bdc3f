package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonathan/knotic/internal/analysis"
	"github.com/jonathan/knotic/internal/blobstore"
	"github.com/jonathan/knotic/internal/config"
	"github.com/jonathan/knotic/internal/db"
	"github.com/jonathan/knotic/internal/fetch"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/jobs"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/parsing"
	"github.com/jonathan/knotic/internal/resumes"
	"github.com/jonathan/knotic/internal/scoring"
	"github.com/jonathan/knotic/internal/server"
	"github.com/jonathan/knotic/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server exposing résumé history, job tracking and match analysis endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if servePort != 0 {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url (KNOTIC_DATABASE_URL) is required")
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return err
	}
	passwordConfig, err := cfg.Password()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveMigrate {
		if err := db.Migrate(ctx, cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := newDelegate(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	extractor, err := ingestion.NewExtractor(cfg.PDF.Engine)
	if err != nil {
		return err
	}
	blobs, err := blobstore.New(ctx, blobstore.Config{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Prefix:   cfg.Storage.Prefix,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		return err
	}

	resumeService := resumes.NewService(
		extractor,
		parsing.NewNormalizer(client, logger),
		scoring.NewReadinessAssessor(client, logger),
		history.NewStore(database, logger),
		blobs,
		logger,
	)
	cache := analysis.NewCache(scoring.NewMatcher(client, logger), database, logger)
	jobService := jobs.NewService(database, cache, resumeService, fetch.NewImporter(logger), logger).
		WithParallel(cfg.Server.AnalyzeParallel)

	limiter := newLimiter(cfg.Redis, logger)

	srv := server.New(server.ConfigFrom(cfg.Server), server.Dependencies{
		DB:       database,
		Users:    database,
		Resumes:  resumeService,
		Jobs:     jobService,
		JWT:      jwtConfig,
		Password: passwordConfig,
		Limiter:  limiter,
		Logger:   logger,
	})

	logger.Info("starting server",
		zap.Int("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("pdf_engine", cfg.PDF.Engine),
		zap.Bool("archive", cfg.Storage.Bucket != ""),
		zap.Bool("redis_rate_limit", cfg.Redis.Addr != ""),
	)
	return srv.Run(ctx)
}

// newDelegate builds the LLM client. Without an API key the server still
// starts; delegate-backed endpoints then answer 503.
func newDelegate(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	llmConfig, err := cfg.LLMClientConfig()
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("llm.api-key is not set, analysis endpoints are disabled")
		return nil, nil
	}
	return llm.NewClient(ctx, llmConfig, cfg.LLM.APIKey)
}

// newLimiter returns a Redis fixed-window limiter when redis.addr is set,
// otherwise the in-process token bucket limiter.
func newLimiter(cfg config.RedisConfig, logger *zap.Logger) ratelimit.Limiter {
	limits := ratelimit.NewConfig(cfg.RateLimit, cfg.Window)
	if cfg.Addr == "" {
		return ratelimit.NewMemoryLimiter(limits)
	}
	logger.Info("using redis rate limiter", zap.String("addr", cfg.Addr))
	return ratelimit.NewRedisLimiter(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), limits)
}
