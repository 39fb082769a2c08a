package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paradox-quiz-service/internal/app"
	"paradox-quiz-service/internal/config"
	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/infra/file"
	"paradox-quiz-service/internal/infra/memory"
	pgcatalog "paradox-quiz-service/internal/infra/postgres"
	rediscache "paradox-quiz-service/internal/infra/redis"
	"paradox-quiz-service/internal/logger"
	transport "paradox-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := catalogLoader(cfg, pool, log)
	if err != nil {
		return err
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = rediscache.NewCatalogRepository(redisClient, loader, catalogTTL, log)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var boards app.BoardRepository
	if redisClient != nil {
		boards = rediscache.NewBoardStore(redisClient, redisTTL)
	} else {
		boards = memory.NewBoardStore()
	}
	service := app.NewStudyService(boards, catalog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)
	transport.NewAPIHandler(service, log).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting paradox quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// catalogLoader picks the catalog source: Postgres, then a catalog file, then the built-in sample.
func catalogLoader(cfg config.Config, pool *pgxpool.Pool, log zerolog.Logger) (memory.CatalogLoader, error) {
	switch {
	case pool != nil:
		log.Info().Msg("catalog source: postgres")
		return pgcatalog.NewCatalogLoader(pool), nil
	case cfg.Catalog.Path != "":
		// fail fast on a broken file instead of on the first request
		items, err := file.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Catalog.Path).Int("paradoxes", len(items)).Msg("catalog source: file")
		return file.NewCatalogLoader(cfg.Catalog.Path), nil
	default:
		log.Info().Msg("catalog source: built-in sample")
		return memory.NewStaticCatalogLoader(sampleCatalog()), nil
	}
}

// sampleCatalog keeps the service usable without any backing store.
func sampleCatalog() []domain.Paradox {
	return []domain.Paradox{
		{
			ID: "ad-hominem", Name: "Ad Hominem", Tier: domain.TierOf(1),
			Difficulty: domain.DifficultyBeginner, Usage: domain.StringPtr("common"),
			Context: "politics", Medium: "speech",
		},
		{
			ID: "false-dilemma", Name: "False Dilemma", Tier: domain.TierOf(2),
			Difficulty: domain.DifficultyIntermediate, Subtlety: domain.StringPtr("moderate"),
			Context: "advertising", Medium: "text",
		},
		{
			ID: "sorites", Name: "Sorites Paradox", Tier: domain.TierOf(3),
			Difficulty: domain.DifficultyAdvanced, Subtlety: domain.StringPtr("subtle"),
			Context: "philosophy", Medium: "text",
		},
	}
}
