package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"paradox-quiz-service/internal/app"
	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
	pgcatalog "paradox-quiz-service/internal/infra/postgres"
	pgmigrations "paradox-quiz-service/internal/infra/postgres/migrations"
	infraredis "paradox-quiz-service/internal/infra/redis"
)

func TestCompleteQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCatalog(t, ctx, pgURL, sampleCatalog())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgcatalog.NewCatalogLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalog := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute, zerolog.Nop())
	boards := infraredis.NewBoardStore(redisClient, 5*time.Minute)
	service := app.NewStudyService(boards, catalog, zerolog.Nop())

	items, err := service.FilterParadoxes(ctx, engine.FilterParams{SelectedTiers: []int{2}, SelectedDifficulty: engine.AllValues})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(items) != 1 || items[0].ID != "straw-man" {
		t.Fatalf("expected straw-man from postgres catalog, got %+v", items)
	}

	cfg, err := service.BuildQuiz(ctx, app.QuizRequest{
		ConfigRequest:   engine.ConfigRequest{Type: domain.QuizTypeDailyChallenge},
		TargetParadoxID: "ad-hominem",
	})
	if err != nil {
		t.Fatalf("build quiz: %v", err)
	}
	if cfg.TargetParadox == nil || cfg.TargetParadox.ID != "ad-hominem" {
		t.Fatalf("unexpected target %+v", cfg.TargetParadox)
	}

	if _, err := service.Join(ctx, "board-1", "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.Join(ctx, "board-1", "u2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	result, err := service.Complete(ctx, "board-1", "u2", domain.Completion{
		QuizType: domain.QuizTypeDailyChallenge,
		Score:    100,
		Streak:   30,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Points.TotalPoints != 34 || result.TotalPoints != 34 {
		t.Fatalf("expected 34 points, got %+v", result.Points)
	}
	lb := result.Leaderboard
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, items []domain.Paradox) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgcatalog.SeedCatalog(ctx, db, items); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func sampleCatalog() []domain.Paradox {
	return []domain.Paradox{
		{ID: "ad-hominem", Tier: domain.TierOf(1), Difficulty: domain.DifficultyBeginner, Usage: domain.StringPtr("common"), Context: "politics", Medium: "speech"},
		{ID: "straw-man", Tier: domain.TierOf(2), Difficulty: domain.DifficultyBeginner, Context: "politics", Medium: "debate"},
		{ID: "sorites", Tier: domain.TierOf(3), Difficulty: domain.DifficultyAdvanced, Context: "philosophy", Medium: "text"},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
