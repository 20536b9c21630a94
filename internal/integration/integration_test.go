package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"minigame-service/internal/app"
	"minigame-service/internal/infra/content"
	pgstore "minigame-service/internal/infra/postgres"
	pgmigrations "minigame-service/internal/infra/postgres/migrations"
	infraredis "minigame-service/internal/infra/redis"
)

func TestPlayScreenEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedContent(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewScreenLoader(pool)
	catalog := pgstore.NewCatalog(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	screens := infraredis.NewScreenRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewPlayService(sessionStore, screens, catalog)

	step, err := service.Start(ctx, "ai-kids-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if step.Rewards.TotalCoins != 15 || step.Rewards.TotalXP != 20 {
		t.Fatalf("expected catalog rewards, got %+v", step.Rewards)
	}

	for i, optionID := range []string{"robot", "ai", "lamp"} {
		if _, err := service.Select(ctx, step.PlayID, optionID); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		confirmed, err := service.Confirm(ctx, step.PlayID)
		if err != nil || confirmed.Result == nil || !confirmed.Result.Correct {
			t.Fatalf("confirm %d: result=%+v err=%v", i, confirmed.Result, err)
		}
		step, err = service.Advance(ctx, step.PlayID)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	out := step.Outcome
	if out == nil {
		t.Fatalf("expected outcome after the last scenario")
	}
	if !out.Passed || out.RewardTotal != 15 || out.CoinsAwarded != 15 || out.XPAwarded != 20 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.NextScreen != "ai-kids-2" || !out.NextEnabled {
		t.Fatalf("expected ai-kids-2 to be reachable, got %+v", out)
	}

	mirror, err := sessionStore.Mirror(ctx, step.PlayID)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if !mirror.Terminal || !mirror.Passed {
		t.Fatalf("expected terminal mirror, got %+v", mirror)
	}

	summaries, err := loader.ListScreens(ctx)
	if err != nil {
		t.Fatalf("list screens: %v", err)
	}
	if len(summaries) != 5 {
		t.Fatalf("expected 5 seeded screens, got %d", len(summaries))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "minigame", "POSTGRES_PASSWORD": "minigamepass", "POSTGRES_DB": "minigames"},
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
	dsn := fmt.Sprintf("postgres://minigame:minigamepass@%s:%s/minigames?sslmode=disable", host, port.Port())
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

func seedContent(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	db := pgstore.OpenDB(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	lib, err := content.Embedded()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	seeder := pgstore.NewSeeder(db)
	if _, err := seeder.SeedScreens(ctx, lib.Screens()); err != nil {
		t.Fatalf("seed screens: %v", err)
	}
	// seeding twice must upsert rather than fail
	if _, err := seeder.SeedScreens(ctx, lib.Screens()); err != nil {
		t.Fatalf("reseed screens: %v", err)
	}
	if _, err := seeder.SeedCatalog(ctx, lib.CatalogEntries()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
