package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"minigame-service/internal/app"
	"minigame-service/internal/config"
	"minigame-service/internal/infra/content"
	"minigame-service/internal/infra/memory"
	pgstore "minigame-service/internal/infra/postgres"
	rediscache "minigame-service/internal/infra/redis"
	transport "minigame-service/internal/transport/http"
)

// backend is the content side shared by the server, the terminal player and the listing.
type backend struct {
	screens app.ScreenRepository
	catalog app.Catalog
	lister  transport.ScreenLister

	pool  *pgxpool.Pool
	redis *redis.Client
}

// openBackend picks Postgres when configured and the YAML content otherwise, and
// caches screens in Redis when configured and in memory otherwise.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	var loader memory.ScreenLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		pgLoader := pgstore.NewScreenLoader(pool)
		loader = pgLoader
		b.lister = pgLoader
		b.catalog = pgstore.NewCatalog(pool)
		log.Info("serving screens from postgres")
	} else {
		lib, err := content.LoadDir(cfg.Content.Dir)
		if err != nil {
			return nil, err
		}
		loader = lib
		b.lister = lib
		b.catalog = lib
		log.Info("serving screens from content files", "dir", cfg.Content.Dir, "screens", len(lib.Screens()))
	}

	if cfg.Redis.Addr != "" {
		b.redis = newRedisClient(cfg)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	if b.redis != nil {
		b.screens = rediscache.NewScreenRepository(b.redis, loader, contentTTL)
	} else {
		b.screens = memory.NewScreenRepository(loader, contentTTL)
	}
	return b, nil
}

// sessionStore keeps plays in Redis when it is configured.
func (b *backend) sessionStore(cfg config.Config) app.SessionRepository {
	if b.redis == nil {
		return memory.NewSessionStore()
	}
	ttl := config.TTLDuration(cfg.Play.SessionTTL, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	return rediscache.NewSessionStore(b.redis, ttl)
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("closing redis", "err", err)
		}
	}
}
