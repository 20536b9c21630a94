package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"minigame-service/internal/domain"
)

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type screenRow struct {
	bun.BaseModel `bun:"table:screens"`

	ID        string        `bun:"id,pk"`
	Pillar    string        `bun:"pillar"`
	Data      domain.Screen `bun:"data,type:jsonb"`
	UpdatedAt time.Time     `bun:"updated_at"`
}

type catalogRow struct {
	bun.BaseModel `bun:"table:game_catalog"`

	ScreenID        string `bun:"screen_id,pk"`
	Title           string `bun:"title"`
	Pillar          string `bun:"pillar"`
	AgeGroup        string `bun:"age_group"`
	CoinsPerCorrect *int   `bun:"coins_per_correct"`
	TotalCoins      *int   `bun:"total_coins"`
	TotalXP         *int   `bun:"total_xp"`
}

// Seeder upserts content into the screens and game_catalog tables.
type Seeder struct {
	db  *bun.DB
	now func() time.Time
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db, now: time.Now}
}

// SeedScreens inserts screens, replacing rows that already exist.
func (s *Seeder) SeedScreens(ctx context.Context, screens []domain.Screen) (int, error) {
	if len(screens) == 0 {
		return 0, nil
	}
	now := s.now()
	rows := make([]screenRow, 0, len(screens))
	for _, screen := range screens {
		pillar := screen.Pillar
		if pillar == "" {
			pillar = domain.PillarOf(screen.ID)
		}
		rows = append(rows, screenRow{ID: screen.ID, Pillar: pillar, Data: screen, UpdatedAt: now})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("pillar = EXCLUDED.pillar").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed screens: %w", err)
	}
	return len(rows), nil
}

// SeedCatalog inserts catalog entries, replacing rows that already exist.
func (s *Seeder) SeedCatalog(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	rows := make([]catalogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, catalogRow{
			ScreenID:        e.ScreenID,
			Title:           e.Title,
			Pillar:          e.Pillar,
			AgeGroup:        e.AgeGroup,
			CoinsPerCorrect: e.Rewards.CoinsPerCorrect,
			TotalCoins:      e.Rewards.TotalCoins,
			TotalXP:         e.Rewards.TotalXP,
		})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (screen_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("pillar = EXCLUDED.pillar").
		Set("age_group = EXCLUDED.age_group").
		Set("coins_per_correct = EXCLUDED.coins_per_correct").
		Set("total_coins = EXCLUDED.total_coins").
		Set("total_xp = EXCLUDED.total_xp").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(rows), nil
}
