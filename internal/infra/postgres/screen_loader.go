package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"minigame-service/internal/domain"
)

// ScreenLoader loads screen JSONB from Postgres.
type ScreenLoader struct {
	pool *pgxpool.Pool
}

func NewScreenLoader(pool *pgxpool.Pool) *ScreenLoader {
	return &ScreenLoader{pool: pool}
}

func (l *ScreenLoader) LoadScreen(ctx context.Context, screenID string) (domain.Screen, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM screens WHERE id=$1`, screenID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Screen{}, domain.ErrScreenNotFound
	}
	if err != nil {
		return domain.Screen{}, fmt.Errorf("load screen: %w", err)
	}
	var screen domain.Screen
	if err := json.Unmarshal(raw, &screen); err != nil {
		return domain.Screen{}, fmt.Errorf("unmarshal screen: %w", err)
	}
	return screen, nil
}

// ListScreens returns a summary of every stored screen ordered by id.
func (l *ScreenLoader) ListScreens(ctx context.Context) ([]domain.ScreenSummary, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM screens ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list screens: %w", err)
	}
	defer rows.Close()

	var out []domain.ScreenSummary
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan screen: %w", err)
		}
		var screen domain.Screen
		if err := json.Unmarshal(raw, &screen); err != nil {
			return nil, fmt.Errorf("unmarshal screen: %w", err)
		}
		out = append(out, screen.Summary())
	}
	return out, rows.Err()
}

// Catalog reads game-card records from the game_catalog table.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) Entry(ctx context.Context, screenID string) (domain.CatalogEntry, error) {
	entry := domain.CatalogEntry{ScreenID: screenID}
	err := c.pool.QueryRow(ctx, `
		SELECT title, pillar, age_group, coins_per_correct, total_coins, total_xp
		FROM game_catalog WHERE screen_id=$1`, screenID).Scan(
		&entry.Title,
		&entry.Pillar,
		&entry.AgeGroup,
		&entry.Rewards.CoinsPerCorrect,
		&entry.Rewards.TotalCoins,
		&entry.Rewards.TotalXP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CatalogEntry{}, domain.ErrCatalogEntryNotFound
	}
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("load catalog entry: %w", err)
	}
	return entry, nil
}
