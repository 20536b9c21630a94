package memory

import (
	"context"

	"minigame-service/internal/domain"
)

// StaticCatalog serves catalog entries from a map.
type StaticCatalog struct {
	entries map[string]domain.CatalogEntry
}

func NewStaticCatalog(entries []domain.CatalogEntry) *StaticCatalog {
	m := make(map[string]domain.CatalogEntry, len(entries))
	for _, e := range entries {
		m[e.ScreenID] = e
	}
	return &StaticCatalog{entries: m}
}

func (c *StaticCatalog) Entry(_ context.Context, screenID string) (domain.CatalogEntry, error) {
	if e, ok := c.entries[screenID]; ok {
		return e, nil
	}
	return domain.CatalogEntry{}, domain.ErrCatalogEntryNotFound
}
