// Package content loads screens and catalog entries from YAML files, either from a
// directory on disk or from the copy embedded in the binary.
package content

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"minigame-service/internal/domain"
)

//go:embed data
var embedded embed.FS

// CatalogFile is the file name holding catalog entries.
const CatalogFile = "catalog.yaml"

// SkippedFile records a content file that could not be parsed.
type SkippedFile struct {
	Path string
	Err  error
}

// Library holds every screen and catalog entry found under a content root.
type Library struct {
	mu      sync.RWMutex
	screens map[string]domain.Screen
	catalog map[string]domain.CatalogEntry
	sources map[string]string
	skipped []SkippedFile
}

// Embedded loads the content shipped with the binary.
func Embedded() (*Library, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads content from dir, or the embedded content when dir is empty.
func LoadDir(dir string) (*Library, error) {
	if dir == "" {
		return Embedded()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return Load(os.DirFS(dir))
}

// Load walks fsys for YAML files. catalog.yaml holds catalog entries; every other
// YAML file holds one screen. Unparseable files are skipped with a warning and
// reported by Skipped. Two files declaring the same screen id is an error.
func Load(fsys fs.FS) (*Library, error) {
	l := &Library{
		screens: make(map[string]domain.Screen),
		catalog: make(map[string]domain.CatalogEntry),
		sources: make(map[string]string),
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if path.Base(p) == CatalogFile {
			return l.loadCatalog(p, data)
		}
		return l.loadScreen(p, data)
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	log.Debug("content loaded", "screens", len(l.screens), "catalog", len(l.catalog), "skipped", len(l.skipped))
	return l, nil
}

func (l *Library) loadScreen(p string, data []byte) error {
	var screen domain.Screen
	if err := yaml.Unmarshal(data, &screen); err != nil {
		log.Warn("skipping invalid screen YAML", "path", p, "err", err)
		l.skipped = append(l.skipped, SkippedFile{Path: p, Err: err})
		return nil
	}
	if screen.ID == "" {
		l.skipped = append(l.skipped, SkippedFile{Path: p, Err: fmt.Errorf("missing screen id")})
		return nil
	}
	if prev, ok := l.sources[screen.ID]; ok {
		return fmt.Errorf("screen %q declared in %s and %s", screen.ID, prev, p)
	}
	if screen.Pillar == "" {
		screen.Pillar = domain.PillarOf(screen.ID)
	}
	l.screens[screen.ID] = screen
	l.sources[screen.ID] = p
	return nil
}

func (l *Library) loadCatalog(p string, data []byte) error {
	var entries []domain.CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		log.Warn("skipping invalid catalog YAML", "path", p, "err", err)
		l.skipped = append(l.skipped, SkippedFile{Path: p, Err: err})
		return nil
	}
	for _, e := range entries {
		if e.ScreenID == "" {
			continue
		}
		if e.Pillar == "" {
			e.Pillar = domain.PillarOf(e.ScreenID)
		}
		l.catalog[e.ScreenID] = e
	}
	return nil
}

// LoadScreen implements the screen loader used by the caches.
func (l *Library) LoadScreen(_ context.Context, screenID string) (domain.Screen, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	screen, ok := l.screens[screenID]
	if !ok {
		return domain.Screen{}, domain.ErrScreenNotFound
	}
	return screen, nil
}

// Entry implements the reward catalog lookup.
func (l *Library) Entry(_ context.Context, screenID string) (domain.CatalogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.catalog[screenID]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrCatalogEntryNotFound
	}
	return e, nil
}

// Screens returns all screens ordered by id.
func (l *Library) Screens() []domain.Screen {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Screen, 0, len(l.screens))
	for _, s := range l.screens {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CatalogEntries returns all catalog entries ordered by screen id.
func (l *Library) CatalogEntries() []domain.CatalogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.CatalogEntry, 0, len(l.catalog))
	for _, e := range l.catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScreenID < out[j].ScreenID })
	return out
}

// ListScreens returns summaries of all screens ordered by id.
func (l *Library) ListScreens(_ context.Context) ([]domain.ScreenSummary, error) {
	screens := l.Screens()
	out := make([]domain.ScreenSummary, 0, len(screens))
	for _, s := range screens {
		out = append(out, s.Summary())
	}
	return out, nil
}

// Source returns the file a screen was read from.
func (l *Library) Source(screenID string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sources[screenID]
}

// Skipped lists files that were ignored while loading.
func (l *Library) Skipped() []SkippedFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]SkippedFile(nil), l.skipped...)
}
