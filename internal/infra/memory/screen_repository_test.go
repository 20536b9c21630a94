package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"minigame-service/internal/domain"
)

func TestScreenRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		ScreenLoader: NewStaticScreenLoader(map[string]domain.Screen{
			"ai-kids-1": sampleScreen(),
		}),
	}
	repo := NewScreenRepository(loader, time.Minute)

	if _, err := repo.GetScreen(context.Background(), "ai-kids-1"); err != nil {
		t.Fatalf("get screen: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetScreen(context.Background(), "ai-kids-1"); err != nil {
		t.Fatalf("get screen 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestScreenRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		ScreenLoader: NewStaticScreenLoader(map[string]domain.Screen{
			"ai-kids-1": sampleScreen(),
		}),
	}
	repo := NewScreenRepository(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetScreen(context.Background(), "ai-kids-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetScreen(context.Background(), "ai-kids-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestScreenRepositoryFillsDerivedFields(t *testing.T) {
	stored := sampleScreen()
	stored.ID = ""
	repo := NewScreenRepository(NewStaticScreenLoader(map[string]domain.Screen{
		"ai-kids-1": stored,
	}), time.Minute)

	screen, err := repo.GetScreen(context.Background(), "ai-kids-1")
	if err != nil {
		t.Fatalf("get screen: %v", err)
	}
	if screen.ID != "ai-kids-1" || screen.Pillar != "ai" {
		t.Fatalf("expected id and pillar filled, got id=%q pillar=%q", screen.ID, screen.Pillar)
	}

	tagged := sampleScreen()
	tagged.Pillar = "custom"
	repo = NewScreenRepository(NewStaticScreenLoader(map[string]domain.Screen{
		"ai-kids-1": tagged,
	}), time.Minute)
	screen, err = repo.GetScreen(context.Background(), "ai-kids-1")
	if err != nil {
		t.Fatalf("get tagged screen: %v", err)
	}
	if screen.Pillar != "custom" {
		t.Fatalf("expected stored pillar kept, got %q", screen.Pillar)
	}
}

func TestScreenRepositoryRefusesUnplayableScreens(t *testing.T) {
	empty := sampleScreen()
	empty.Scenarios = nil
	loader := &countingLoader{
		ScreenLoader: NewStaticScreenLoader(map[string]domain.Screen{
			"ai-kids-1": empty,
			"ai-kids-2": sampleScreen(),
		}),
	}
	repo := NewScreenRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetScreen(context.Background(), "ai-kids-1"); !errors.Is(err, domain.ErrEmptyQuestionSet) {
			t.Fatalf("expected empty question set, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected empty screen not cached, loader calls %d", loader.calls)
	}

	// stored under one id, claims another
	if _, err := repo.GetScreen(context.Background(), "ai-kids-2"); !errors.Is(err, domain.ErrScreenNotFound) {
		t.Fatalf("expected mismatched id refused, got %v", err)
	}
}

func TestScreenRepositoryMiss(t *testing.T) {
	repo := NewScreenRepository(NewStaticScreenLoader(nil), time.Minute)
	if _, err := repo.GetScreen(context.Background(), "nope"); !errors.Is(err, domain.ErrScreenNotFound) {
		t.Fatalf("expected screen not found, got %v", err)
	}
}

func TestStaticCatalog(t *testing.T) {
	coins := 10
	catalog := NewStaticCatalog([]domain.CatalogEntry{
		{ScreenID: "ai-kids-1", Rewards: domain.RewardOverrides{CoinsPerCorrect: &coins}},
	})

	entry, err := catalog.Entry(context.Background(), "ai-kids-1")
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if *entry.Rewards.CoinsPerCorrect != 10 {
		t.Fatalf("expected 10 coins, got %d", *entry.Rewards.CoinsPerCorrect)
	}
	if _, err := catalog.Entry(context.Background(), "other"); !errors.Is(err, domain.ErrCatalogEntryNotFound) {
		t.Fatalf("expected catalog miss, got %v", err)
	}
}

type countingLoader struct {
	ScreenLoader
	calls int
}

func (l *countingLoader) LoadScreen(ctx context.Context, screenID string) (domain.Screen, error) {
	l.calls++
	return l.ScreenLoader.LoadScreen(ctx, screenID)
}

func sampleScreen() domain.Screen {
	return domain.Screen{
		ID:    "ai-kids-1",
		Title: "Robot or Not?",
		Scenarios: domain.QuestionSet{
			{
				Prompt: "Which one can learn from examples?",
				Options: []domain.Option{
					{ID: "o1", Label: "A rock", Correct: false},
					{ID: "o2", Label: "A learning robot", Correct: true},
				},
			},
		},
	}
}
