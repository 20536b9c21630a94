package cli

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"minigame-service/internal/domain"
)

func TestDropCachedScreensEvictsSeededScreens(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	for _, key := range []string{"screen:ai-kids-1", "screen:ai-kids-2", "screen:moral-kids-1"} {
		if err := mr.Set(key, `{"id":"stale"}`); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	seeded := []domain.Screen{{ID: "ai-kids-1"}, {ID: "ai-kids-2"}}
	if err := dropCachedScreens(context.Background(), client, seeded); err != nil {
		t.Fatalf("drop cached screens: %v", err)
	}

	if mr.Exists("screen:ai-kids-1") || mr.Exists("screen:ai-kids-2") {
		t.Fatalf("expected seeded screens evicted")
	}
	if !mr.Exists("screen:moral-kids-1") {
		t.Fatalf("expected untouched screen kept")
	}
}

func TestDropCachedScreensWithNothingSeeded(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := dropCachedScreens(context.Background(), client, nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
