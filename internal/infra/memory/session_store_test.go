package memory

import (
	"testing"
	"time"

	"minigame-service/internal/app"
	"minigame-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	play, err := app.NewPlay("play-1", sampleScreen(), domain.DefaultRewards(), time.Now())
	if err != nil {
		t.Fatalf("new play: %v", err)
	}
	store.Add(play)
	if _, ok := store.Get("play-1"); !ok {
		t.Fatalf("expected play present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 live play, got %d", store.Len())
	}

	store.Remove("play-1")
	if _, ok := store.Get("play-1"); ok {
		t.Fatalf("expected play removed")
	}
}
