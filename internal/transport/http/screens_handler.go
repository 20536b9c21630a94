package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"minigame-service/internal/domain"
)

// ScreenLister lists the screens a content source can serve.
type ScreenLister interface {
	ListScreens(ctx context.Context) ([]domain.ScreenSummary, error)
}

// ScreensHandler serves the screen listing as JSON.
func ScreensHandler(lister ScreenLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		screens, err := lister.ListScreens(r.Context())
		if err != nil {
			log.Error("list screens failed", "err", err)
			http.Error(w, "failed to list screens", http.StatusInternalServerError)
			return
		}
		if pillar := r.URL.Query().Get("pillar"); pillar != "" {
			filtered := make([]domain.ScreenSummary, 0, len(screens))
			for _, s := range screens {
				if s.Pillar == pillar {
					filtered = append(filtered, s)
				}
			}
			screens = filtered
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(screens); err != nil {
			log.Warn("encode screens failed", "err", err)
		}
	}
}
