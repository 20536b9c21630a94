package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"minigame-service/internal/domain"
)

func TestPasses(t *testing.T) {
	tests := []struct {
		name        string
		rule        domain.PassRule
		correct     int
		total       int
		lastCorrect bool
		want        bool
	}{
		{"zero rule always passes", domain.PassRule{}, 0, 5, false, true},
		{"seventy percent of ten", domain.PassRule{MinPercent: 70}, 7, 10, false, true},
		{"sixty percent of ten", domain.PassRule{MinPercent: 70}, 6, 10, true, false},
		{"three of five", domain.PassRule{MinCorrect: 3}, 3, 5, false, true},
		{"two of five", domain.PassRule{MinCorrect: 3}, 2, 5, true, false},
		{"last answer wrong", domain.PassRule{RequireLastCorrect: true}, 4, 5, false, false},
		{"last answer right", domain.PassRule{RequireLastCorrect: true}, 1, 5, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Passes(tt.rule, tt.correct, tt.total, tt.lastCorrect))
		})
	}
}
