package game

import "minigame-service/internal/domain"

// Passes reports whether a finished run satisfies rule.
// Percentages use integer arithmetic so 7 of 10 meets 70 exactly.
func Passes(rule domain.PassRule, correct, total int, lastCorrect bool) bool {
	if rule.RequireLastCorrect && !lastCorrect {
		return false
	}
	if rule.MinCorrect > 0 && correct < rule.MinCorrect {
		return false
	}
	if rule.MinPercent > 0 && correct*100 < rule.MinPercent*total {
		return false
	}
	return true
}
