package validate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"minigame-service/internal/domain"
)

func opts(correct ...bool) []domain.Option {
	out := make([]domain.Option, 0, len(correct))
	for i, c := range correct {
		id := string(rune('a' + i))
		out = append(out, domain.Option{ID: id, Label: strings.ToUpper(id), Correct: c})
	}
	return out
}

func screen(id, next string, scenarios ...domain.Scenario) domain.Screen {
	return domain.Screen{ID: id, Title: id, Next: next, Scenarios: scenarios}
}

func hasIssue(issues []Issue, sev Severity, substr string) bool {
	for _, i := range issues {
		if i.Severity == sev && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestCleanScreenHasNoIssues(t *testing.T) {
	s := screen("ai-kids-1", "", domain.Scenario{Prompt: "p", Options: opts(true, false, false)})
	require.Empty(t, New().Screen(s))
}

func TestScenarioChecks(t *testing.T) {
	s := screen("ai-kids-1", "",
		domain.Scenario{Prompt: "none", Options: opts(false, false)},
		domain.Scenario{Prompt: "many", Options: opts(true, true, false)},
		domain.Scenario{Prompt: "single", Options: opts(true)},
		domain.Scenario{Prompt: "dupes", Options: []domain.Option{
			{ID: "x", Label: "X", Correct: true},
			{ID: "x", Label: "Y"},
		}},
	)

	issues := New().Screen(s)
	require.True(t, hasIssue(issues, SeverityWarning, "never be won"))
	require.True(t, hasIssue(issues, SeverityWarning, "2 options marked correct"))
	require.True(t, hasIssue(issues, SeverityWarning, "1 options, expected 2-6"))
	require.True(t, hasIssue(issues, SeverityError, `duplicate option id "x"`))
}

func TestStructRulesUseYAMLNames(t *testing.T) {
	s := domain.Screen{ID: "ai-kids-1", Scenarios: domain.QuestionSet{{Options: opts(true, false)}}}

	issues := New().Screen(s)
	require.NotEmpty(t, issues)
	var fields []string
	for _, i := range issues {
		fields = append(fields, i.Field)
	}
	require.Contains(t, fields, "scenarios[0].prompt")
}

func TestPassRuleAndRewards(t *testing.T) {
	zero := 0
	s := screen("ai-kids-1", "ai-kids-1", domain.Scenario{Prompt: "p", Options: opts(true, false)})
	s.Pass.MinCorrect = 3
	s.Rewards = &domain.RewardOverrides{TotalCoins: &zero}

	issues := New().Screen(s)
	require.True(t, hasIssue(issues, SeverityError, "points at itself"))
	require.True(t, hasIssue(issues, SeverityError, "requires 3 correct answers"))
	require.True(t, hasIssue(issues, SeverityWarning, "non-positive value 0"))
}

func TestRunChecksCrossReferences(t *testing.T) {
	screens := []domain.Screen{
		screen("ai-kids-1", "ai-kids-2", domain.Scenario{Prompt: "p", Options: opts(true, false)}),
		screen("ai-kids-2", "ai-kids-404", domain.Scenario{Prompt: "p", Options: opts(false, true)}),
	}
	catalog := []domain.CatalogEntry{{ScreenID: "ai-kids-1"}, {ScreenID: "ghost"}}

	report := New().Run(screens, catalog)
	require.Len(t, report.Screens, 2)
	require.False(t, report.HasErrors())
	require.Equal(t, 2, report.Warnings())
	require.True(t, hasIssue(report.Issues, SeverityWarning, `"ai-kids-404" does not exist`))
	require.True(t, hasIssue(report.Issues, SeverityWarning, "no matching screen"))
}

func TestWriteXLSX(t *testing.T) {
	report := Report{
		Screens: []domain.ScreenSummary{{ID: "ai-kids-1", Title: "Robot or Not?", Pillar: "ai", Questions: 3}},
		Issues: []Issue{
			{ScreenID: "ai-kids-1", Scenario: 0, Field: "options", Severity: SeverityWarning, Message: "no correct option"},
			{ScreenID: "ai-kids-1", Scenario: -1, Field: "next", Severity: SeverityError, Message: "screen points at itself"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(issuesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Screen", "Scenario", "Field", "Severity", "Message"}, rows[0])
	require.Equal(t, "1", rows[1][1])
	require.Equal(t, "error", rows[2][3])

	screens, err := f.GetRows(screensSheet)
	require.NoError(t, err)
	require.Len(t, screens, 2)
	require.Equal(t, "Robot or Not?", screens[1][1])
}
