// Package validate checks screen content before it is served: struct-level schema
// rules via go-playground/validator plus the semantic checks the engine relies on.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"minigame-service/internal/domain"
)

// Option counts observed across the content.
const (
	MinOptions = 2
	MaxOptions = 6
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding. Scenario is -1 for screen-level findings.
type Issue struct {
	ScreenID string
	Scenario int
	Field    string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	where := i.ScreenID
	if i.Scenario >= 0 {
		where = fmt.Sprintf("%s#%d", i.ScreenID, i.Scenario+1)
	}
	if i.Field != "" {
		where += " " + i.Field
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, where, i.Message)
}

// Report collects the findings of one validation run.
type Report struct {
	Screens []domain.ScreenSummary
	Issues  []Issue
}

// Errors counts error-level issues.
func (r Report) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings counts warning-level issues.
func (r Report) Warnings() int {
	return len(r.Issues) - r.Errors()
}

func (r Report) HasErrors() bool {
	return r.Errors() > 0
}

// Validator runs schema and semantic checks over screens.
type Validator struct {
	structs *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// report field names as they appear in the YAML content
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structs: v}
}

// Run validates screens and catalog entries together so cross references can be checked.
func (v *Validator) Run(screens []domain.Screen, catalog []domain.CatalogEntry) Report {
	known := make(map[string]bool, len(screens))
	for _, s := range screens {
		known[s.ID] = true
	}

	var report Report
	for _, s := range screens {
		report.Screens = append(report.Screens, s.Summary())
		report.Issues = append(report.Issues, v.Screen(s)...)
		if s.Next != "" && !known[s.Next] {
			report.Issues = append(report.Issues, Issue{
				ScreenID: s.ID, Scenario: -1, Field: "next", Severity: SeverityWarning,
				Message: fmt.Sprintf("next screen %q does not exist; advance will be disabled", s.Next),
			})
		}
	}
	for _, e := range catalog {
		if err := v.structs.Struct(e); err != nil {
			report.Issues = append(report.Issues, v.structIssues(e.ScreenID, err)...)
		}
		if !known[e.ScreenID] {
			report.Issues = append(report.Issues, Issue{
				ScreenID: e.ScreenID, Scenario: -1, Field: "catalog", Severity: SeverityWarning,
				Message: "catalog entry has no matching screen",
			})
		}
		report.Issues = append(report.Issues, rewardIssues(e.ScreenID, "catalog.rewards", &e.Rewards)...)
	}
	return report
}

// Screen validates a single screen in isolation.
func (v *Validator) Screen(s domain.Screen) []Issue {
	var issues []Issue
	if err := v.structs.Struct(s); err != nil {
		issues = append(issues, v.structIssues(s.ID, err)...)
	}

	if s.Next != "" && s.Next == s.ID {
		issues = append(issues, Issue{
			ScreenID: s.ID, Scenario: -1, Field: "next", Severity: SeverityError,
			Message: "screen points at itself",
		})
	}
	if s.Pass.MinCorrect > len(s.Scenarios) {
		issues = append(issues, Issue{
			ScreenID: s.ID, Scenario: -1, Field: "pass.min_correct", Severity: SeverityError,
			Message: fmt.Sprintf("requires %d correct answers but the screen has %d scenarios", s.Pass.MinCorrect, len(s.Scenarios)),
		})
	}
	issues = append(issues, rewardIssues(s.ID, "rewards", s.Rewards)...)

	for idx, sc := range s.Scenarios {
		issues = append(issues, scenarioIssues(s.ID, idx, sc)...)
	}
	return issues
}

func scenarioIssues(screenID string, idx int, sc domain.Scenario) []Issue {
	var issues []Issue
	add := func(sev Severity, field, msg string) {
		issues = append(issues, Issue{ScreenID: screenID, Scenario: idx, Field: field, Severity: sev, Message: msg})
	}

	if n := len(sc.Options); n < MinOptions || n > MaxOptions {
		add(SeverityWarning, "options", fmt.Sprintf("%d options, expected %d-%d", n, MinOptions, MaxOptions))
	}
	switch n := sc.CorrectOptions(); {
	case n == 0:
		add(SeverityWarning, "options", "no correct option; the scenario can never be won")
	case n > 1:
		add(SeverityWarning, "options", fmt.Sprintf("%d options marked correct; any of them scores", n))
	}

	seen := make(map[string]bool, len(sc.Options))
	for _, opt := range sc.Options {
		if opt.ID == "" {
			continue
		}
		if seen[opt.ID] {
			add(SeverityError, "options.id", fmt.Sprintf("duplicate option id %q", opt.ID))
		}
		seen[opt.ID] = true
	}
	return issues
}

func rewardIssues(screenID, field string, o *domain.RewardOverrides) []Issue {
	if o == nil {
		return nil
	}
	var issues []Issue
	check := func(name string, p *int) {
		if p != nil && *p <= 0 {
			issues = append(issues, Issue{
				ScreenID: screenID, Scenario: -1, Field: field + "." + name, Severity: SeverityWarning,
				Message: fmt.Sprintf("non-positive value %d is ignored", *p),
			})
		}
	}
	check("coins_per_correct", o.CoinsPerCorrect)
	check("total_coins", o.TotalCoins)
	check("total_xp", o.TotalXP)
	return issues
}

func (v *Validator) structIssues(screenID string, err error) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{ScreenID: screenID, Scenario: -1, Severity: SeverityError, Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			ScreenID: screenID,
			Scenario: -1,
			Field:    fieldPath(fe.Namespace()),
			Severity: SeverityError,
			Message:  fmt.Sprintf("failed %q rule", fe.Tag()),
		})
	}
	return issues
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
