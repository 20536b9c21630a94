package validate

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	issuesSheet  = "Issues"
	screensSheet = "Screens"
)

// WriteXLSX writes the report as a spreadsheet for content reviewers.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", issuesSheet); err != nil {
		return fmt.Errorf("create issues sheet: %w", err)
	}
	if _, err := f.NewSheet(screensSheet); err != nil {
		return fmt.Errorf("create screens sheet: %w", err)
	}

	issueRows := [][]any{{"Screen", "Scenario", "Field", "Severity", "Message"}}
	for _, i := range r.Issues {
		scenario := any("")
		if i.Scenario >= 0 {
			scenario = i.Scenario + 1
		}
		issueRows = append(issueRows, []any{i.ScreenID, scenario, i.Field, string(i.Severity), i.Message})
	}
	if err := writeRows(f, issuesSheet, issueRows); err != nil {
		return err
	}

	screenRows := [][]any{{"Screen", "Title", "Pillar", "Questions", "Next"}}
	for _, s := range r.Screens {
		screenRows = append(screenRows, []any{s.ID, s.Title, s.Pillar, s.Questions, s.Next})
	}
	if err := writeRows(f, screensSheet, screenRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
