package sheetsclient

import (
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

// PublishSchedule writes an optimal schedule to a spreadsheet as an
// employee-by-date grid, one tab per planning period. The tab is titled
// "Mon Jan 05 2026 - Sun Jan 18 2026"; an existing tab for the same period
// is overwritten so re-publishing after a re-run stays idempotent.
func (c *Client) PublishSchedule(spreadsheetID string, result *model.ScheduleResult) (string, error) {
	if !result.IsOptimal() {
		return "", fmt.Errorf("cannot publish non-optimal result (status %s)", result.Status)
	}

	cfg := result.Config
	tabTitle := fmt.Sprintf("%s - %s",
		cfg.StartDate.Format("Mon Jan 02 2006"),
		cfg.EndDate().Format("Mon Jan 02 2006"))

	exists, err := c.sheetExists(spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}
	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return "", fmt.Errorf("failed to create tab: %w", err)
		}
	}

	rows := scheduleGrid(result)

	valueRange := &sheets.ValueRange{Values: rows}
	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", tabTitle),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return "", fmt.Errorf("failed to write schedule to tab: %w", err)
	}

	return tabTitle, nil
}

// scheduleGrid builds the sheet rows: two date header rows, then employees
// grouped by team with an X marking each worked day
func scheduleGrid(result *model.ScheduleResult) [][]interface{} {
	cfg := result.Config
	totalDays := cfg.TotalDays()

	dateHeader := make([]interface{}, totalDays+1)
	dayHeader := make([]interface{}, totalDays+1)
	dateHeader[0] = "Employee"
	dayHeader[0] = ""
	for k := 0; k < totalDays; k++ {
		dateHeader[k+1] = cfg.Date(k).Format("2006-01-02")
		dayHeader[k+1] = model.DayNames[cfg.Weekday(k)]
	}

	rows := [][]interface{}{dateHeader, dayHeader}

	for _, team := range cfg.Teams {
		teamRow := make([]interface{}, totalDays+1)
		teamRow[0] = fmt.Sprintf("--- %s ---", team.Name)
		for k := 1; k <= totalDays; k++ {
			teamRow[k] = ""
		}
		rows = append(rows, teamRow)

		for _, emp := range cfg.EmployeesInTeam(team.Name) {
			es, err := result.EmployeeScheduleFor(emp.Name)
			if err != nil {
				continue
			}

			worked := make(map[int]bool, len(es.AssignedDays))
			for _, k := range es.AssignedDays {
				worked[k] = true
			}

			row := make([]interface{}, totalDays+1)
			row[0] = emp.Name
			for k := 0; k < totalDays; k++ {
				if worked[k] {
					row[k+1] = "X"
				} else {
					row[k+1] = ""
				}
			}
			rows = append(rows, row)
		}
	}

	return rows
}
