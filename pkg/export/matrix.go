package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

// shiftMarker is the cell value for a worked day in the matrix layout
const shiftMarker = "X"

// MatrixCSV writes the schedule as an employee-by-date grid, grouped by
// team, with a spreadsheet COUNTIF total row so the file opens in Excel or
// Google Sheets as a ready-made wall chart.
type MatrixCSV struct{}

func (MatrixCSV) Export(w io.Writer, result *model.ScheduleResult) error {
	if !result.IsOptimal() {
		return fmt.Errorf("cannot export non-optimal result (status %s)", result.Status)
	}

	cfg := result.Config
	totalDays := cfg.TotalDays()

	cw := csv.NewWriter(w)

	dateHeader := make([]string, totalDays+1)
	dayHeader := make([]string, totalDays+1)
	dateHeader[0] = "Employee"
	dayHeader[0] = ""
	for k := 0; k < totalDays; k++ {
		dateHeader[k+1] = cfg.Date(k).Format(dateLayout)
		dayHeader[k+1] = model.DayNames[cfg.Weekday(k)]
	}
	if err := cw.Write(dateHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.Write(dayHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	// Data rows start below the two header rows
	rowNum := 3
	firstDataRow := 0
	for _, team := range cfg.Teams {
		teamRow := make([]string, totalDays+1)
		teamRow[0] = fmt.Sprintf("--- %s ---", team.Name)
		if err := cw.Write(teamRow); err != nil {
			return fmt.Errorf("failed to write team row: %w", err)
		}
		rowNum++

		for _, emp := range cfg.EmployeesInTeam(team.Name) {
			es, err := result.EmployeeScheduleFor(emp.Name)
			if err != nil {
				return err
			}

			worked := make(map[int]bool, len(es.AssignedDays))
			for _, k := range es.AssignedDays {
				worked[k] = true
			}

			row := make([]string, totalDays+1)
			row[0] = emp.Name
			for k := 0; k < totalDays; k++ {
				if worked[k] {
					row[k+1] = shiftMarker
				}
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write employee row: %w", err)
			}
			if firstDataRow == 0 {
				firstDataRow = rowNum
			}
			rowNum++
		}
	}

	// COUNTIF over each date column double-checks daily coverage when the
	// file is edited by hand in a spreadsheet
	totalRow := make([]string, totalDays+1)
	totalRow[0] = "Total"
	lastDataRow := rowNum - 1
	for k := 0; k < totalDays; k++ {
		col := columnLetter(k + 1)
		totalRow[k+1] = fmt.Sprintf("=COUNTIF(%s%d:%s%d,\"%s\")",
			col, firstDataRow, col, lastDataRow, shiftMarker)
	}
	if err := cw.Write(totalRow); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// columnLetter converts a zero-based column index to spreadsheet letters
// (0=A, 25=Z, 26=AA)
func columnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
