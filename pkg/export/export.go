// Package export writes optimal schedule results in machine-importable
// formats. All exporters require an optimal result; exporting a failed run
// is an error rather than an empty file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

const dateLayout = "2006-01-02"

// Exporter renders a schedule result to a writer
type Exporter interface {
	Export(w io.Writer, result *model.ScheduleResult) error
}

// SimpleCSV writes one row per assignment: date, day of week, employee.
// The long format imports cleanly into databases and pivot tables.
type SimpleCSV struct{}

func (SimpleCSV) Export(w io.Writer, result *model.ScheduleResult) error {
	if !result.IsOptimal() {
		return fmt.Errorf("cannot export non-optimal result (status %s)", result.Status)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Day_of_Week", "Employee"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, day := range result.DailyAssignments {
		for _, name := range day.Employees {
			record := []string{day.Date.Format(dateLayout), day.DayOfWeek, name}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv record: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
