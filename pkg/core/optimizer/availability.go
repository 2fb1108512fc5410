package optimizer

import (
	"fmt"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

// AvailabilityMatrix computes the per-employee, per-day binary availability
// grid for the planning horizon. Row order follows cfg.Employees; columns
// are day indices 0..TotalDays-1. An employee is available on a day unless
// it is their team's team day, outside their weekly pattern, or inside one
// of their vacation periods. Pure function of the config.
func AvailabilityMatrix(cfg *model.ScheduleConfig) ([][]int, error) {
	totalDays := cfg.TotalDays()
	matrix := make([][]int, len(cfg.Employees))

	for e, emp := range cfg.Employees {
		team, err := cfg.TeamByName(emp.Team)
		if err != nil {
			return nil, fmt.Errorf("availability for employee %q: %w", emp.Name, err)
		}

		row := make([]int, totalDays)
		for k := 0; k < totalDays; k++ {
			weekday := cfg.Weekday(k)
			if team.IsTeamDay(weekday) {
				continue
			}
			if emp.AvailableOn(cfg.Date(k), weekday) {
				row[k] = 1
			}
		}
		matrix[e] = row
	}

	return matrix, nil
}

// AvailableDayCounts returns each employee's total number of available days
// over the horizon, in the same order as the matrix rows
func AvailableDayCounts(matrix [][]int) []int {
	counts := make([]int, len(matrix))
	for e, row := range matrix {
		for _, a := range row {
			counts[e] += a
		}
	}
	return counts
}
