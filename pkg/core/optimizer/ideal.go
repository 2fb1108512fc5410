package optimizer

import "github.com/jakechorley/steward-shift/pkg/core/model"

// TotalRequiredShifts sums the daily staffing requirement over the whole
// horizon. This is the number of shift slots to fill, independent of who is
// available to fill them.
func TotalRequiredShifts(cfg *model.ScheduleConfig) int {
	total := 0
	for k := 0; k < cfg.TotalDays(); k++ {
		total += cfg.StaffingRequirements[cfg.Weekday(k)]
	}
	return total
}

// IdealShares derives each employee's target shift count. A team's target
// share of the total required shifts is split among its members in
// proportion to their available days, so members with identical
// availability receive identical ideals regardless of team size. A team
// with zero aggregate availability yields an ideal of 0 for every member.
// The returned slice follows cfg.Employees order.
func IdealShares(cfg *model.ScheduleConfig, availability [][]int) []float64 {
	totalRequired := float64(TotalRequiredShifts(cfg))
	availableDays := AvailableDayCounts(availability)

	// Index employees once so per-team lookups stay linear
	empIndex := make(map[string]int, len(cfg.Employees))
	for e, emp := range cfg.Employees {
		empIndex[emp.Name] = e
	}

	ideals := make([]float64, len(cfg.Employees))
	for _, team := range cfg.Teams {
		teamTarget := team.TargetPercentage * totalRequired

		teamAvailability := 0
		for _, emp := range cfg.EmployeesInTeam(team.Name) {
			teamAvailability += availableDays[empIndex[emp.Name]]
		}
		if teamAvailability == 0 {
			continue
		}

		for _, emp := range cfg.EmployeesInTeam(team.Name) {
			e := empIndex[emp.Name]
			ideals[e] = float64(availableDays[e]) / float64(teamAvailability) * teamTarget
		}
	}

	return ideals
}
