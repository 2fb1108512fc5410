package optimizer

import (
	"sort"

	"github.com/jakechorley/steward-shift/pkg/core/model"
	"github.com/jakechorley/steward-shift/pkg/lp"
)

// extractResult converts a solver outcome into the schedule result. All
// per-employee violation statistics are recomputed by scanning the 0/1
// assignment: the C, W and R variables are only constrained from below, so
// with a zero penalty weight or a degenerate optimum their solved values
// are not guaranteed to equal the true violation counts. The team shift
// count and deviation are read from the solver directly; their inequality
// pair always carries a positive weight and is therefore tight.
func extractResult(cfg *model.ScheduleConfig, b *builtModel, sol *lp.Solution) *model.ScheduleResult {
	result := &model.ScheduleResult{
		Config:              cfg,
		Status:              statusFromSolver(sol.Status),
		ObjectiveValue:      sol.Objective,
		TotalShiftsRequired: b.totalRequired,
	}

	if sol.Status != lp.StatusOptimal {
		// Carry only status and objective; downstream consumers branch on
		// status before reading the breakdowns
		return result
	}

	totalDays := cfg.TotalDays()

	// Which employees work each day, and which days each employee works
	assigned := make([][]int, len(cfg.Employees))
	for e := range cfg.Employees {
		for k := 0; k < totalDays; k++ {
			if sol.Value(b.x[e][k]) > 0.5 {
				assigned[e] = append(assigned[e], k)
			}
		}
		sort.Ints(assigned[e])
	}

	for k := 0; k < totalDays; k++ {
		weekday := cfg.Weekday(k)
		var names []string
		for e, emp := range cfg.Employees {
			if sol.Value(b.x[e][k]) > 0.5 {
				names = append(names, emp.Name)
			}
		}
		result.DailyAssignments = append(result.DailyAssignments, model.DailyAssignment{
			DayIndex:  k,
			Date:      cfg.Date(k),
			DayOfWeek: model.DayNames[weekday],
			Employees: names,
			Required:  cfg.StaffingRequirements[weekday],
			Actual:    len(names),
		})
	}

	for e, emp := range cfg.Employees {
		days := assigned[e]
		weekly := WeeklyShiftCounts(days, cfg.DurationWeeks)

		result.EmployeeSchedules = append(result.EmployeeSchedules, model.EmployeeSchedule{
			Employee:              emp,
			AssignedDays:          days,
			IdealShifts:           b.ideals[e],
			ActualShifts:          len(days),
			MaxConsecutive:        MaxConsecutiveRun(days),
			ConsecutiveViolations: ConsecutiveViolationEpisodes(days, cfg.Limits.MaxConsecutiveShifts),
			WeeklyShifts:          weekly,
			WeeklyViolations:      WeeklyViolations(weekly, cfg.Limits.MaxShiftsPerWeek),
			SameWeekdayViolations: SameWeekdayRepeats(days, cfg.DurationWeeks),
		})
	}

	for t, team := range cfg.Teams {
		result.TeamSummaries = append(result.TeamSummaries, model.TeamSummary{
			Team:         team,
			TargetShifts: b.teamTargets[t],
			ActualShifts: sol.Value(b.st[t]),
			Deviation:    sol.Value(b.dt[t]),
		})
	}

	return result
}

func statusFromSolver(s lp.Status) model.Status {
	switch s {
	case lp.StatusOptimal:
		return model.StatusOptimal
	case lp.StatusInfeasible:
		return model.StatusInfeasible
	case lp.StatusUnbounded:
		return model.StatusUnbounded
	default:
		return model.StatusNotSolved
	}
}

// MaxConsecutiveRun returns the length of the longest run of consecutive
// day indices in the sorted assignment. Pure function.
func MaxConsecutiveRun(assignedDays []int) int {
	longest, run := 0, 0
	prev := -2
	for _, k := range assignedDays {
		if k == prev+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = k
	}
	return longest
}

// ConsecutiveViolationEpisodes counts maximal runs strictly longer than
// maxRun. A run that extends to the end of the horizon counts as one
// episode like any other. Pure function.
func ConsecutiveViolationEpisodes(assignedDays []int, maxRun int) int {
	episodes, run := 0, 0
	prev := -2
	for _, k := range assignedDays {
		if k == prev+1 {
			run++
		} else {
			if run > maxRun {
				episodes++
			}
			run = 1
		}
		prev = k
	}
	if run > maxRun {
		episodes++
	}
	return episodes
}

// WeeklyShiftCounts buckets the assignment into 7-day weeks and returns the
// shift count per week
func WeeklyShiftCounts(assignedDays []int, weeks int) []int {
	counts := make([]int, weeks)
	for _, k := range assignedDays {
		w := k / 7
		if w < weeks {
			counts[w]++
		}
	}
	return counts
}

// WeeklyViolations counts the weeks whose shift count exceeds maxWeekly
func WeeklyViolations(weeklyCounts []int, maxWeekly int) int {
	violations := 0
	for _, c := range weeklyCounts {
		if c > maxWeekly {
			violations++
		}
	}
	return violations
}

// SameWeekdayRepeats counts, over all adjacent week pairs and weekdays, how
// often the employee worked the identical weekday in both weeks
func SameWeekdayRepeats(assignedDays []int, weeks int) int {
	worked := make(map[int]bool, len(assignedDays))
	for _, k := range assignedDays {
		worked[k] = true
	}

	repeats := 0
	for w := 0; w < weeks-1; w++ {
		for d := 0; d < 7; d++ {
			if worked[w*7+d] && worked[(w+1)*7+d] {
				repeats++
			}
		}
	}
	return repeats
}
