package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

func TestOptimizeSplitsShiftsByTeamTarget(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 1, 1, 1, 1, 0, 0},
		Teams: []model.Team{
			{Name: "A", TargetPercentage: 0.6},
			{Name: "B", TargetPercentage: 0.4},
		},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Carol", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Dan", Team: "B", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Eve", Team: "B", AvailableDays: []int{0, 1, 2, 3, 4}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 5, MaxShiftsPerWeek: 5},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	// A perfect split exists, so the optimum carries no penalty at all and
	// every employee works exactly their ideal share of one shift
	assert.InDelta(t, 0, result.ObjectiveValue, 1e-6)
	assert.Equal(t, 5, result.TotalShiftsRequired)

	for _, es := range result.EmployeeSchedules {
		assert.Equal(t, 1, es.ActualShifts, es.Employee.Name)
		assert.InDelta(t, 1, es.IdealShifts, 1e-9)
	}

	for _, ts := range result.TeamSummaries {
		switch ts.Team.Name {
		case "A":
			assert.InDelta(t, 3, ts.ActualShifts, 1e-6)
		case "B":
			assert.InDelta(t, 2, ts.ActualShifts, 1e-6)
		}
		assert.InDelta(t, 0, ts.Deviation, 1e-6)
	}

	for _, day := range result.DailyAssignments {
		assert.Equal(t, day.Required, day.Actual, day.DayOfWeek)
	}
}

func TestOptimizeAcceptsUnavoidableConsecutiveRun(t *testing.T) {
	// One employee must cover five weekdays in a row; the optimizer cannot
	// avoid the run, it can only price it: three sliding windows of length
	// three are saturated, each costing one detector
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 1, 1, 1, 1, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 2, MaxShiftsPerWeek: 5},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	assert.InDelta(t, 3*cfg.Penalties.ConsecutiveShifts, result.ObjectiveValue, 1e-6)

	es := result.EmployeeSchedules[0]
	assert.Equal(t, []int{0, 1, 2, 3, 4}, es.AssignedDays)
	assert.Equal(t, 5, es.MaxConsecutive)
	assert.Equal(t, 1, es.ConsecutiveViolations)
	assert.Equal(t, []int{5}, es.WeeklyShifts)
	assert.Equal(t, 0, es.WeeklyViolations)
}

func TestOptimizePricesUnavoidableSameWeekdayRepeat(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        2,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 3, MaxShiftsPerWeek: 5, AvoidSameWeekday: true},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	// Both Mondays must be worked by the only employee
	assert.InDelta(t, cfg.Penalties.SameWeekday, result.ObjectiveValue, 1e-6)
	assert.Equal(t, 1, result.EmployeeSchedules[0].SameWeekdayViolations)
}

func TestOptimizeSameWeekdayRuleDisabled(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        2,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 3, MaxShiftsPerWeek: 5, AvoidSameWeekday: false},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	// Without the rule the identical schedule carries no penalty, but the
	// extractor still reports the repeat it can see in the assignment
	assert.InDelta(t, 0, result.ObjectiveValue, 1e-6)
	assert.Equal(t, 1, result.EmployeeSchedules[0].SameWeekdayViolations)
}

func TestOptimizePricesWeeklyExcess(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 1, 1, 1, 1, 1, 1},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4, 5, 6}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 10, MaxShiftsPerWeek: 5},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	// Seven shifts against a cap of five means two units of weekly excess
	assert.InDelta(t, 2*cfg.Penalties.WeeklyExcess, result.ObjectiveValue, 1e-6)

	es := result.EmployeeSchedules[0]
	assert.Equal(t, []int{7}, es.WeeklyShifts)
	assert.Equal(t, 1, es.WeeklyViolations)
}

func TestOptimizeHandlesFullyIdleDays(t *testing.T) {
	// Six days of the week require nobody and are outside everyone's
	// availability. Locking those assignments through equality rows would
	// duplicate the zero staffing rows and leave the equality system
	// singular; the bounds-based lock must keep the model solvable.
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.DefaultLimits(),
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)
	assert.Equal(t, 1, result.TotalShiftsRequired)

	for _, day := range result.DailyAssignments {
		assert.Equal(t, day.Required, day.Actual, day.DayOfWeek)
	}
}

func TestOptimizeAlternatesEmployeesAcrossWeeks(t *testing.T) {
	// Two employees share two Monday shifts. Repeating one employee would
	// cost both fairness and a same-weekday repeat, so the optimum gives
	// each employee one Monday and carries no penalty at all.
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        2,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.SoftLimits{MaxConsecutiveShifts: 3, MaxShiftsPerWeek: 5, AvoidSameWeekday: true},
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	assert.InDelta(t, 0, result.ObjectiveValue, 1e-6)
	for _, es := range result.EmployeeSchedules {
		assert.Equal(t, 1, es.ActualShifts, es.Employee.Name)
		assert.Equal(t, 0, es.SameWeekdayViolations, es.Employee.Name)
	}
}

func TestOptimizeConsecutiveCapMonotonicity(t *testing.T) {
	// One employee must work five days in a row whatever the cap says.
	// Raising the cap can only shrink what counts as a violation, so both
	// the violation count and the objective are non-increasing in the cap.
	solve := func(maxConsec int) *model.ScheduleResult {
		cfg := &model.ScheduleConfig{
			StartDate:            mondayStart,
			DurationWeeks:        1,
			StaffingRequirements: [7]int{1, 1, 1, 1, 1, 0, 0},
			Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
			Employees: []model.Employee{
				{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			},
			Penalties: model.DefaultPenalties(),
			Limits:    model.SoftLimits{MaxConsecutiveShifts: maxConsec, MaxShiftsPerWeek: 5},
		}
		result, err := New(cfg).Optimize(context.Background())
		require.NoError(t, err)
		require.Equal(t, model.StatusOptimal, result.Status)
		return result
	}

	prev := solve(2)
	for _, limit := range []int{3, 4, 5} {
		next := solve(limit)
		assert.LessOrEqual(t, next.EmployeeSchedules[0].ConsecutiveViolations,
			prev.EmployeeSchedules[0].ConsecutiveViolations, "cap %d", limit)
		assert.LessOrEqual(t, next.ObjectiveValue, prev.ObjectiveValue+1e-6, "cap %d", limit)
		prev = next
	}

	assert.Equal(t, 0, prev.EmployeeSchedules[0].ConsecutiveViolations)
	assert.InDelta(t, 0, prev.ObjectiveValue, 1e-6)
}

func TestOptimizeWeeklyCapMonotonicity(t *testing.T) {
	// One employee covers all seven days of the week. A higher weekly cap
	// never creates excess that a lower cap would not, so violations and
	// objective are non-increasing in the cap.
	solve := func(maxWeekly int) *model.ScheduleResult {
		cfg := &model.ScheduleConfig{
			StartDate:            mondayStart,
			DurationWeeks:        1,
			StaffingRequirements: [7]int{1, 1, 1, 1, 1, 1, 1},
			Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
			Employees: []model.Employee{
				{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4, 5, 6}},
			},
			Penalties: model.DefaultPenalties(),
			Limits:    model.SoftLimits{MaxConsecutiveShifts: 10, MaxShiftsPerWeek: maxWeekly},
		}
		result, err := New(cfg).Optimize(context.Background())
		require.NoError(t, err)
		require.Equal(t, model.StatusOptimal, result.Status)
		return result
	}

	prev := solve(3)
	for _, limit := range []int{5, 7} {
		next := solve(limit)
		assert.LessOrEqual(t, next.EmployeeSchedules[0].WeeklyViolations,
			prev.EmployeeSchedules[0].WeeklyViolations, "cap %d", limit)
		assert.LessOrEqual(t, next.ObjectiveValue, prev.ObjectiveValue+1e-6, "cap %d", limit)
		prev = next
	}

	assert.Equal(t, 0, prev.EmployeeSchedules[0].WeeklyViolations)
	assert.InDelta(t, 0, prev.ObjectiveValue, 1e-6)
}

func TestOptimizeConservesTotalShifts(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        2,
		StaffingRequirements: [7]int{1, 1, 1, 1, 1, 0, 0},
		Teams: []model.Team{
			{Name: "A", TargetPercentage: 0.6},
			{Name: "B", TargetPercentage: 0.4},
		},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Carol", Team: "A", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Dan", Team: "B", AvailableDays: []int{0, 1, 2, 3, 4}},
			{Name: "Eve", Team: "B", AvailableDays: []int{0, 1, 2, 3, 4}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.DefaultLimits(),
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusOptimal, result.Status)

	// Every required shift is assigned exactly once, so the employee and
	// team totals must both add up to the requirement total
	assert.Equal(t, 10, result.TotalShiftsRequired)

	employeeTotal := 0
	for _, es := range result.EmployeeSchedules {
		employeeTotal += es.ActualShifts
	}
	assert.Equal(t, result.TotalShiftsRequired, employeeTotal)

	teamTotal := 0.0
	for _, ts := range result.TeamSummaries {
		teamTotal += ts.ActualShifts
	}
	assert.InDelta(t, float64(result.TotalShiftsRequired), teamTotal, 1e-6)
}

func TestOptimizeInfeasibleStaffing(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{2, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.DefaultLimits(),
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.StatusInfeasible, result.Status)
	assert.False(t, result.IsOptimal())
	assert.Empty(t, result.DailyAssignments)
	assert.Empty(t, result.EmployeeSchedules)
	assert.Empty(t, result.TeamSummaries)
}

func TestOptimizeInfeasibleAvailability(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{0, 1, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
		},
		Penalties: model.DefaultPenalties(),
		Limits:    model.DefaultLimits(),
	}

	result, err := New(cfg).Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusInfeasible, result.Status)
}

func TestOptimizeRejectsInvalidConfig(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:     mondayStart,
		DurationWeeks: 0,
	}

	_, err := New(cfg).Optimize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule config")
}
