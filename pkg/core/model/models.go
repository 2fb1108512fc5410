package model

import (
	"fmt"
	"math"
	"time"
)

// DayNames maps weekday indices (0=Mon .. 6=Sun) to short display names.
var DayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayIndex maps lowercase day names to weekday indices (0=Mon .. 6=Sun).
// Static lookup data shared by the config loader and reporters.
var DayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// WeekdayIndex converts a calendar date to the 0=Mon .. 6=Sun convention
// used throughout the scheduler (time.Weekday has Sunday first).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// VacationPeriod is an inclusive date range during which an employee is away
type VacationPeriod struct {
	Start time.Time
	End   time.Time
}

// NewVacationPeriod creates a vacation period, rejecting ranges that end
// before they start
func NewVacationPeriod(start, end time.Time) (VacationPeriod, error) {
	if end.Before(start) {
		return VacationPeriod{}, fmt.Errorf("vacation end date %s cannot be before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return VacationPeriod{Start: start, End: end}, nil
}

// Contains reports whether the given date falls within the period (inclusive)
func (v VacationPeriod) Contains(date time.Time) bool {
	return !date.Before(v.Start) && !date.After(v.End)
}

// Days returns the number of days in the period (inclusive)
func (v VacationPeriod) Days() int {
	return int(v.End.Sub(v.Start).Hours()/24) + 1
}

// Team groups employees under a shared shift target
type Team struct {
	Name             string
	TargetPercentage float64
	// TeamDay is the weekday (0=Mon .. 6=Sun) on which nobody from the team
	// works, or nil if the team has no such day
	TeamDay *int
}

// IsTeamDay reports whether the given weekday is this team's off day
func (t Team) IsTeamDay(weekday int) bool {
	return t.TeamDay != nil && *t.TeamDay == weekday
}

// Employee is a schedulable worker with a weekly availability pattern and
// planned absences
type Employee struct {
	Name          string
	Team          string
	AvailableDays []int // weekday indices, 0=Mon .. 6=Sun
	Vacations     []VacationPeriod
}

// AvailableOnWeekday reports whether the employee works this day of the week
func (e Employee) AvailableOnWeekday(weekday int) bool {
	for _, d := range e.AvailableDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// OnVacation reports whether the employee is away on the given date
func (e Employee) OnVacation(date time.Time) bool {
	for _, v := range e.Vacations {
		if v.Contains(date) {
			return true
		}
	}
	return false
}

// AvailableOn reports whether the employee can work the given date, combining
// the weekly pattern with vacations. Team days are handled by the caller,
// which knows the employee's team.
func (e Employee) AvailableOn(date time.Time, weekday int) bool {
	return e.AvailableOnWeekday(weekday) && !e.OnVacation(date)
}

// PenaltyWeights are the objective weights for the soft scheduling rules.
// All weights must be non-negative; a zero weight disables the rule's
// enforcement without removing it from the model.
type PenaltyWeights struct {
	Fairness          float64
	TeamDeviation     float64
	ConsecutiveShifts float64
	WeeklyExcess      float64
	SameWeekday       float64
}

// DefaultPenalties returns the standard penalty weights
func DefaultPenalties() PenaltyWeights {
	return PenaltyWeights{
		Fairness:          1,
		TeamDeviation:     10000,
		ConsecutiveShifts: 50,
		WeeklyExcess:      25,
		SameWeekday:       10,
	}
}

// SoftLimits are the tunable thresholds for the soft scheduling rules
type SoftLimits struct {
	// MaxConsecutiveShifts is the longest run of worked days that goes
	// unpenalised
	MaxConsecutiveShifts int
	// MaxShiftsPerWeek is the per-employee weekly shift count that goes
	// unpenalised
	MaxShiftsPerWeek int
	// AvoidSameWeekday penalises working the same weekday in two
	// back-to-back weeks
	AvoidSameWeekday bool
}

// DefaultLimits returns the standard soft limits
func DefaultLimits() SoftLimits {
	return SoftLimits{
		MaxConsecutiveShifts: 3,
		MaxShiftsPerWeek:     5,
		AvoidSameWeekday:     true,
	}
}

// ScheduleConfig is the complete, validated input for one optimization run.
// It is treated as immutable once built.
type ScheduleConfig struct {
	StartDate     time.Time
	DurationWeeks int
	// StaffingRequirements holds the number of people needed per weekday,
	// indexed 0=Mon .. 6=Sun
	StaffingRequirements [7]int
	Teams                []Team
	Employees            []Employee
	Penalties            PenaltyWeights
	Limits               SoftLimits
}

// TotalDays returns the horizon length in days
func (c *ScheduleConfig) TotalDays() int {
	return c.DurationWeeks * 7
}

// Weekday returns the weekday index (0=Mon .. 6=Sun) for day index k
func (c *ScheduleConfig) Weekday(k int) int {
	return (WeekdayIndex(c.StartDate) + k) % 7
}

// Date returns the calendar date for day index k
func (c *ScheduleConfig) Date(k int) time.Time {
	return c.StartDate.AddDate(0, 0, k)
}

// EndDate returns the last day of the planning period
func (c *ScheduleConfig) EndDate() time.Time {
	return c.Date(c.TotalDays() - 1)
}

// TeamByName looks up a team by name
func (c *ScheduleConfig) TeamByName(name string) (Team, error) {
	for _, t := range c.Teams {
		if t.Name == name {
			return t, nil
		}
	}
	return Team{}, fmt.Errorf("team %q not found", name)
}

// EmployeesInTeam returns all employees belonging to the named team, in
// config order
func (c *ScheduleConfig) EmployeesInTeam(name string) []Employee {
	var members []Employee
	for _, e := range c.Employees {
		if e.Team == name {
			members = append(members, e)
		}
	}
	return members
}

// Validate checks the internal consistency rules an upstream loader is
// expected to have enforced already. It is a defensive barrier in front of
// model construction: a config that fails here would produce a nonsensical
// optimization model.
func (c *ScheduleConfig) Validate() error {
	if c.DurationWeeks <= 0 {
		return fmt.Errorf("duration must be at least 1 week, got %d", c.DurationWeeks)
	}
	if len(c.Teams) == 0 {
		return fmt.Errorf("at least one team is required")
	}

	totalPct := 0.0
	for _, t := range c.Teams {
		if t.TargetPercentage < 0 || t.TargetPercentage > 1 {
			return fmt.Errorf("team %q target percentage must be between 0 and 1, got %g", t.Name, t.TargetPercentage)
		}
		if t.TeamDay != nil && (*t.TeamDay < 0 || *t.TeamDay > 6) {
			return fmt.Errorf("team %q team day must be between 0 (Mon) and 6 (Sun), got %d", t.Name, *t.TeamDay)
		}
		totalPct += t.TargetPercentage
	}
	if math.Abs(totalPct-1.0) > 0.01 {
		return fmt.Errorf("team target percentages must sum to 1.0, got %.2f", totalPct)
	}

	for _, e := range c.Employees {
		if _, err := c.TeamByName(e.Team); err != nil {
			return fmt.Errorf("employee %q belongs to undefined team %q", e.Name, e.Team)
		}
		for _, d := range e.AvailableDays {
			if d < 0 || d > 6 {
				return fmt.Errorf("employee %q has invalid available day %d", e.Name, d)
			}
		}
	}
	for _, t := range c.Teams {
		if len(c.EmployeesInTeam(t.Name)) == 0 {
			return fmt.Errorf("team %q has no employees assigned to it", t.Name)
		}
	}

	for k := 0; k < 7; k++ {
		if c.StaffingRequirements[k] < 0 {
			return fmt.Errorf("staffing requirement for %s cannot be negative", DayNames[k])
		}
	}

	if c.Limits.MaxConsecutiveShifts < 1 {
		return fmt.Errorf("max consecutive shifts must be at least 1, got %d", c.Limits.MaxConsecutiveShifts)
	}
	if c.Limits.MaxShiftsPerWeek < 0 {
		return fmt.Errorf("max shifts per week cannot be negative, got %d", c.Limits.MaxShiftsPerWeek)
	}

	p := c.Penalties
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"fairness", p.Fairness},
		{"team_deviation", p.TeamDeviation},
		{"consecutive_shifts", p.ConsecutiveShifts},
		{"weekly_excess", p.WeeklyExcess},
		{"same_weekday", p.SameWeekday},
	} {
		if w.value < 0 {
			return fmt.Errorf("penalty weight %s cannot be negative, got %g", w.name, w.value)
		}
	}

	return nil
}
