package model

import (
	"fmt"
	"time"
)

// Status is the outcome of a solver run. Non-optimal statuses are normal,
// representable states that callers must branch on, not errors.
type Status string

const (
	StatusOptimal    Status = "Optimal"
	StatusInfeasible Status = "Infeasible"
	StatusUnbounded  Status = "Unbounded"
	StatusNotSolved  Status = "Not Solved"
)

// DailyAssignment records who works on one day of the horizon
type DailyAssignment struct {
	DayIndex  int
	Date      time.Time
	DayOfWeek string
	Employees []string
	Required  int
	Actual    int
}

// EmployeeSchedule is one employee's slice of the finished schedule, with
// violation statistics recomputed from the raw assignment
type EmployeeSchedule struct {
	Employee     Employee
	AssignedDays []int // sorted day indices
	IdealShifts  float64
	ActualShifts int

	// MaxConsecutive is the longest run of consecutive worked days
	MaxConsecutive int
	// ConsecutiveViolations counts maximal runs strictly longer than the
	// configured cap, including a run that reaches the end of the horizon
	ConsecutiveViolations int
	// WeeklyShifts holds the shift count per 7-day week of the horizon
	WeeklyShifts []int
	// WeeklyViolations counts weeks exceeding the weekly cap
	WeeklyViolations int
	// SameWeekdayViolations counts (week-pair, weekday) combinations where
	// the employee worked the identical weekday in both weeks
	SameWeekdayViolations int
}

// Deviation returns actual minus ideal shift count
func (s EmployeeSchedule) Deviation() float64 {
	return float64(s.ActualShifts) - s.IdealShifts
}

// TeamSummary aggregates a team's share of the schedule
type TeamSummary struct {
	Team         Team
	TargetShifts float64
	ActualShifts float64
	Deviation    float64
}

// ActualPercentage returns the team's share of the given total shift count
func (s TeamSummary) ActualPercentage(totalShifts int) float64 {
	if totalShifts == 0 {
		return 0
	}
	return s.ActualShifts / float64(totalShifts)
}

// ScheduleResult is the complete outcome of one optimization run, immutable
// once returned. When Status is not optimal only Status and ObjectiveValue
// are meaningful; the breakdown slices are empty.
type ScheduleResult struct {
	Config              *ScheduleConfig
	Status              Status
	ObjectiveValue      float64
	DailyAssignments    []DailyAssignment
	EmployeeSchedules   []EmployeeSchedule
	TeamSummaries       []TeamSummary
	TotalShiftsRequired int
}

// IsOptimal reports whether an optimal solution was found
func (r *ScheduleResult) IsOptimal() bool {
	return r.Status == StatusOptimal
}

// EmployeeScheduleFor returns the schedule for the named employee
func (r *ScheduleResult) EmployeeScheduleFor(name string) (EmployeeSchedule, error) {
	for _, s := range r.EmployeeSchedules {
		if s.Employee.Name == name {
			return s, nil
		}
	}
	return EmployeeSchedule{}, fmt.Errorf("employee %q not found in results", name)
}
