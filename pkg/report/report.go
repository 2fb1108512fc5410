// Package report renders a schedule result as a human-readable text report.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

const dateLayout = "2006-01-02"

// Reporter writes schedule reports to a single destination. Quiet limits
// the output to the header and the daily schedule.
type Reporter struct {
	w     io.Writer
	Quiet bool
}

// New creates a reporter writing to w
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Write renders the full report for a result. Non-optimal results get the
// header plus guidance on the usual causes of infeasibility.
func (r *Reporter) Write(result *model.ScheduleResult) error {
	r.header(result)

	if !result.IsOptimal() {
		r.failureGuidance(result)
		return nil
	}

	r.dailySchedule(result)

	if r.Quiet {
		return nil
	}

	r.employeeSummary(result)
	r.teamSummary(result)
	r.violationDetails(result)
	r.vacationSummary(result)

	return nil
}

func (r *Reporter) header(result *model.ScheduleResult) {
	cfg := result.Config
	fmt.Fprintln(r.w, strings.Repeat("=", 60))
	fmt.Fprintln(r.w, "SHIFT SCHEDULE REPORT")
	fmt.Fprintln(r.w, strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Planning Period: %s to %s (%d weeks)\n",
		cfg.StartDate.Format(dateLayout), cfg.EndDate().Format(dateLayout), cfg.DurationWeeks)
	fmt.Fprintf(r.w, "Status: %s\n", result.Status)
	if result.IsOptimal() {
		fmt.Fprintf(r.w, "Objective Value: %.2f\n", result.ObjectiveValue)
		fmt.Fprintf(r.w, "Total Shifts: %d\n", result.TotalShiftsRequired)
	}
	fmt.Fprintln(r.w)
}

func (r *Reporter) failureGuidance(result *model.ScheduleResult) {
	fmt.Fprintln(r.w, "No optimal schedule could be found. Common causes:")
	fmt.Fprintln(r.w, "  - Staffing requirements exceed the number of available employees on some day")
	fmt.Fprintln(r.w, "  - Vacations or team days leave a day with too few available employees")
	fmt.Fprintln(r.w, "  - Availability patterns leave a required weekday uncovered")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Try reducing staffing requirements, adding employees, or widening availability.")
}

func (r *Reporter) dailySchedule(result *model.ScheduleResult) {
	fmt.Fprintln(r.w, "DAILY SCHEDULE")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))

	for _, day := range result.DailyAssignments {
		names := "(nobody)"
		if len(day.Employees) > 0 {
			names = strings.Join(day.Employees, ", ")
		}
		fmt.Fprintf(r.w, "%s %s: %s (%d/%d)\n",
			day.Date.Format(dateLayout), day.DayOfWeek, names, day.Actual, day.Required)
	}
	fmt.Fprintln(r.w)
}

func (r *Reporter) employeeSummary(result *model.ScheduleResult) {
	fmt.Fprintln(r.w, "EMPLOYEE SUMMARY")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Employee\tTeam\tIdeal\tActual\tDeviation\tMax Consec\tViolations")
	for _, es := range result.EmployeeSchedules {
		violations := es.ConsecutiveViolations + es.WeeklyViolations + es.SameWeekdayViolations
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\t%.1f\t%d\t%d\n",
			es.Employee.Name, es.Employee.Team,
			es.IdealShifts, es.ActualShifts, es.Deviation(),
			es.MaxConsecutive, violations)
	}
	tw.Flush()
	fmt.Fprintln(r.w)
}

func (r *Reporter) teamSummary(result *model.ScheduleResult) {
	fmt.Fprintln(r.w, "TEAM SUMMARY")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Team\tTarget %\tActual %\tTarget Shifts\tActual Shifts\tDeviation")
	for _, ts := range result.TeamSummaries {
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%.1f\t%.0f\t%.1f\n",
			ts.Team.Name,
			ts.Team.TargetPercentage*100,
			ts.ActualPercentage(result.TotalShiftsRequired)*100,
			ts.TargetShifts, ts.ActualShifts, ts.Deviation)
	}
	tw.Flush()
	fmt.Fprintln(r.w)
}

// violationDetails lists each over-long run of consecutive shifts as a date
// range so planners can see exactly where the soft limit was traded away
func (r *Reporter) violationDetails(result *model.ScheduleResult) {
	cfg := result.Config
	maxConsec := cfg.Limits.MaxConsecutiveShifts

	var lines []string
	for _, es := range result.EmployeeSchedules {
		for _, run := range consecutiveRuns(es.AssignedDays) {
			length := run[1] - run[0] + 1
			if length <= maxConsec {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s: %d consecutive shifts, %s to %s",
				es.Employee.Name, length,
				cfg.Date(run[0]).Format(dateLayout), cfg.Date(run[1]).Format(dateLayout)))
		}
		if es.WeeklyViolations > 0 {
			for w, c := range es.WeeklyShifts {
				if c > cfg.Limits.MaxShiftsPerWeek {
					lines = append(lines, fmt.Sprintf("  %s: %d shifts in week %d (limit %d)",
						es.Employee.Name, c, w+1, cfg.Limits.MaxShiftsPerWeek))
				}
			}
		}
		if es.SameWeekdayViolations > 0 {
			lines = append(lines, fmt.Sprintf("  %s: same weekday worked in back-to-back weeks %d time(s)",
				es.Employee.Name, es.SameWeekdayViolations))
		}
	}

	if len(lines) == 0 {
		return
	}

	fmt.Fprintln(r.w, "SOFT RULE VIOLATIONS")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))
	for _, line := range lines {
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w)
}

func (r *Reporter) vacationSummary(result *model.ScheduleResult) {
	cfg := result.Config

	var lines []string
	for _, emp := range cfg.Employees {
		for _, vac := range emp.Vacations {
			if vac.End.Before(cfg.StartDate) || vac.Start.After(cfg.EndDate()) {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s: %s to %s (%d days)",
				emp.Name, vac.Start.Format(dateLayout), vac.End.Format(dateLayout), vac.Days()))
		}
	}

	if len(lines) == 0 {
		return
	}

	fmt.Fprintln(r.w, "VACATIONS IN PERIOD")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))
	for _, line := range lines {
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w)
}

// consecutiveRuns splits a sorted day-index list into maximal [first, last]
// runs of consecutive days
func consecutiveRuns(assignedDays []int) [][2]int {
	var runs [][2]int
	for i := 0; i < len(assignedDays); {
		j := i
		for j+1 < len(assignedDays) && assignedDays[j+1] == assignedDays[j]+1 {
			j++
		}
		runs = append(runs, [2]int{assignedDays[i], assignedDays[j]})
		i = j + 1
	}
	return runs
}
