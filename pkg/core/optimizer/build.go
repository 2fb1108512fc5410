package optimizer

import (
	"fmt"
	"math"

	"github.com/jakechorley/steward-shift/pkg/core/model"
	"github.com/jakechorley/steward-shift/pkg/lp"
)

// builtModel holds the assembled integer program together with the variable
// handles and derived data needed to interpret a solution. It is local to
// one optimization run and discarded after extraction.
type builtModel struct {
	lpm *lp.Model

	// x[e][k] = 1 when employee e works day k
	x [][]lp.Var
	// s[e] is employee e's total shift count
	s []lp.Var
	// st[t] and dt[t] are team t's shift count and absolute target deviation
	st []lp.Var
	dt []lp.Var
	// z[e] is employee e's absolute deviation from their ideal share
	z []lp.Var

	availability  [][]int
	ideals        []float64
	teamTargets   []float64
	totalRequired int
}

// buildModel turns a validated config into the full integer program:
// decision variables, hard constraints, epigraph slack variables for every
// soft rule, and the single weighted minimize objective.
//
// Each soft rule uses the same trick: an auxiliary variable bounded below by
// the violation magnitude and penalised positively, so minimization pins it
// to exactly the violation amount without any abs() or max() operator. The
// direction of each inequality pair and the sign of each weight are what
// make the trick bind.
func buildModel(cfg *model.ScheduleConfig) (*builtModel, error) {
	availability, err := AvailabilityMatrix(cfg)
	if err != nil {
		return nil, err
	}

	totalDays := cfg.TotalDays()
	totalRequired := TotalRequiredShifts(cfg)
	ideals := IdealShares(cfg, availability)

	m := lp.NewModel()
	b := &builtModel{
		lpm:           m,
		availability:  availability,
		ideals:        ideals,
		totalRequired: totalRequired,
	}

	// Decision and counting variables
	b.x = make([][]lp.Var, len(cfg.Employees))
	b.s = make([]lp.Var, len(cfg.Employees))
	for e, emp := range cfg.Employees {
		b.x[e] = make([]lp.Var, totalDays)
		for k := 0; k < totalDays; k++ {
			b.x[e][k] = m.AddVar(lp.Binary, fmt.Sprintf("x_%s_%d", emp.Name, k), 0, 1)
		}
		b.s[e] = m.AddVar(lp.Integer, fmt.Sprintf("S_%s", emp.Name), 0, float64(totalRequired))
	}

	b.st = make([]lp.Var, len(cfg.Teams))
	b.dt = make([]lp.Var, len(cfg.Teams))
	b.teamTargets = make([]float64, len(cfg.Teams))
	for t, team := range cfg.Teams {
		b.st[t] = m.AddVar(lp.Continuous, fmt.Sprintf("S_t_%s", team.Name), 0, float64(totalRequired))
		b.dt[t] = m.AddVar(lp.Continuous, fmt.Sprintf("D_t_%s", team.Name), 0, float64(totalRequired))
		b.teamTargets[t] = team.TargetPercentage * float64(totalRequired)
	}

	b.z = make([]lp.Var, len(cfg.Employees))
	for e, emp := range cfg.Employees {
		b.z[e] = m.AddVar(lp.Continuous, fmt.Sprintf("Z_%s", emp.Name), 0, math.Inf(1))
	}

	b.addStaffingConstraints(cfg)
	b.lockUnavailableDays(cfg)
	b.addCountingConstraints(cfg)
	b.addFairnessConstraints(cfg)
	b.addTeamDeviationConstraints(cfg)
	b.addConsecutiveConstraints(cfg)
	b.addWeeklyExcessConstraints(cfg)
	b.addSameWeekdayConstraints(cfg)

	return b, nil
}

// addStaffingConstraints requires every day's headcount to match the
// weekday requirement exactly
func (b *builtModel) addStaffingConstraints(cfg *model.ScheduleConfig) {
	for k := 0; k < cfg.TotalDays(); k++ {
		terms := make([]lp.Term, len(b.x))
		for e := range b.x {
			terms[e] = lp.Term{Var: b.x[e][k], Coeff: 1}
		}
		required := cfg.StaffingRequirements[cfg.Weekday(k)]
		b.lpm.AddConstraint(fmt.Sprintf("Staffing_Day_%d", k), lp.Equal, float64(required), terms...)
	}
}

// lockUnavailableDays fixes assignments to zero wherever the availability
// grid says the employee cannot work. The lock goes through the variable's
// upper bound rather than an x = 0 equality: on a zero-requirement day the
// equalities would duplicate the staffing row and leave the equality system
// singular.
func (b *builtModel) lockUnavailableDays(cfg *model.ScheduleConfig) {
	for e := range cfg.Employees {
		for k := 0; k < cfg.TotalDays(); k++ {
			if b.availability[e][k] == 0 {
				b.lpm.SetUpper(b.x[e][k], 0)
			}
		}
	}
}

// addCountingConstraints links the per-employee and per-team shift counts
// to the assignment variables
func (b *builtModel) addCountingConstraints(cfg *model.ScheduleConfig) {
	for e, emp := range cfg.Employees {
		terms := []lp.Term{{Var: b.s[e], Coeff: 1}}
		for k := 0; k < cfg.TotalDays(); k++ {
			terms = append(terms, lp.Term{Var: b.x[e][k], Coeff: -1})
		}
		b.lpm.AddConstraint(fmt.Sprintf("ShiftCount_%s", emp.Name), lp.Equal, 0, terms...)
	}

	for t, team := range cfg.Teams {
		terms := []lp.Term{{Var: b.st[t], Coeff: 1}}
		for e, emp := range cfg.Employees {
			if emp.Team == team.Name {
				terms = append(terms, lp.Term{Var: b.s[e], Coeff: -1})
			}
		}
		b.lpm.AddConstraint(fmt.Sprintf("TeamShiftCount_%s", team.Name), lp.Equal, 0, terms...)
	}
}

// addFairnessConstraints bounds Z below by both signs of the deviation from
// the ideal share, so minimization makes Z the absolute deviation
func (b *builtModel) addFairnessConstraints(cfg *model.ScheduleConfig) {
	for e, emp := range cfg.Employees {
		// Z >= ideal - S
		b.lpm.AddConstraint(fmt.Sprintf("Fairness_Under_%s", emp.Name), lp.GreaterEq, b.ideals[e],
			lp.Term{Var: b.z[e], Coeff: 1}, lp.Term{Var: b.s[e], Coeff: 1})
		// Z >= S - ideal
		b.lpm.AddConstraint(fmt.Sprintf("Fairness_Over_%s", emp.Name), lp.GreaterEq, -b.ideals[e],
			lp.Term{Var: b.z[e], Coeff: 1}, lp.Term{Var: b.s[e], Coeff: -1})
		b.lpm.SetObjective(b.z[e], cfg.Penalties.Fairness)
	}
}

// addTeamDeviationConstraints does the same for each team's distance from
// its target share
func (b *builtModel) addTeamDeviationConstraints(cfg *model.ScheduleConfig) {
	for t, team := range cfg.Teams {
		b.lpm.AddConstraint(fmt.Sprintf("TeamDev_Under_%s", team.Name), lp.GreaterEq, b.teamTargets[t],
			lp.Term{Var: b.dt[t], Coeff: 1}, lp.Term{Var: b.st[t], Coeff: 1})
		b.lpm.AddConstraint(fmt.Sprintf("TeamDev_Over_%s", team.Name), lp.GreaterEq, -b.teamTargets[t],
			lp.Term{Var: b.dt[t], Coeff: 1}, lp.Term{Var: b.st[t], Coeff: -1})
		b.lpm.SetObjective(b.dt[t], cfg.Penalties.TeamDeviation)
	}
}

// addConsecutiveConstraints creates a binary detector per sliding window of
// maxConsecutive+1 days: it is forced to 1 only when every extra day in the
// window is worked, and driven back to 0 by minimization otherwise. No
// equality is involved, so the rule can never make the model infeasible.
func (b *builtModel) addConsecutiveConstraints(cfg *model.ScheduleConfig) {
	maxConsec := cfg.Limits.MaxConsecutiveShifts
	window := maxConsec + 1
	totalDays := cfg.TotalDays()

	for e, emp := range cfg.Employees {
		for k := 0; k+window <= totalDays; k++ {
			c := b.lpm.AddVar(lp.Binary, fmt.Sprintf("C_%s_%d", emp.Name, k), 0, 1)
			// C >= sum(window) - maxConsec
			terms := []lp.Term{{Var: c, Coeff: 1}}
			for j := 0; j < window; j++ {
				terms = append(terms, lp.Term{Var: b.x[e][k+j], Coeff: -1})
			}
			b.lpm.AddConstraint(fmt.Sprintf("ConsecutiveDetect_%s_Day_%d", emp.Name, k),
				lp.GreaterEq, -float64(maxConsec), terms...)
			b.lpm.SetObjective(c, cfg.Penalties.ConsecutiveShifts)
		}
	}
}

// addWeeklyExcessConstraints creates one integer excess variable per
// employee-week; its natural lower bound of zero plus minimization collapse
// it to exactly max(0, shifts - maxWeekly)
func (b *builtModel) addWeeklyExcessConstraints(cfg *model.ScheduleConfig) {
	maxWeekly := cfg.Limits.MaxShiftsPerWeek

	for e, emp := range cfg.Employees {
		for w := 0; w < cfg.DurationWeeks; w++ {
			excess := b.lpm.AddVar(lp.Integer, fmt.Sprintf("W_%s_%d", emp.Name, w), 0, 7)
			// W >= week total - maxWeekly
			terms := []lp.Term{{Var: excess, Coeff: 1}}
			for d := 0; d < 7; d++ {
				terms = append(terms, lp.Term{Var: b.x[e][w*7+d], Coeff: -1})
			}
			b.lpm.AddConstraint(fmt.Sprintf("WeeklyExcess_%s_Week_%d", emp.Name, w),
				lp.GreaterEq, -float64(maxWeekly), terms...)
			b.lpm.SetObjective(excess, cfg.Penalties.WeeklyExcess)
		}
	}
}

// addSameWeekdayConstraints creates a binary repeat detector per employee,
// adjacent week pair and weekday; it is forced to 1 only when the identical
// weekday is worked in both weeks of the pair. Skipped entirely when the
// rule is disabled or the horizon is a single week.
func (b *builtModel) addSameWeekdayConstraints(cfg *model.ScheduleConfig) {
	if !cfg.Limits.AvoidSameWeekday || cfg.DurationWeeks < 2 {
		return
	}

	for e, emp := range cfg.Employees {
		for w := 0; w < cfg.DurationWeeks-1; w++ {
			for d := 0; d < 7; d++ {
				repeat := b.lpm.AddVar(lp.Binary, fmt.Sprintf("R_%s_%d_%d", emp.Name, w, d), 0, 1)
				// R >= x[w,d] + x[w+1,d] - 1
				b.lpm.AddConstraint(fmt.Sprintf("SameWeekday_%s_Week_%d_Day_%d", emp.Name, w, d),
					lp.GreaterEq, -1,
					lp.Term{Var: repeat, Coeff: 1},
					lp.Term{Var: b.x[e][w*7+d], Coeff: -1},
					lp.Term{Var: b.x[e][(w+1)*7+d], Coeff: -1})
				b.lpm.SetObjective(repeat, cfg.Penalties.SameWeekday)
			}
		}
	}
}
