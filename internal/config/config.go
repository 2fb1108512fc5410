// Package config loads and validates the YAML schedule configuration,
// producing the immutable ScheduleConfig consumed by the optimizer.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

const dateLayout = "2006-01-02"

// rawConfig mirrors the YAML document structure before resolution into the
// domain config
type rawConfig struct {
	Planning struct {
		StartDate     string `yaml:"start_date" validate:"required"`
		DurationWeeks int    `yaml:"duration_weeks" validate:"omitempty,min=1"`
	} `yaml:"planning" validate:"required"`

	StaffingRequirements map[string]int `yaml:"staffing_requirements" validate:"required"`

	Teams map[string]rawTeam `yaml:"teams" validate:"required,min=1"`

	Employees []rawEmployee `yaml:"employees" validate:"required,min=1,dive"`

	Penalties *rawPenalties `yaml:"penalties"`
	Limits    *rawLimits    `yaml:"limits"`
}

type rawTeam struct {
	TargetPercentage float64 `yaml:"target_percentage" validate:"min=0,max=1"`
	TeamDay          string  `yaml:"team_day,omitempty"`
}

type rawEmployee struct {
	Name              string        `yaml:"name" validate:"required"`
	Team              string        `yaml:"team" validate:"required"`
	AvailableDays     []string      `yaml:"available_days" validate:"required,min=1"`
	Vacations         []rawVacation `yaml:"vacations,omitempty" validate:"dive"`
	RecurringAbsences []string      `yaml:"recurring_absences,omitempty"`
}

type rawVacation struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

type rawPenalties struct {
	Fairness          *float64 `yaml:"fairness"`
	TeamDeviation     *float64 `yaml:"team_deviation"`
	ConsecutiveShifts *float64 `yaml:"consecutive_shifts"`
	WeeklyExcess      *float64 `yaml:"weekly_excess"`
	SameWeekday       *float64 `yaml:"same_weekday"`
}

type rawLimits struct {
	MaxConsecutiveShifts *int  `yaml:"max_consecutive_shifts"`
	MaxShiftsPerWeek     *int  `yaml:"max_shifts_per_week"`
	AvoidSameWeekday     *bool `yaml:"avoid_same_weekday"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadFromPath reads, parses and fully validates a schedule configuration
// file. The returned config has all dates resolved, all teams
// cross-referenced and all percentages checked; it is safe to hand straight
// to the optimizer.
func LoadFromPath(path string) (*model.ScheduleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated ScheduleConfig from raw YAML bytes
func Parse(data []byte) (*model.ScheduleConfig, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg, err := resolve(&raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// resolve converts the raw YAML structures into the domain config,
// translating day names, parsing dates and expanding recurring absences
func resolve(raw *rawConfig) (*model.ScheduleConfig, error) {
	startDate, err := parseDate(raw.Planning.StartDate)
	if err != nil {
		return nil, fmt.Errorf("planning.start_date: %w", err)
	}

	weeks := raw.Planning.DurationWeeks
	if weeks == 0 {
		weeks = 4
	}

	cfg := &model.ScheduleConfig{
		StartDate:     startDate,
		DurationWeeks: weeks,
		Penalties:     model.DefaultPenalties(),
		Limits:        model.DefaultLimits(),
	}

	for dayName, count := range raw.StaffingRequirements {
		idx, ok := model.DayIndex[strings.ToLower(dayName)]
		if !ok {
			return nil, fmt.Errorf("invalid day name %q in staffing_requirements (valid: %s)",
				dayName, validDayNames())
		}
		cfg.StaffingRequirements[idx] = count
	}

	// Teams are a YAML map; sort names so config order is deterministic
	teamNames := make([]string, 0, len(raw.Teams))
	for name := range raw.Teams {
		teamNames = append(teamNames, name)
	}
	sort.Strings(teamNames)

	for _, name := range teamNames {
		rt := raw.Teams[name]
		team := model.Team{Name: name, TargetPercentage: rt.TargetPercentage}
		if rt.TeamDay != "" {
			idx, ok := model.DayIndex[strings.ToLower(rt.TeamDay)]
			if !ok {
				return nil, fmt.Errorf("team %q has invalid team_day %q (valid: %s)",
					name, rt.TeamDay, validDayNames())
			}
			team.TeamDay = &idx
		}
		cfg.Teams = append(cfg.Teams, team)
	}

	for _, re := range raw.Employees {
		emp := model.Employee{Name: re.Name, Team: re.Team}

		for _, dayName := range re.AvailableDays {
			idx, ok := model.DayIndex[strings.ToLower(dayName)]
			if !ok {
				return nil, fmt.Errorf("employee %q has invalid available day %q (valid: %s)",
					re.Name, dayName, validDayNames())
			}
			emp.AvailableDays = append(emp.AvailableDays, idx)
		}

		for _, rv := range re.Vacations {
			start, err := parseDate(rv.Start)
			if err != nil {
				return nil, fmt.Errorf("vacation start date for %s: %w", re.Name, err)
			}
			end, err := parseDate(rv.End)
			if err != nil {
				return nil, fmt.Errorf("vacation end date for %s: %w", re.Name, err)
			}
			period, err := model.NewVacationPeriod(start, end)
			if err != nil {
				return nil, fmt.Errorf("vacation for %s: %w", re.Name, err)
			}
			emp.Vacations = append(emp.Vacations, period)
		}

		absences, err := expandRecurringAbsences(re.RecurringAbsences, cfg.StartDate, cfg.EndDate())
		if err != nil {
			return nil, fmt.Errorf("recurring absences for %s: %w", re.Name, err)
		}
		emp.Vacations = append(emp.Vacations, absences...)

		cfg.Employees = append(cfg.Employees, emp)
	}

	if raw.Penalties != nil {
		applyFloat(&cfg.Penalties.Fairness, raw.Penalties.Fairness)
		applyFloat(&cfg.Penalties.TeamDeviation, raw.Penalties.TeamDeviation)
		applyFloat(&cfg.Penalties.ConsecutiveShifts, raw.Penalties.ConsecutiveShifts)
		applyFloat(&cfg.Penalties.WeeklyExcess, raw.Penalties.WeeklyExcess)
		applyFloat(&cfg.Penalties.SameWeekday, raw.Penalties.SameWeekday)
	}
	if raw.Limits != nil {
		if raw.Limits.MaxConsecutiveShifts != nil {
			cfg.Limits.MaxConsecutiveShifts = *raw.Limits.MaxConsecutiveShifts
		}
		if raw.Limits.MaxShiftsPerWeek != nil {
			cfg.Limits.MaxShiftsPerWeek = *raw.Limits.MaxShiftsPerWeek
		}
		if raw.Limits.AvoidSameWeekday != nil {
			cfg.Limits.AvoidSameWeekday = *raw.Limits.AvoidSameWeekday
		}
	}

	return cfg, nil
}

// expandRecurringAbsences turns RRULE strings into single-day vacation
// periods covering every occurrence inside the planning horizon
func expandRecurringAbsences(rules []string, start, end time.Time) ([]model.VacationPeriod, error) {
	var periods []model.VacationPeriod

	for i, raw := range rules {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule at index %d: %w", i, err)
		}
		rule.DTStart(start)

		for _, occ := range rule.Between(start, end, true) {
			day := time.Date(occ.Year(), occ.Month(), occ.Day(), 0, 0, 0, 0, time.UTC)
			periods = append(periods, model.VacationPeriod{Start: day, End: day})
		}
	}

	return periods, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in ISO 8601 format (YYYY-MM-DD), got %q", s)
	}
	return t, nil
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func validDayNames() string {
	names := make([]string, 0, len(model.DayIndex))
	for name := range model.DayIndex {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return model.DayIndex[names[i]] < model.DayIndex[names[j]]
	})
	return strings.Join(names, ", ")
}

// Summary renders a short human-readable description of a loaded config
func Summary(cfg *model.ScheduleConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Planning Period: %s to %s\n",
		cfg.StartDate.Format(dateLayout), cfg.EndDate().Format(dateLayout))
	fmt.Fprintf(&b, "Duration: %d weeks (%d days)\n", cfg.DurationWeeks, cfg.TotalDays())
	fmt.Fprintf(&b, "Teams: %d\n", len(cfg.Teams))
	for _, team := range cfg.Teams {
		fmt.Fprintf(&b, "  - %s: %d employees (%.0f%%)\n",
			team.Name, len(cfg.EmployeesInTeam(team.Name)), team.TargetPercentage*100)
	}
	fmt.Fprintf(&b, "Total Employees: %d", len(cfg.Employees))

	return b.String()
}

// OutOfRangeVacations lists vacations that fall entirely outside the
// planning period; callers typically surface them as warnings
func OutOfRangeVacations(cfg *model.ScheduleConfig) []string {
	var warnings []string
	for _, emp := range cfg.Employees {
		for _, vac := range emp.Vacations {
			if vac.End.Before(cfg.StartDate) || vac.Start.After(cfg.EndDate()) {
				warnings = append(warnings, fmt.Sprintf("%s's vacation %s to %s is outside planning period %s to %s",
					emp.Name,
					vac.Start.Format(dateLayout), vac.End.Format(dateLayout),
					cfg.StartDate.Format(dateLayout), cfg.EndDate().Format(dateLayout)))
			}
		}
	}
	return warnings
}
