package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

func TestTotalRequiredShifts(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        2,
		StaffingRequirements: [7]int{2, 1, 1, 1, 1, 0, 0},
	}

	assert.Equal(t, 12, TotalRequiredShifts(cfg))
}

func TestIdealSharesProportionalToAvailability(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 1, 1, 1, 1, 0, 0},
		Teams: []model.Team{
			{Name: "A", TargetPercentage: 0.6},
			{Name: "B", TargetPercentage: 0.4},
		},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1, 2, 3}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0, 1}},
			{Name: "Carol", Team: "B", AvailableDays: []int{0, 1, 2, 3, 4}},
		},
	}

	matrix, err := AvailabilityMatrix(cfg)
	require.NoError(t, err)

	ideals := IdealShares(cfg, matrix)

	// Team A's target of 3 shifts splits 2:1 between Alice and Bob
	assert.InDelta(t, 2.0, ideals[0], 1e-9)
	assert.InDelta(t, 1.0, ideals[1], 1e-9)
	// Carol carries team B's whole target
	assert.InDelta(t, 2.0, ideals[2], 1e-9)
}

func TestIdealSharesEqualForIdenticalAvailability(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{2, 2, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "A", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0, 1}},
			{Name: "Bob", Team: "A", AvailableDays: []int{0, 1}},
			{Name: "Carol", Team: "A", AvailableDays: []int{0, 1}},
		},
	}

	matrix, err := AvailabilityMatrix(cfg)
	require.NoError(t, err)

	ideals := IdealShares(cfg, matrix)
	assert.InDelta(t, ideals[0], ideals[1], 1e-9)
	assert.InDelta(t, ideals[1], ideals[2], 1e-9)
}

func TestIdealSharesZeroAvailabilityTeam(t *testing.T) {
	cfg := &model.ScheduleConfig{
		StartDate:            mondayStart,
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams: []model.Team{
			{Name: "A", TargetPercentage: 0.5},
			{Name: "B", TargetPercentage: 0.5},
		},
		Employees: []model.Employee{
			{Name: "Alice", Team: "A", AvailableDays: []int{0}},
			// Team B has no available days at all, so its target cannot be
			// split and every member's ideal collapses to zero
			{Name: "Bob", Team: "B"},
			{Name: "Carol", Team: "B"},
		},
	}

	matrix, err := AvailabilityMatrix(cfg)
	require.NoError(t, err)

	ideals := IdealShares(cfg, matrix)
	assert.InDelta(t, 0.5, ideals[0], 1e-9)
	assert.InDelta(t, 0.0, ideals[1], 1e-9)
	assert.InDelta(t, 0.0, ideals[2], 1e-9)
}
