package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

type mockStore struct {
	runs        []ScheduleRun
	assignments []RunAssignment
	insertErr   error
	getErr      error
}

func (m *mockStore) InsertRun(ctx context.Context, run *ScheduleRun) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockStore) InsertAssignments(ctx context.Context, assignments []RunAssignment) error {
	m.assignments = append(m.assignments, assignments...)
	return nil
}

func (m *mockStore) GetRuns(ctx context.Context) ([]ScheduleRun, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.runs, nil
}

func optimalResult() *model.ScheduleResult {
	cfg := &model.ScheduleConfig{
		StartDate:            time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		DurationWeeks:        1,
		StaffingRequirements: [7]int{1, 0, 0, 0, 0, 0, 0},
		Teams:                []model.Team{{Name: "Kitchen", TargetPercentage: 1}},
		Employees: []model.Employee{
			{Name: "Alice", Team: "Kitchen", AvailableDays: []int{0}},
		},
	}

	return &model.ScheduleResult{
		Config:              cfg,
		Status:              model.StatusOptimal,
		ObjectiveValue:      0,
		TotalShiftsRequired: 1,
		DailyAssignments: []model.DailyAssignment{
			{DayIndex: 0, Date: cfg.Date(0), DayOfWeek: "Mon", Employees: []string{"Alice"}, Required: 1, Actual: 1},
		},
	}
}

func TestSaveRunStoresRunAndAssignments(t *testing.T) {
	store := &mockStore{}
	result := optimalResult()

	runID, err := SaveRun(context.Background(), store, zap.NewNop(), result)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "2026-01-05", run.StartDate)
	assert.Equal(t, 1, run.DurationWeeks)
	assert.Equal(t, "Optimal", run.Status)
	assert.Equal(t, 1, run.TotalShifts)

	require.Len(t, store.assignments, 1)
	a := store.assignments[0]
	assert.Equal(t, runID, a.RunID)
	assert.Equal(t, "2026-01-05", a.ShiftDate)
	assert.Equal(t, "Alice", a.Employee)
	assert.Equal(t, "Kitchen", a.Team)
}

func TestSaveRunSkipsAssignmentsForFailedRuns(t *testing.T) {
	store := &mockStore{}
	result := optimalResult()
	result.Status = model.StatusInfeasible
	result.DailyAssignments = nil

	runID, err := SaveRun(context.Background(), store, zap.NewNop(), result)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.Len(t, store.runs, 1)
	assert.Equal(t, "Infeasible", store.runs[0].Status)
	assert.Empty(t, store.assignments)
}

func TestSaveRunPropagatesStoreErrors(t *testing.T) {
	store := &mockStore{insertErr: fmt.Errorf("connection refused")}

	_, err := SaveRun(context.Background(), store, zap.NewNop(), optimalResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert run")
}

func TestListRuns(t *testing.T) {
	store := &mockStore{runs: []ScheduleRun{{ID: "r1"}, {ID: "r2"}}}

	runs, err := ListRuns(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListRunsPropagatesStoreErrors(t *testing.T) {
	store := &mockStore{getErr: fmt.Errorf("connection refused")}

	_, err := ListRuns(context.Background(), store, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch runs")
}
