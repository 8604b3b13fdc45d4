package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/plan"
	"github.com/chandralegend/day-planner-ai/internal/task"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	clock := model.NewFakeClock(time.Date(2026, time.August, 30, 9, 0, 0, 0, time.Local))
	planner := plan.NewPlanner(plan.NewMemoryRepo(), task.NewMemoryRepo(nil), clock, config.PlanCreateOverwrite)
	r, err := DefaultRegistry(task.NewMemoryRepo(nil), planner)
	require.NoError(t, err)
	return r
}

// newSharedRegistry builds a registry whose task actions and plan actions
// see the same task store, which the scenario tests need.
func newSharedRegistry(t *testing.T) *Registry {
	t.Helper()
	clock := model.NewFakeClock(time.Date(2026, time.August, 30, 9, 0, 0, 0, time.Local))
	tasks := task.NewMemoryRepo(nil)
	planner := plan.NewPlanner(plan.NewMemoryRepo(), tasks, clock, config.PlanCreateOverwrite)
	r, err := DefaultRegistry(tasks, planner)
	require.NoError(t, err)
	return r
}

func dispatch(t *testing.T, r *Registry, name, args string) any {
	t.Helper()
	out, err := r.Dispatch(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err, "dispatch %s", name)
	return out
}

func TestRegistry_RegistersEveryAction(t *testing.T) {
	r := newTestRegistry(t)

	want := []string{
		"add_time_slot", "assign_task_to_slot", "create_day_plan",
		"create_task", "day_summary", "delete_task", "get_day_plan",
		"get_task", "list_tasks", "recent_plans", "remove_time_slot",
		"scheduled_tasks", "task_summary", "unscheduled_tasks",
		"update_task",
	}
	all := r.All()
	got := make([]string, len(all))
	for i, a := range all {
		got[i] = a.Name
		assert.NotEmpty(t, a.Description, "%s needs a description", a.Name)
	}
	assert.Equal(t, want, got, "All() is sorted by name")
}

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	a := &Action{
		Name:    "noop",
		Schema:  `{"type": "object"}`,
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	}
	require.NoError(t, r.Register(a))
	assert.Error(t, r.Register(a))
}

func TestRegistry_UnknownAction(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "frobnicate", nil)
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "action", nf.Kind)
}

func TestRegistry_DispatchValidatesArgs(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		action string
		args   string
	}{
		{"malformed json", "create_task", `{"title": `},
		{"missing required", "create_task", `{}`},
		{"wrong type", "create_task", `{"title": "ok", "priority": "high"}`},
		{"out of range", "create_task", `{"title": "ok", "priority": 9}`},
		{"unknown field", "create_task", `{"title": "ok", "color": "red"}`},
		{"bad date shape", "create_day_plan", `{"date": "Aug 30"}`},
		{"bad status", "list_tasks", `{"status": ["done"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Dispatch(ctx, tc.action, json.RawMessage(tc.args))
			var ve *model.ValidationError
			require.Error(t, err)
			assert.True(t, errors.As(err, &ve), "got %T: %v", err, err)
		})
	}
}

func TestRegistry_NilArgsMeansEmptyObject(t *testing.T) {
	r := newTestRegistry(t)

	out, err := r.Dispatch(context.Background(), "task_summary", nil)
	require.NoError(t, err)
	sum, ok := out.(model.TaskSummary)
	require.True(t, ok)
	assert.Equal(t, 0, sum.Total)
}

func TestRegistry_TaskLifecycle(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	out := dispatch(t, r, "create_task",
		`{"title": "Write report", "priority": 5, "due_date": "2026-09-01"}`)
	created, ok := out.(model.Task)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, created.Status)
	require.NotNil(t, created.DueDate)

	out = dispatch(t, r, "update_task",
		fmt.Sprintf(`{"id": %q, "status": "completed", "due_date": ""}`, created.ID))
	updated := out.(model.Task)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Nil(t, updated.DueDate, "empty string clears the due date")

	out = dispatch(t, r, "task_summary", `{}`)
	sum := out.(model.TaskSummary)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 100.0, sum.CompletionRate)

	out = dispatch(t, r, "delete_task", fmt.Sprintf(`{"id": %q}`, created.ID))
	assert.Equal(t, deletedResult{Deleted: true}, out)

	_, err := r.Dispatch(ctx, "get_task", json.RawMessage(fmt.Sprintf(`{"id": %q}`, created.ID)))
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRegistry_PlanADayScenario(t *testing.T) {
	r := newSharedRegistry(t)

	report := dispatch(t, r, "create_task", `{"title": "Write report", "priority": 5}`).(model.Task)
	dispatch(t, r, "create_task", `{"title": "Clean desk", "priority": 1}`)

	dispatch(t, r, "add_time_slot",
		fmt.Sprintf(`{"start_time": "09:00", "end_time": "10:30", "task_id": %q}`, report.ID))
	dispatch(t, r, "add_time_slot", `{"start_time": "11:00", "end_time": "12:00"}`)

	scheduled := dispatch(t, r, "scheduled_tasks", `{}`).([]model.Task)
	require.Len(t, scheduled, 1)
	assert.Equal(t, report.ID, scheduled[0].ID)

	unscheduled := dispatch(t, r, "unscheduled_tasks", `{}`).([]model.Task)
	require.Len(t, unscheduled, 1)
	assert.Equal(t, "Clean desk", unscheduled[0].Title)

	sum := dispatch(t, r, "day_summary", `{}`).(model.DaySummary)
	assert.Equal(t, "2026-08-30", sum.Date.String())
	assert.Equal(t, 2, sum.TotalSlots)
	assert.Equal(t, 1, sum.ScheduledSlots)

	out := dispatch(t, r, "remove_time_slot", `{"slot_index": 1}`)
	assert.Equal(t, removedResult{Removed: true}, out)

	res := dispatch(t, r, "get_day_plan", `{}`).(planResult)
	require.True(t, res.Found)
	require.Len(t, res.Plan.TimeSlots, 1)

	res = dispatch(t, r, "get_day_plan", `{"date": "2020-01-01"}`).(planResult)
	assert.False(t, res.Found)
	assert.Nil(t, res.Plan)

	recent := dispatch(t, r, "recent_plans", `{}`).([]model.DayPlan)
	require.Len(t, recent, 1)
}

func TestRegistry_AddSlotWithUnknownTask(t *testing.T) {
	r := newSharedRegistry(t)

	_, err := r.Dispatch(context.Background(), "add_time_slot",
		json.RawMessage(`{"start_time": "09:00", "end_time": "10:00", "task_id": "ghost"}`))
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "task", nf.Kind)

	res := dispatch(t, r, "get_day_plan", `{}`).(planResult)
	assert.False(t, res.Found, "the failed add must not leave a plan behind")
}
