package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/logging"
	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/plan"
	"github.com/chandralegend/day-planner-ai/internal/task"
)

func TestVerify_CountsAndDanglingRefs(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	ctx := context.Background()

	tasks, err := task.NewFileRepo(cfg.TasksPath(), config.LoadFail, logging.Discard(), nil)
	require.NoError(t, err)
	kept, err := tasks.Create(ctx, task.Draft{Title: "Write report", Priority: 5})
	require.NoError(t, err)
	doomed, err := tasks.Create(ctx, task.Draft{Title: "Clean desk"})
	require.NoError(t, err)

	plans, err := plan.NewFileRepo(cfg.PlansPath(), config.LoadFail, logging.Discard())
	require.NoError(t, err)
	date, _ := model.ParseDate("2026-08-30")
	require.NoError(t, plans.Put(ctx, model.DayPlan{
		Date: date,
		TimeSlots: []model.TimeSlot{
			{StartTime: "09:00", EndTime: "10:00", TaskID: &kept.ID},
			{StartTime: "10:00", EndTime: "11:00", TaskID: &doomed.ID},
			{StartTime: "11:00", EndTime: "12:00"},
		},
	}))

	removed, err := tasks.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	require.True(t, removed)

	rep, err := Verify(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Tasks.Total)
	assert.Equal(t, 1, rep.PlanDays)
	assert.Equal(t, 3, rep.TotalSlots)
	assert.Equal(t, 1, rep.DanglingRefs)
}

func TestVerify_FailsOnCorruptFile(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "tasks.json"), []byte("{nope"), 0o644))

	_, err := Verify(context.Background(), cfg)
	require.Error(t, err)
	var pe *model.PersistenceError
	assert.ErrorAs(t, err, &pe)
}
