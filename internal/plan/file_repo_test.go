package plan

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/logging"
	"github.com/chandralegend/day-planner-ai/internal/model"
)

func newTestFilePlanRepo(t *testing.T) (*FileRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day_plans.json")
	r, err := NewFileRepo(path, config.LoadDegrade, logging.Discard())
	require.NoError(t, err)
	return r, path
}

func testPlan(date model.Date) model.DayPlan {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	id := model.TaskID("t-1")
	return model.DayPlan{
		Date: date,
		TimeSlots: []model.TimeSlot{
			{StartTime: "09:00", EndTime: "10:00", TaskID: &id},
			{StartTime: "10:00", EndTime: "11:00"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFilePlanRepo_NoFileUntilFirstWrite(t *testing.T) {
	r, path := newTestFilePlanRepo(t)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	date, err := model.ParseDate("2026-08-30")
	require.NoError(t, err)
	require.NoError(t, r.Put(context.Background(), testPlan(date)))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFilePlanRepo_RoundTrip(t *testing.T) {
	r, path := newTestFilePlanRepo(t)
	ctx := context.Background()

	d1, _ := model.ParseDate("2026-08-29")
	d2, _ := model.ParseDate("2026-08-30")
	require.NoError(t, r.Put(ctx, testPlan(d1)))
	require.NoError(t, r.Put(ctx, testPlan(d2)))

	// A fresh repo on the same path sees the same plans.
	reopened, err := NewFileRepo(path, config.LoadDegrade, logging.Discard())
	require.NoError(t, err)

	got, ok, err := reopened.Get(ctx, d1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.TimeSlots, 2)
	require.NotNil(t, got.TimeSlots[0].TaskID)
	assert.Equal(t, model.TaskID("t-1"), *got.TimeSlots[0].TaskID)
	assert.Nil(t, got.TimeSlots[1].TaskID)

	all, err := reopened.Range(ctx, d1, d2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, d2, all[0].Date, "newest first")
	assert.Equal(t, d1, all[1].Date)
}

func TestFilePlanRepo_PersistedShape(t *testing.T) {
	r, path := newTestFilePlanRepo(t)

	date, _ := model.ParseDate("2026-08-30")
	require.NoError(t, r.Put(context.Background(), testPlan(date)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Contains(t, raw, "2026-08-30")

	plan := raw["2026-08-30"]
	for _, key := range []string{"date", "time_slots", "notes", "created_at", "updated_at"} {
		assert.Contains(t, plan, key)
	}
	assert.Contains(t, string(b), "\n  ", "file is pretty-printed")
}

func TestFilePlanRepo_DeletePersists(t *testing.T) {
	r, path := newTestFilePlanRepo(t)
	ctx := context.Background()

	date, _ := model.ParseDate("2026-08-30")
	require.NoError(t, r.Put(ctx, testPlan(date)))

	removed, err := r.Delete(ctx, date)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Delete(ctx, date)
	require.NoError(t, err)
	assert.False(t, removed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(b))
}

func TestFilePlanRepo_CorruptFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day_plans.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r, err := NewFileRepo(path, config.LoadDegrade, logging.Discard())
	require.NoError(t, err)

	date, _ := model.ParseDate("2026-08-30")
	_, ok, err := r.Get(context.Background(), date)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilePlanRepo_NullFileStartsEmpty(t *testing.T) {
	for _, policy := range []config.LoadPolicy{config.LoadDegrade, config.LoadFail} {
		t.Run(string(policy), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "day_plans.json")
			require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

			r, err := NewFileRepo(path, policy, logging.Discard())
			require.NoError(t, err)

			date, _ := model.ParseDate("2026-08-30")
			_, ok, err := r.Get(context.Background(), date)
			require.NoError(t, err)
			assert.False(t, ok)

			// The store must be writable from this state.
			require.NoError(t, r.Put(context.Background(), testPlan(date)))
			_, ok, err = r.Get(context.Background(), date)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestFilePlanRepo_CorruptFileFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day_plans.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileRepo(path, config.LoadFail, logging.Discard())
	var pe *model.PersistenceError
	require.Error(t, err)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "load", pe.Op)
}
