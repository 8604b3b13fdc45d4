package task

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/logging"
	"github.com/chandralegend/day-planner-ai/internal/model"
)

func newTestFileRepo(t *testing.T) (*FileRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	repo, err := NewFileRepo(path, config.LoadDegrade, logging.Discard(), nil)
	require.NoError(t, err)
	return repo, path
}

func TestFileRepo_CreatesEmptyFileEagerly(t *testing.T) {
	_, path := newTestFileRepo(t)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestFileRepo_RoundTrip(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, Draft{
		Title:         "Write report",
		Description:   strp("quarterly numbers"),
		Priority:      5,
		EstimateHours: floatp(2),
		DueDate:       strp("2026-09-01"),
	})
	require.NoError(t, err)
	b, err := repo.Create(ctx, Draft{Title: "Clean desk", Priority: 1})
	require.NoError(t, err)

	// Simulate a process restart.
	reloaded, err := NewFileRepo(path, config.LoadDegrade, logging.Discard(), nil)
	require.NoError(t, err)

	got, err := reloaded.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	gotA, err := reloaded.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, gotA.Title)
	assert.Equal(t, a.Description, gotA.Description)
	assert.Equal(t, a.Priority, gotA.Priority)
	assert.Equal(t, a.EstimateHours, gotA.EstimateHours)
	assert.Equal(t, a.DueDate, gotA.DueDate)
	assert.True(t, a.CreatedAt.Equal(gotA.CreatedAt))
	assert.True(t, a.UpdatedAt.Equal(gotA.UpdatedAt))
}

func TestFileRepo_PersistedShape(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, Draft{Title: "Write report"})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	// A JSON array of records with the full field set, nulls included.
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{
		"id", "title", "description", "status", "priority",
		"estimate_hours", "due_date", "created_at", "updated_at",
	} {
		_, ok := raw[0][key]
		assert.True(t, ok, "missing field %q", key)
	}
	assert.Contains(t, string(b), "\n  ", "file should be pretty-printed")
}

func TestFileRepo_DeletePersistsOnlyOnRemoval(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, Draft{Title: "x"})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, "no-such-id")
	require.NoError(t, err)
	assert.False(t, removed)
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	removed, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	after, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(after))
}

func TestFileRepo_CorruptFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo, err := NewFileRepo(path, config.LoadDegrade, logging.Discard(), nil)
	require.NoError(t, err)

	got, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileRepo_CorruptFileFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileRepo(path, config.LoadFail, logging.Discard(), nil)
	var pe *model.PersistenceError
	require.Error(t, err)
	assert.True(t, errors.As(err, &pe))
}

func TestFileRepo_SaveFailureKeepsMemoryState(t *testing.T) {
	repo, path := newTestFileRepo(t)
	ctx := context.Background()

	// Turn the file path into a directory so every save fails.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(path, 0o755))

	created, err := repo.Create(ctx, Draft{Title: "survives in memory"})
	require.NoError(t, err, "save failures are logged, not surfaced")

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
