package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/sqlite"
)

func newTestSQLRepo(t *testing.T) *SQLRepo {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	repo, err := NewSQLRepo(db, nil)
	require.NoError(t, err)
	return repo
}

func TestSQLRepo_CRUD(t *testing.T) {
	repo := newTestSQLRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, Draft{
		Title:   "Write report",
		DueDate: strp("2026-09-01"),
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-09-01", got.DueDate.String())

	updated, err := repo.Update(ctx, created.ID, Patch{Status: statusp(model.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)

	removed, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Get(ctx, created.ID)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestSQLRepo_ListAndSummary(t *testing.T) {
	repo := newTestSQLRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, Draft{Title: "low", Priority: 1})
	require.NoError(t, err)
	high, err := repo.Create(ctx, Draft{Title: "high", Priority: 5, DueDate: strp("2026-09-01")})
	require.NoError(t, err)
	_, err = repo.Update(ctx, high.ID, Patch{Status: statusp(model.StatusCompleted)})
	require.NoError(t, err)

	got, err := repo.List(ctx, Filter{MinPriority: intp(4)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, high.ID, got[0].ID)

	got, err = repo.List(ctx, Filter{HasDueDate: boolp(false)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "low", got[0].Title)

	got, err = repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, high.ID, got[0].ID, "priority desc")

	sum, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TaskSummary{
		Total:          2,
		Pending:        1,
		Completed:      1,
		CompletionRate: 50,
	}, sum)
}
