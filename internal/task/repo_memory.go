package task

import (
	"context"
	"sync"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

// MemoryRepo keeps the collection in process memory only. It backs tests
// and the memory backend; the file and sqlite repos share its semantics.
type MemoryRepo struct {
	mu    sync.RWMutex
	clock model.Clock
	tasks []model.Task
}

// NewMemoryRepo builds an empty in-memory store. Timestamps come from
// clock; nil falls back to the wall clock.
func NewMemoryRepo(clock model.Clock) *MemoryRepo {
	if clock == nil {
		clock = model.RealClock{}
	}
	return &MemoryRepo{clock: clock, tasks: []model.Task{}}
}

func (r *MemoryRepo) Create(ctx context.Context, d Draft) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := newTask(d)
	if err != nil {
		return model.Task{}, err
	}
	now := r.clock.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, model.NotFound("task", string(id))
}

func (r *MemoryRepo) Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID != id {
			continue
		}
		if err := applyPatch(&t, p); err != nil {
			return model.Task{}, err
		}
		t.UpdatedAt = r.clock.Now()
		r.tasks[i] = t
		return t, nil
	}
	return model.Task{}, model.NotFound("task", string(id))
}

func (r *MemoryRepo) Delete(ctx context.Context, id model.TaskID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

func (r *MemoryRepo) Summary(ctx context.Context) (model.TaskSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return summarize(r.tasks), nil
}
