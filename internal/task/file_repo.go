package task

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/model"
)

// FileRepo persists the collection as a pretty-printed JSON array, rewritten
// in full on every mutation. It offers no cross-process mutual exclusion:
// two processes sharing the file will lose each other's writes (last writer
// wins at the file level).
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	policy config.LoadPolicy
	log    *log.Logger
	clock  model.Clock
	tasks  []model.Task
}

// NewFileRepo loads the task file at path, creating an empty one if it does
// not exist. What happens on a corrupt file depends on policy: LoadDegrade
// warns and starts empty, LoadFail refuses to start. A nil logger falls back
// to the package default, a nil clock to the wall clock.
func NewFileRepo(path string, policy config.LoadPolicy, logger *log.Logger, clock model.Clock) (*FileRepo, error) {
	if logger == nil {
		logger = log.Default()
	}
	if policy == "" {
		policy = config.LoadDegrade
	}
	if clock == nil {
		clock = model.RealClock{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &model.PersistenceError{Op: "mkdir", Path: path, Err: err}
	}
	r := &FileRepo{
		path:   path,
		policy: policy,
		log:    logger,
		clock:  clock,
		tasks:  []model.Task{},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Establish the empty file eagerly so the store's presence on
			// disk is visible from the first run.
			return r.persistLocked()
		}
		return &model.PersistenceError{Op: "load", Path: r.path, Err: err}
	}

	var loaded []model.Task
	if err := json.Unmarshal(b, &loaded); err != nil {
		if r.policy == config.LoadFail {
			return &model.PersistenceError{Op: "load", Path: r.path, Err: err}
		}
		r.log.Warn("task file is unreadable, starting with an empty collection",
			"path", r.path, "err", err)
		r.tasks = []model.Task{}
		return nil
	}
	if loaded == nil {
		loaded = []model.Task{}
	}
	r.tasks = loaded
	return nil
}

func (r *FileRepo) persistLocked() error {
	b, err := json.MarshalIndent(r.tasks, "", "  ")
	if err != nil {
		return &model.PersistenceError{Op: "save", Path: r.path, Err: err}
	}
	if err := os.WriteFile(r.path, b, 0o644); err != nil {
		return &model.PersistenceError{Op: "save", Path: r.path, Err: err}
	}
	return nil
}

// saveLocked persists and logs on failure. The in-memory mutation stands
// either way; disk catches up on the next successful save.
func (r *FileRepo) saveLocked() {
	if err := r.persistLocked(); err != nil {
		r.log.Error("save tasks", "path", r.path, "err", err)
	}
}

func (r *FileRepo) Create(ctx context.Context, d Draft) (model.Task, error) {
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
	r.saveLocked()
	return t, nil
}

func (r *FileRepo) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, model.NotFound("task", string(id))
}

func (r *FileRepo) Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error) {
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
		r.saveLocked()
		return t, nil
	}
	return model.Task{}, model.NotFound("task", string(id))
}

func (r *FileRepo) Delete(ctx context.Context, id model.TaskID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			r.saveLocked()
			return true, nil
		}
	}
	return false, nil
}

func (r *FileRepo) List(ctx context.Context, f Filter) ([]model.Task, error) {
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

func (r *FileRepo) Summary(ctx context.Context) (model.TaskSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return summarize(r.tasks), nil
}
