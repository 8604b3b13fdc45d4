package plan

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

// FileRepo persists plans as a pretty-printed JSON object keyed by date,
// rewritten in full on every mutation. Unlike the task file, the plan file
// is only written once there is something to write. Map keys marshal
// through model.Date's text form, so the file stays sorted by date.
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	policy config.LoadPolicy
	log    *log.Logger
	plans  map[model.Date]model.DayPlan
}

func NewFileRepo(path string, policy config.LoadPolicy, logger *log.Logger) (*FileRepo, error) {
	if logger == nil {
		logger = log.Default()
	}
	if policy == "" {
		policy = config.LoadDegrade
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &model.PersistenceError{Op: "mkdir", Path: path, Err: err}
	}
	r := &FileRepo{
		path:   path,
		policy: policy,
		log:    logger,
		plans:  map[model.Date]model.DayPlan{},
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
			return nil
		}
		return &model.PersistenceError{Op: "load", Path: r.path, Err: err}
	}

	loaded := map[model.Date]model.DayPlan{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		if r.policy == config.LoadFail {
			return &model.PersistenceError{Op: "load", Path: r.path, Err: err}
		}
		r.log.Warn("plan file is unreadable, starting with empty plans",
			"path", r.path, "err", err)
		r.plans = map[model.Date]model.DayPlan{}
		return nil
	}
	if loaded == nil {
		// A literal JSON null unmarshals into a nil map without error.
		loaded = map[model.Date]model.DayPlan{}
	}
	r.plans = loaded
	return nil
}

func (r *FileRepo) saveLocked() {
	b, err := json.MarshalIndent(r.plans, "", "  ")
	if err == nil {
		err = os.WriteFile(r.path, b, 0o644)
	}
	if err != nil {
		// In-memory state stands; disk catches up on the next good save.
		r.log.Error("save plans", "path", r.path, "err", err)
	}
}

func (r *FileRepo) Get(ctx context.Context, date model.Date) (model.DayPlan, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[date]
	if ok {
		normalizePlan(&p)
	}
	return p, ok, nil
}

func (r *FileRepo) Put(ctx context.Context, p model.DayPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalizePlan(&p)
	r.plans[p.Date] = p
	r.saveLocked()
	return nil
}

func (r *FileRepo) Delete(ctx context.Context, date model.Date) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[date]; !ok {
		return false, nil
	}
	delete(r.plans, date)
	r.saveLocked()
	return true, nil
}

func (r *FileRepo) Range(ctx context.Context, from, to model.Date) ([]model.DayPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.DayPlan{}
	for date, p := range r.plans {
		if date.Before(from) || to.Before(date) {
			continue
		}
		normalizePlan(&p)
		out = append(out, p)
	}
	sortPlansDesc(out)
	return out, nil
}
