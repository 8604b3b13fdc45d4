// Package plan owns day plans: one per calendar date, each an ordered
// sequence of time slots optionally bound to tasks.
package plan

import (
	"context"
	"sort"
	"sync"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

// Repo persists day plans keyed by date. Put replaces the whole plan for
// its date; slot-level edits go through the Planner, which rewrites the
// plan as a unit.
type Repo interface {
	Get(ctx context.Context, date model.Date) (model.DayPlan, bool, error)
	Put(ctx context.Context, p model.DayPlan) error
	Delete(ctx context.Context, date model.Date) (bool, error)
	// Range returns the plans with from <= date <= to, newest first.
	Range(ctx context.Context, from, to model.Date) ([]model.DayPlan, error)
}

type MemoryRepo struct {
	mu    sync.RWMutex
	plans map[model.Date]model.DayPlan
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{plans: map[model.Date]model.DayPlan{}}
}

func (r *MemoryRepo) Get(ctx context.Context, date model.Date) (model.DayPlan, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[date]
	if ok {
		normalizePlan(&p)
	}
	return p, ok, nil
}

func (r *MemoryRepo) Put(ctx context.Context, p model.DayPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalizePlan(&p)
	r.plans[p.Date] = p
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, date model.Date) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[date]; !ok {
		return false, nil
	}
	delete(r.plans, date)
	return true, nil
}

func (r *MemoryRepo) Range(ctx context.Context, from, to model.Date) ([]model.DayPlan, error) {
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

func normalizePlan(p *model.DayPlan) {
	if p.TimeSlots == nil {
		p.TimeSlots = []model.TimeSlot{}
	}
}

func sortPlansDesc(plans []model.DayPlan) {
	sort.Slice(plans, func(i, j int) bool {
		return plans[j].Date.Before(plans[i].Date)
	})
}
