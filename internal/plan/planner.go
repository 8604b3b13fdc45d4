package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/task"
)

// TaskDirectory is the read-only slice of the task store the planner needs
// for reference checks and schedule derivation. The planner never mutates
// tasks.
type TaskDirectory interface {
	Get(ctx context.Context, id model.TaskID) (model.Task, error)
	List(ctx context.Context, f task.Filter) ([]model.Task, error)
}

// SlotDraft carries the caller-supplied fields for a new time slot.
type SlotDraft struct {
	StartTime string
	EndTime   string
	TaskID    *model.TaskID
	Notes     *string
}

// Planner coordinates a plan repo with the task directory. Slot-mutating
// operations work on today's plan and create it on demand, so callers never
// pre-create plans.
type Planner struct {
	repo         Repo
	tasks        TaskDirectory
	clock        model.Clock
	createPolicy config.PlanCreatePolicy
}

func NewPlanner(repo Repo, tasks TaskDirectory, clock model.Clock, createPolicy config.PlanCreatePolicy) *Planner {
	if clock == nil {
		clock = model.RealClock{}
	}
	if createPolicy == "" {
		createPolicy = config.PlanCreateOverwrite
	}
	return &Planner{
		repo:         repo,
		tasks:        tasks,
		clock:        clock,
		createPolicy: createPolicy,
	}
}

// Today returns the planner's current calendar date.
func (p *Planner) Today() model.Date {
	return model.Today(p.clock)
}

// CreatePlan creates an empty plan for date. Under the default overwrite
// policy an existing plan for the date is silently replaced; under the
// reject policy the call fails instead.
func (p *Planner) CreatePlan(ctx context.Context, date model.Date, notes *string) (model.DayPlan, error) {
	if date.IsZero() {
		return model.DayPlan{}, model.Invalid("date", "must be set")
	}
	if p.createPolicy == config.PlanCreateReject {
		_, exists, err := p.repo.Get(ctx, date)
		if err != nil {
			return model.DayPlan{}, err
		}
		if exists {
			return model.DayPlan{}, model.Invalid("date", "a plan already exists for %s", date)
		}
	}

	now := p.clock.Now()
	plan := model.DayPlan{
		Date:      date,
		TimeSlots: []model.TimeSlot{},
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.repo.Put(ctx, plan); err != nil {
		return model.DayPlan{}, err
	}
	return plan, nil
}

// CreateTodayPlan creates an empty plan for today.
func (p *Planner) CreateTodayPlan(ctx context.Context, notes *string) (model.DayPlan, error) {
	return p.CreatePlan(ctx, p.Today(), notes)
}

// GetPlan returns the plan for date if one exists.
func (p *Planner) GetPlan(ctx context.Context, date model.Date) (model.DayPlan, bool, error) {
	return p.repo.Get(ctx, date)
}

// GetOrCreateTodayPlan returns today's plan, creating an empty one if the
// date has none yet.
func (p *Planner) GetOrCreateTodayPlan(ctx context.Context) (model.DayPlan, error) {
	today := p.Today()
	plan, ok, err := p.repo.Get(ctx, today)
	if err != nil {
		return model.DayPlan{}, err
	}
	if ok {
		return plan, nil
	}

	now := p.clock.Now()
	plan = model.DayPlan{
		Date:      today,
		TimeSlots: []model.TimeSlot{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.repo.Put(ctx, plan); err != nil {
		return model.DayPlan{}, err
	}
	return plan, nil
}

// AddTimeSlot appends a slot to today's plan. A bound task must resolve in
// the task store; that check runs before the plan is touched, so a bad
// reference leaves nothing created or persisted.
func (p *Planner) AddTimeSlot(ctx context.Context, d SlotDraft) (model.TimeSlot, error) {
	if err := validateClockTime("start_time", d.StartTime); err != nil {
		return model.TimeSlot{}, err
	}
	if err := validateClockTime("end_time", d.EndTime); err != nil {
		return model.TimeSlot{}, err
	}
	if d.TaskID != nil {
		if _, err := p.tasks.Get(ctx, *d.TaskID); err != nil {
			return model.TimeSlot{}, err
		}
	}

	plan, err := p.GetOrCreateTodayPlan(ctx)
	if err != nil {
		return model.TimeSlot{}, err
	}

	slot := model.TimeSlot{
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		TaskID:    d.TaskID,
		Notes:     d.Notes,
	}
	plan.TimeSlots = append(plan.TimeSlots, slot)
	plan.UpdatedAt = p.clock.Now()
	if err := p.repo.Put(ctx, plan); err != nil {
		return model.TimeSlot{}, err
	}
	return slot, nil
}

// AssignTaskToSlot binds a task to the slot at the given position in
// today's plan.
func (p *Planner) AssignTaskToSlot(ctx context.Context, slotIndex int, id model.TaskID) (model.TimeSlot, error) {
	plan, ok, err := p.repo.Get(ctx, p.Today())
	if err != nil {
		return model.TimeSlot{}, err
	}
	if !ok {
		return model.TimeSlot{}, model.NotFound("plan", p.Today().String())
	}
	if slotIndex < 0 || slotIndex >= len(plan.TimeSlots) {
		return model.TimeSlot{}, model.NotFound("slot", fmt.Sprintf("index %d", slotIndex))
	}
	if _, err := p.tasks.Get(ctx, id); err != nil {
		return model.TimeSlot{}, err
	}

	plan.TimeSlots[slotIndex].TaskID = &id
	plan.UpdatedAt = p.clock.Now()
	if err := p.repo.Put(ctx, plan); err != nil {
		return model.TimeSlot{}, err
	}
	return plan.TimeSlots[slotIndex], nil
}

// RemoveTimeSlot removes the slot at the given position in today's plan,
// shifting later slots down one. A missing plan or out-of-bounds index is
// reported as false, not as an error.
func (p *Planner) RemoveTimeSlot(ctx context.Context, slotIndex int) (bool, error) {
	plan, ok, err := p.repo.Get(ctx, p.Today())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if slotIndex < 0 || slotIndex >= len(plan.TimeSlots) {
		return false, nil
	}

	plan.TimeSlots = append(plan.TimeSlots[:slotIndex], plan.TimeSlots[slotIndex+1:]...)
	plan.UpdatedAt = p.clock.Now()
	if err := p.repo.Put(ctx, plan); err != nil {
		return false, err
	}
	return true, nil
}

// ScheduledTasks resolves every bound slot in today's plan against the task
// store, in slot order. Unbound slots and references that no longer resolve
// are skipped; stale references are tolerated, never raised.
func (p *Planner) ScheduledTasks(ctx context.Context) ([]model.Task, error) {
	plan, ok, err := p.repo.Get(ctx, p.Today())
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Task{}, nil
	}

	out := []model.Task{}
	for _, slot := range plan.TimeSlots {
		if slot.TaskID == nil {
			continue
		}
		t, err := p.tasks.Get(ctx, *slot.TaskID)
		if err != nil {
			var nf *model.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UnscheduledTasks returns every task whose id is not bound to a slot in
// today's plan. With no plan, every task is unscheduled.
func (p *Planner) UnscheduledTasks(ctx context.Context) ([]model.Task, error) {
	all, err := p.tasks.List(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}

	scheduled := map[model.TaskID]bool{}
	plan, ok, err := p.repo.Get(ctx, p.Today())
	if err != nil {
		return nil, err
	}
	if ok {
		for _, slot := range plan.TimeSlots {
			if slot.TaskID != nil {
				scheduled[*slot.TaskID] = true
			}
		}
	}

	out := []model.Task{}
	for _, t := range all {
		if !scheduled[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// DaySummary reports today's plan at a glance. With no plan it still
// reports the date, with HasPlan false and zero counts.
func (p *Planner) DaySummary(ctx context.Context) (model.DaySummary, error) {
	today := p.Today()
	plan, ok, err := p.repo.Get(ctx, today)
	if err != nil {
		return model.DaySummary{}, err
	}
	if !ok {
		return model.DaySummary{Date: today}, nil
	}

	scheduled := plan.ScheduledSlotCount()
	return model.DaySummary{
		Date:             plan.Date,
		HasPlan:          true,
		TotalSlots:       len(plan.TimeSlots),
		ScheduledSlots:   scheduled,
		UnscheduledSlots: len(plan.TimeSlots) - scheduled,
		Notes:            plan.Notes,
	}, nil
}

// RecentPlans returns the plans for the last `days` days including today,
// newest first. Days without a plan simply do not appear.
func (p *Planner) RecentPlans(ctx context.Context, days int) ([]model.DayPlan, error) {
	if days <= 0 {
		return nil, model.Invalid("days", "must be positive")
	}
	today := p.Today()
	return p.repo.Range(ctx, today.AddDays(-(days-1)), today)
}

func validateClockTime(field, s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return model.Invalid(field, "%q is not an HH:MM time", s)
	}
	return nil
}
