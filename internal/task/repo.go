// Package task owns the task collection: creation, lookup, filtered
// listing, partial updates, deletion, and the aggregate summary.
package task

import (
	"context"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

// Draft carries the caller-supplied fields for a new task. Priority zero
// means "use the default".
type Draft struct {
	Title         string
	Description   *string
	Priority      int
	EstimateHours *float64
	DueDate       *string
}

// Patch is a partial update.
// nil pointer => no change
// empty string on Description/DueDate => clear (set to null)
type Patch struct {
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Status        *model.Status `json:"status,omitempty"`
	Priority      *int          `json:"priority,omitempty"`
	EstimateHours *float64      `json:"estimate_hours,omitempty"`
	DueDate       *string       `json:"due_date,omitempty"`
}

// Filter narrows List results. The zero value matches every task. Present
// dimensions are ANDed together.
type Filter struct {
	Status      []model.Status
	MinPriority *int
	MaxPriority *int
	HasDueDate  *bool
}

type Repo interface {
	Create(ctx context.Context, d Draft) (model.Task, error)
	Get(ctx context.Context, id model.TaskID) (model.Task, error)
	Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error)
	Delete(ctx context.Context, id model.TaskID) (bool, error)
	List(ctx context.Context, f Filter) ([]model.Task, error)
	Summary(ctx context.Context) (model.TaskSummary, error)
}

func newID() model.TaskID {
	return model.TaskID(uuid.NewString())
}

func validateTitle(title string) error {
	if title == "" {
		return model.Invalid("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > model.MaxTitleLen {
		return model.Invalid("title", "must be at most %d characters", model.MaxTitleLen)
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > model.MaxDescriptionLen {
		return model.Invalid("description", "must be at most %d characters", model.MaxDescriptionLen)
	}
	return nil
}

func validatePriority(p int) error {
	if p < model.MinPriority || p > model.MaxPriority {
		return model.Invalid("priority", "must be between %d and %d", model.MinPriority, model.MaxPriority)
	}
	return nil
}

func validateEstimate(h float64) error {
	if h <= 0 {
		return model.Invalid("estimate_hours", "must be positive")
	}
	return nil
}

// newTask validates a draft and builds the stored record. Timestamps come
// from the repo so created_at and updated_at start identical.
func newTask(d Draft) (model.Task, error) {
	if err := validateTitle(d.Title); err != nil {
		return model.Task{}, err
	}
	if d.Description != nil {
		if err := validateDescription(*d.Description); err != nil {
			return model.Task{}, err
		}
	}
	priority := d.Priority
	if priority == 0 {
		priority = model.DefaultPriority
	}
	if err := validatePriority(priority); err != nil {
		return model.Task{}, err
	}
	if d.EstimateHours != nil {
		if err := validateEstimate(*d.EstimateHours); err != nil {
			return model.Task{}, err
		}
	}
	var due *model.Date
	if d.DueDate != nil {
		parsed, err := model.ParseDate(*d.DueDate)
		if err != nil {
			return model.Task{}, model.Invalid("due_date", "%q is not a YYYY-MM-DD date", *d.DueDate)
		}
		due = &parsed
	}

	return model.Task{
		ID:            newID(),
		Title:         d.Title,
		Description:   d.Description,
		Status:        model.StatusPending,
		Priority:      priority,
		EstimateHours: d.EstimateHours,
		DueDate:       due,
	}, nil
}

// applyPatch applies the present fields of p to t. It works on a copy held
// by the caller, so a validation error leaves the stored task untouched.
func applyPatch(t *model.Task, p Patch) error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil && *p.Description != "" {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return model.Invalid("status", "unknown status %q", *p.Status)
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.EstimateHours != nil {
		if err := validateEstimate(*p.EstimateHours); err != nil {
			return err
		}
	}
	var due *model.Date
	if p.DueDate != nil && *p.DueDate != "" {
		parsed, err := model.ParseDate(*p.DueDate)
		if err != nil {
			return model.Invalid("due_date", "%q is not a YYYY-MM-DD date", *p.DueDate)
		}
		due = &parsed
	}

	if p.Title != nil {
		t.Title = *p.Title
	}

	// pointer string field with "empty clears" semantics
	if p.Description != nil {
		if *p.Description == "" {
			t.Description = nil
		} else {
			t.Description = p.Description
		}
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			t.DueDate = due
		}
	}

	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EstimateHours != nil {
		t.EstimateHours = p.EstimateHours
	}
	return nil
}

func (f Filter) matches(t model.Task) bool {
	if len(f.Status) > 0 {
		ok := false
		for _, s := range f.Status {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.MinPriority != nil && t.Priority < *f.MinPriority {
		return false
	}
	if f.MaxPriority != nil && t.Priority > *f.MaxPriority {
		return false
	}
	if f.HasDueDate != nil && (t.DueDate != nil) != *f.HasDueDate {
		return false
	}
	return true
}

// sortTasks orders highest priority first, newest-created first within a
// priority.
func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

func summarize(tasks []model.Task) model.TaskSummary {
	s := model.TaskSummary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = roundRate(float64(s.Completed) / float64(s.Total) * 100)
	}
	return s
}

// roundRate rounds a percentage to one decimal place.
func roundRate(v float64) float64 {
	return math.Round(v*10) / 10
}
