package tools

import (
	"context"
	"encoding/json"

	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/plan"
	"github.com/chandralegend/day-planner-ai/internal/task"
)

// DefaultRegistry wires every store operation into a fresh registry.
func DefaultRegistry(tasks task.Repo, planner *plan.Planner) (*Registry, error) {
	r := NewRegistry()
	all := append(taskActions(tasks), planActions(planner)...)
	for _, a := range all {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return model.Invalid("arguments", "decode: %v", err)
	}
	return nil
}

// deleted / removed results keep boolean outcomes self-describing on the
// wire instead of returning a bare true/false.
type deletedResult struct {
	Deleted bool `json:"deleted"`
}

type removedResult struct {
	Removed bool `json:"removed"`
}

type planResult struct {
	Found bool           `json:"found"`
	Plan  *model.DayPlan `json:"plan,omitempty"`
}

func taskActions(repo task.Repo) []*Action {
	return []*Action{
		{
			Name:        "create_task",
			Description: "Create a new task with title, optional description, priority, estimate and due date.",
			Schema: `{
				"type": "object",
				"properties": {
					"title": {"type": "string", "minLength": 1, "maxLength": 200},
					"description": {"type": "string", "maxLength": 1000},
					"priority": {"type": "integer", "minimum": 1, "maximum": 5},
					"estimate_hours": {"type": "number", "exclusiveMinimum": 0},
					"due_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
				},
				"required": ["title"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Title         string   `json:"title"`
					Description   *string  `json:"description"`
					Priority      int      `json:"priority"`
					EstimateHours *float64 `json:"estimate_hours"`
					DueDate       *string  `json:"due_date"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return repo.Create(ctx, task.Draft{
					Title:         in.Title,
					Description:   in.Description,
					Priority:      in.Priority,
					EstimateHours: in.EstimateHours,
					DueDate:       in.DueDate,
				})
			},
		},
		{
			Name:        "get_task",
			Description: "Fetch a single task by id.",
			Schema: `{
				"type": "object",
				"properties": {
					"id": {"type": "string", "minLength": 1}
				},
				"required": ["id"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					ID string `json:"id"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return repo.Get(ctx, model.TaskID(in.ID))
			},
		},
		{
			Name:        "list_tasks",
			Description: "List tasks, optionally filtered by status, priority bounds and due-date presence. Sorted by priority, newest first within a priority.",
			Schema: `{
				"type": "object",
				"properties": {
					"status": {
						"type": "array",
						"items": {"enum": ["pending", "in_progress", "completed"]}
					},
					"min_priority": {"type": "integer", "minimum": 1, "maximum": 5},
					"max_priority": {"type": "integer", "minimum": 1, "maximum": 5},
					"has_due_date": {"type": "boolean"}
				},
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Status      []model.Status `json:"status"`
					MinPriority *int           `json:"min_priority"`
					MaxPriority *int           `json:"max_priority"`
					HasDueDate  *bool          `json:"has_due_date"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return repo.List(ctx, task.Filter{
					Status:      in.Status,
					MinPriority: in.MinPriority,
					MaxPriority: in.MaxPriority,
					HasDueDate:  in.HasDueDate,
				})
			},
		},
		{
			Name:        "update_task",
			Description: "Apply a partial update to a task. Omitted fields stay unchanged; an empty description or due_date clears the field.",
			Schema: `{
				"type": "object",
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"title": {"type": "string"},
					"description": {"type": "string"},
					"status": {"enum": ["pending", "in_progress", "completed"]},
					"priority": {"type": "integer"},
					"estimate_hours": {"type": "number"},
					"due_date": {"type": "string"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					ID string `json:"id"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				var p task.Patch
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return repo.Update(ctx, model.TaskID(in.ID), p)
			},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task by id. Absence is reported, never an error.",
			Schema: `{
				"type": "object",
				"properties": {
					"id": {"type": "string", "minLength": 1}
				},
				"required": ["id"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					ID string `json:"id"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				deleted, err := repo.Delete(ctx, model.TaskID(in.ID))
				if err != nil {
					return nil, err
				}
				return deletedResult{Deleted: deleted}, nil
			},
		},
		{
			Name:        "task_summary",
			Description: "Counts by status plus the completion rate.",
			Schema:      `{"type": "object", "additionalProperties": false}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				return repo.Summary(ctx)
			},
		},
	}
}

func planActions(planner *plan.Planner) []*Action {
	return []*Action{
		{
			Name:        "create_day_plan",
			Description: "Create an empty plan for a date (today when omitted).",
			Schema: `{
				"type": "object",
				"properties": {
					"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
					"notes": {"type": "string"}
				},
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Date  *string `json:"date"`
					Notes *string `json:"notes"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				date := planner.Today()
				if in.Date != nil {
					parsed, err := model.ParseDate(*in.Date)
					if err != nil {
						return nil, model.Invalid("date", "%q is not a YYYY-MM-DD date", *in.Date)
					}
					date = parsed
				}
				return planner.CreatePlan(ctx, date, in.Notes)
			},
		},
		{
			Name:        "get_day_plan",
			Description: "Fetch the plan for a date (today when omitted), reporting whether one exists.",
			Schema: `{
				"type": "object",
				"properties": {
					"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
				},
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Date *string `json:"date"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				date := planner.Today()
				if in.Date != nil {
					parsed, err := model.ParseDate(*in.Date)
					if err != nil {
						return nil, model.Invalid("date", "%q is not a YYYY-MM-DD date", *in.Date)
					}
					date = parsed
				}
				p, ok, err := planner.GetPlan(ctx, date)
				if err != nil {
					return nil, err
				}
				if !ok {
					return planResult{}, nil
				}
				return planResult{Found: true, Plan: &p}, nil
			},
		},
		{
			Name:        "add_time_slot",
			Description: "Append a time slot to today's plan, creating the plan on demand. A bound task must exist.",
			Schema: `{
				"type": "object",
				"properties": {
					"start_time": {"type": "string", "pattern": "^\\d{2}:\\d{2}$"},
					"end_time": {"type": "string", "pattern": "^\\d{2}:\\d{2}$"},
					"task_id": {"type": "string", "minLength": 1},
					"notes": {"type": "string"}
				},
				"required": ["start_time", "end_time"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					StartTime string  `json:"start_time"`
					EndTime   string  `json:"end_time"`
					TaskID    *string `json:"task_id"`
					Notes     *string `json:"notes"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				var taskID *model.TaskID
				if in.TaskID != nil {
					id := model.TaskID(*in.TaskID)
					taskID = &id
				}
				return planner.AddTimeSlot(ctx, plan.SlotDraft{
					StartTime: in.StartTime,
					EndTime:   in.EndTime,
					TaskID:    taskID,
					Notes:     in.Notes,
				})
			},
		},
		{
			Name:        "assign_task_to_slot",
			Description: "Bind a task to a slot position in today's plan.",
			Schema: `{
				"type": "object",
				"properties": {
					"slot_index": {"type": "integer", "minimum": 0},
					"task_id": {"type": "string", "minLength": 1}
				},
				"required": ["slot_index", "task_id"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					SlotIndex int    `json:"slot_index"`
					TaskID    string `json:"task_id"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return planner.AssignTaskToSlot(ctx, in.SlotIndex, model.TaskID(in.TaskID))
			},
		},
		{
			Name:        "remove_time_slot",
			Description: "Remove the slot at a position in today's plan. A missing plan or bad index is reported, not an error.",
			Schema: `{
				"type": "object",
				"properties": {
					"slot_index": {"type": "integer", "minimum": 0}
				},
				"required": ["slot_index"],
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					SlotIndex int `json:"slot_index"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				removed, err := planner.RemoveTimeSlot(ctx, in.SlotIndex)
				if err != nil {
					return nil, err
				}
				return removedResult{Removed: removed}, nil
			},
		},
		{
			Name:        "scheduled_tasks",
			Description: "Tasks bound to today's slots, in slot order.",
			Schema:      `{"type": "object", "additionalProperties": false}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				return planner.ScheduledTasks(ctx)
			},
		},
		{
			Name:        "unscheduled_tasks",
			Description: "Tasks not bound to any slot in today's plan.",
			Schema:      `{"type": "object", "additionalProperties": false}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				return planner.UnscheduledTasks(ctx)
			},
		},
		{
			Name:        "day_summary",
			Description: "Today's plan at a glance: slot counts and notes.",
			Schema:      `{"type": "object", "additionalProperties": false}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				return planner.DaySummary(ctx)
			},
		},
		{
			Name:        "recent_plans",
			Description: "Plans for the last N days including today, newest first.",
			Schema: `{
				"type": "object",
				"properties": {
					"days": {"type": "integer", "minimum": 1, "maximum": 365}
				},
				"additionalProperties": false
			}`,
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Days int `json:"days"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				if in.Days == 0 {
					in.Days = 7
				}
				return planner.RecentPlans(ctx, in.Days)
			},
		},
	}
}
