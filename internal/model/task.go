package model

import (
	"time"
)

type TaskID string

// Status is the closed set of task states. The store enforces membership
// only; any status may be set from any other.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MinPriority       = 1
	MaxPriority       = 5
	DefaultPriority   = 3
)

// Task is a single unit of work. Optional fields are pointers and marshal
// to JSON null rather than being omitted, so every persisted record carries
// the same field set.
type Task struct {
	ID            TaskID    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Status        Status    `json:"status"`
	Priority      int       `json:"priority"`
	EstimateHours *float64  `json:"estimate_hours"`
	DueDate       *Date     `json:"due_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TaskSummary is the aggregate view over a task collection.
// CompletionRate is a percentage rounded to one decimal place.
type TaskSummary struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	InProgress     int     `json:"in_progress"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}
