package model

import (
	"time"
)

// TimeSlot is an interval within a day plan, optionally bound to a task.
// Start and end are HH:MM strings; the store checks the format but not
// that end follows start, which is the caller's call to make.
type TimeSlot struct {
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	TaskID    *TaskID `json:"task_id"`
	Notes     *string `json:"notes"`
}

// DayPlan is one calendar date's ordered sequence of time slots.
// Slot order is insertion order and is addressable by position.
type DayPlan struct {
	Date      Date       `json:"date"`
	TimeSlots []TimeSlot `json:"time_slots"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ScheduledSlotCount returns how many slots have a task bound to them.
func (p DayPlan) ScheduledSlotCount() int {
	n := 0
	for _, s := range p.TimeSlots {
		if s.TaskID != nil {
			n++
		}
	}
	return n
}

// DaySummary describes one day's plan at a glance. When no plan exists,
// HasPlan is false and the slot counts are zero but Date is still set.
type DaySummary struct {
	Date             Date    `json:"date"`
	HasPlan          bool    `json:"has_plan"`
	TotalSlots       int     `json:"total_slots"`
	ScheduledSlots   int     `json:"scheduled_slots"`
	UnscheduledSlots int     `json:"unscheduled_slots"`
	Notes            *string `json:"notes,omitempty"`
}
