package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

// taskRecord is the sqlite row shape. Optional fields stay nullable so the
// column set mirrors the JSON file layout.
type taskRecord struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	Description   *string
	Status        string `gorm:"index"`
	Priority      int    `gorm:"index"`
	EstimateHours *float64
	DueDate       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (taskRecord) TableName() string { return "tasks" }

// SQLRepo is the sqlite-backed task repository. Same contract as FileRepo,
// different medium.
type SQLRepo struct {
	db    *gorm.DB
	clock model.Clock
}

func NewSQLRepo(db *gorm.DB, clock model.Clock) (*SQLRepo, error) {
	if clock == nil {
		clock = model.RealClock{}
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("migrate tasks: %w", err)
	}
	return &SQLRepo{db: db, clock: clock}, nil
}

func toRecord(t model.Task) taskRecord {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.String()
		due = &s
	}
	return taskRecord{
		ID:            string(t.ID),
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      t.Priority,
		EstimateHours: t.EstimateHours,
		DueDate:       due,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func fromRecord(rec taskRecord) model.Task {
	var due *model.Date
	if rec.DueDate != nil {
		if d, err := model.ParseDate(*rec.DueDate); err == nil {
			due = &d
		}
	}
	return model.Task{
		ID:            model.TaskID(rec.ID),
		Title:         rec.Title,
		Description:   rec.Description,
		Status:        model.Status(rec.Status),
		Priority:      rec.Priority,
		EstimateHours: rec.EstimateHours,
		DueDate:       due,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func (r *SQLRepo) Create(ctx context.Context, d Draft) (model.Task, error) {
	t, err := newTask(d)
	if err != nil {
		return model.Task{}, err
	}
	now := r.clock.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	rec := toRecord(t)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Task{}, &model.PersistenceError{Op: "create task", Path: "tasks", Err: err}
	}
	return t, nil
}

func (r *SQLRepo) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	var rec taskRecord
	err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, model.NotFound("task", string(id))
	}
	if err != nil {
		return model.Task{}, &model.PersistenceError{Op: "get task", Path: "tasks", Err: err}
	}
	return fromRecord(rec), nil
}

func (r *SQLRepo) Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if err := applyPatch(&t, p); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = r.clock.Now()

	rec := toRecord(t)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return model.Task{}, &model.PersistenceError{Op: "update task", Path: "tasks", Err: err}
	}
	return t, nil
}

func (r *SQLRepo) Delete(ctx context.Context, id model.TaskID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&taskRecord{})
	if res.Error != nil {
		return false, &model.PersistenceError{Op: "delete task", Path: "tasks", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

func (r *SQLRepo) List(ctx context.Context, f Filter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&taskRecord{})
	if len(f.Status) > 0 {
		statuses := make([]string, len(f.Status))
		for i, s := range f.Status {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.MinPriority != nil {
		q = q.Where("priority >= ?", *f.MinPriority)
	}
	if f.MaxPriority != nil {
		q = q.Where("priority <= ?", *f.MaxPriority)
	}
	if f.HasDueDate != nil {
		if *f.HasDueDate {
			q = q.Where("due_date IS NOT NULL")
		} else {
			q = q.Where("due_date IS NULL")
		}
	}

	var recs []taskRecord
	if err := q.Order("priority DESC, created_at DESC").Find(&recs).Error; err != nil {
		return nil, &model.PersistenceError{Op: "list tasks", Path: "tasks", Err: err}
	}
	out := make([]model.Task, len(recs))
	for i, rec := range recs {
		out[i] = fromRecord(rec)
	}
	return out, nil
}

func (r *SQLRepo) Summary(ctx context.Context) (model.TaskSummary, error) {
	type row struct {
		Status string
		N      int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&taskRecord{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return model.TaskSummary{}, &model.PersistenceError{Op: "summarize tasks", Path: "tasks", Err: err}
	}

	var s model.TaskSummary
	for _, r := range rows {
		s.Total += r.N
		switch model.Status(r.Status) {
		case model.StatusPending:
			s.Pending = r.N
		case model.StatusInProgress:
			s.InProgress = r.N
		case model.StatusCompleted:
			s.Completed = r.N
		}
	}
	if s.Total > 0 {
		s.CompletionRate = roundRate(float64(s.Completed) / float64(s.Total) * 100)
	}
	return s, nil
}
