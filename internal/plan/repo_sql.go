package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chandralegend/day-planner-ai/internal/model"
)

type planRecord struct {
	Date      string `gorm:"primaryKey"`
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (planRecord) TableName() string { return "day_plans" }

type slotRecord struct {
	ID        uint   `gorm:"primaryKey"`
	PlanDate  string `gorm:"index"`
	Position  int
	StartTime string
	EndTime   string
	TaskID    *string
	Notes     *string
}

func (slotRecord) TableName() string { return "time_slots" }

// SQLRepo stores plans in two tables, slots ordered by an explicit position
// column so insertion order survives the round trip.
type SQLRepo struct {
	db *gorm.DB
}

func NewSQLRepo(db *gorm.DB) (*SQLRepo, error) {
	if err := db.AutoMigrate(&planRecord{}, &slotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate plans: %w", err)
	}
	return &SQLRepo{db: db}, nil
}

func (r *SQLRepo) Get(ctx context.Context, date model.Date) (model.DayPlan, bool, error) {
	var rec planRecord
	err := r.db.WithContext(ctx).Where("date = ?", date.String()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DayPlan{}, false, nil
	}
	if err != nil {
		return model.DayPlan{}, false, &model.PersistenceError{Op: "get plan", Path: "day_plans", Err: err}
	}
	p, err := r.assemble(ctx, rec)
	if err != nil {
		return model.DayPlan{}, false, err
	}
	return p, true, nil
}

func (r *SQLRepo) assemble(ctx context.Context, rec planRecord) (model.DayPlan, error) {
	var slots []slotRecord
	err := r.db.WithContext(ctx).
		Where("plan_date = ?", rec.Date).
		Order("position").
		Find(&slots).Error
	if err != nil {
		return model.DayPlan{}, &model.PersistenceError{Op: "get slots", Path: "time_slots", Err: err}
	}

	date, err := model.ParseDate(rec.Date)
	if err != nil {
		return model.DayPlan{}, &model.PersistenceError{Op: "get plan", Path: "day_plans", Err: err}
	}
	p := model.DayPlan{
		Date:      date,
		TimeSlots: make([]model.TimeSlot, len(slots)),
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for i, s := range slots {
		var taskID *model.TaskID
		if s.TaskID != nil {
			id := model.TaskID(*s.TaskID)
			taskID = &id
		}
		p.TimeSlots[i] = model.TimeSlot{
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			TaskID:    taskID,
			Notes:     s.Notes,
		}
	}
	return p, nil
}

func (r *SQLRepo) Put(ctx context.Context, p model.DayPlan) error {
	normalizePlan(&p)
	date := p.Date.String()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := planRecord{
			Date:      date,
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_date = ?", date).Delete(&slotRecord{}).Error; err != nil {
			return err
		}
		for i, s := range p.TimeSlots {
			var taskID *string
			if s.TaskID != nil {
				id := string(*s.TaskID)
				taskID = &id
			}
			slot := slotRecord{
				PlanDate:  date,
				Position:  i,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				TaskID:    taskID,
				Notes:     s.Notes,
			}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &model.PersistenceError{Op: "put plan", Path: "day_plans", Err: err}
	}
	return nil
}

func (r *SQLRepo) Delete(ctx context.Context, date model.Date) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("date = ?", date.String()).Delete(&planRecord{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return tx.Where("plan_date = ?", date.String()).Delete(&slotRecord{}).Error
	})
	if err != nil {
		return false, &model.PersistenceError{Op: "delete plan", Path: "day_plans", Err: err}
	}
	return removed, nil
}

func (r *SQLRepo) Range(ctx context.Context, from, to model.Date) ([]model.DayPlan, error) {
	var recs []planRecord
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.String(), to.String()).
		Order("date DESC").
		Find(&recs).Error
	if err != nil {
		return nil, &model.PersistenceError{Op: "list plans", Path: "day_plans", Err: err}
	}

	out := make([]model.DayPlan, 0, len(recs))
	for _, rec := range recs {
		p, err := r.assemble(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
