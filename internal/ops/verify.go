package ops

import (
	"context"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/logging"
	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/plan"
	"github.com/chandralegend/day-planner-ai/internal/task"
)

// Report is the result of a store integrity check.
type Report struct {
	Tasks        model.TaskSummary
	PlanDays     int
	TotalSlots   int
	DanglingRefs int
}

// Verify opens the file-backed stores under cfg with a fail-fast load
// policy, since a corrupt file is exactly what this check exists to
// surface. It reports record counts plus any slot references that no
// longer resolve to a task.
func Verify(ctx context.Context, cfg config.Config) (Report, error) {
	logger := logging.Discard()

	tasks, err := task.NewFileRepo(cfg.TasksPath(), config.LoadFail, logger, nil)
	if err != nil {
		return Report{}, err
	}
	plans, err := plan.NewFileRepo(cfg.PlansPath(), config.LoadFail, logger)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	rep.Tasks, err = tasks.Summary(ctx)
	if err != nil {
		return Report{}, err
	}

	// A wide-open range walks every stored plan.
	all, err := plans.Range(ctx,
		model.Date{Year: 1, Month: 1, Day: 1},
		model.Date{Year: 9999, Month: 12, Day: 31})
	if err != nil {
		return Report{}, err
	}
	rep.PlanDays = len(all)
	for _, p := range all {
		rep.TotalSlots += len(p.TimeSlots)
		for _, slot := range p.TimeSlots {
			if slot.TaskID == nil {
				continue
			}
			if _, err := tasks.Get(ctx, *slot.TaskID); err != nil {
				rep.DanglingRefs++
			}
		}
	}
	return rep, nil
}
