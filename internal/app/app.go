// Package app wires the configured backend into a task store, a planner,
// and the action registry. Embedders (an agent runtime, a REPL, whatever
// fronts the stores) call New and talk to the registry.
package app

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/chandralegend/day-planner-ai/internal/config"
	"github.com/chandralegend/day-planner-ai/internal/logging"
	"github.com/chandralegend/day-planner-ai/internal/model"
	"github.com/chandralegend/day-planner-ai/internal/plan"
	"github.com/chandralegend/day-planner-ai/internal/sqlite"
	"github.com/chandralegend/day-planner-ai/internal/task"
	"github.com/chandralegend/day-planner-ai/internal/tools"
)

type App struct {
	Config   config.Config
	Log      *log.Logger
	Tasks    task.Repo
	Planner  *plan.Planner
	Registry *tools.Registry
}

func New(cfg config.Config) (*App, error) {
	logger := logging.New(cfg.Log, nil)

	clock := model.RealClock{}

	var (
		tasks task.Repo
		plans plan.Repo
		err   error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		tasks = task.NewMemoryRepo(clock)
		plans = plan.NewMemoryRepo()
	case config.BackendSQLite:
		db, openErr := sqlite.Open(cfg.SQLitePath())
		if openErr != nil {
			return nil, openErr
		}
		if tasks, err = task.NewSQLRepo(db, clock); err != nil {
			return nil, err
		}
		if plans, err = plan.NewSQLRepo(db); err != nil {
			return nil, err
		}
	case config.BackendFile:
		if tasks, err = task.NewFileRepo(cfg.TasksPath(), cfg.OnCorrupt, logger, clock); err != nil {
			return nil, err
		}
		if plans, err = plan.NewFileRepo(cfg.PlansPath(), cfg.OnCorrupt, logger); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	planner := plan.NewPlanner(plans, tasks, clock, cfg.PlanCreate)
	registry, err := tools.DefaultRegistry(tasks, planner)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Log:      logger,
		Tasks:    tasks,
		Planner:  planner,
		Registry: registry,
	}, nil
}
