package config

import "os"

// FromEnv applies environment variable overrides on top of cfg.
// Unset variables leave the corresponding field unchanged.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("PLANNER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PLANNER_BACKEND"); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := os.Getenv("PLANNER_TASKS_FILE"); v != "" {
		cfg.TasksFile = v
	}
	if v := os.Getenv("PLANNER_PLANS_FILE"); v != "" {
		cfg.PlansFile = v
	}
	if v := os.Getenv("PLANNER_SQLITE_FILE"); v != "" {
		cfg.SQLiteFile = v
	}
	if v := os.Getenv("PLANNER_ON_CORRUPT"); v != "" {
		cfg.OnCorrupt = LoadPolicy(v)
	}
	if v := os.Getenv("PLANNER_PLAN_CREATE"); v != "" {
		cfg.PlanCreate = PlanCreatePolicy(v)
	}
	if v := os.Getenv("PLANNER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PLANNER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return cfg
}
