// Package config holds store configuration: where the backing files live,
// which backend is active, and how the stores react to corrupt data.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend selects the persistence medium behind the store interfaces.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// LoadPolicy decides what a store does when its backing file is unreadable
// or unparseable at load time.
type LoadPolicy string

const (
	// LoadDegrade logs a warning and starts with an empty collection.
	// This favors availability over data-loss visibility; operators should
	// watch for the warning.
	LoadDegrade LoadPolicy = "degrade"
	// LoadFail refuses to start the store.
	LoadFail LoadPolicy = "fail"
)

// PlanCreatePolicy decides what creating a plan does when the date already
// has one.
type PlanCreatePolicy string

const (
	PlanCreateOverwrite PlanCreatePolicy = "overwrite"
	PlanCreateReject    PlanCreatePolicy = "reject"
)

type Config struct {
	DataDir    string           `yaml:"data_dir"`
	Backend    Backend          `yaml:"backend"`
	TasksFile  string           `yaml:"tasks_file"`
	PlansFile  string           `yaml:"plans_file"`
	SQLiteFile string           `yaml:"sqlite_file"`
	OnCorrupt  LoadPolicy       `yaml:"on_corrupt"`
	PlanCreate PlanCreatePolicy `yaml:"plan_create"`
	Log        LogConfig        `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		DataDir:    "data",
		Backend:    BackendFile,
		TasksFile:  "tasks.json",
		PlansFile:  "day_plans.json",
		SQLiteFile: "planner.db",
		OnCorrupt:  LoadDegrade,
		PlanCreate: PlanCreateOverwrite,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.OnCorrupt {
	case LoadDegrade, LoadFail:
	default:
		return fmt.Errorf("unknown on_corrupt policy %q", c.OnCorrupt)
	}
	switch c.PlanCreate {
	case PlanCreateOverwrite, PlanCreateReject:
	default:
		return fmt.Errorf("unknown plan_create policy %q", c.PlanCreate)
	}
	return nil
}

func (c Config) TasksPath() string {
	return filepath.Join(c.DataDir, c.TasksFile)
}

func (c Config) PlansPath() string {
	return filepath.Join(c.DataDir, c.PlansFile)
}

func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, c.SQLiteFile)
}
