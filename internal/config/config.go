package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Databases Databases `yaml:"databases"`
	Analysis  Analysis  `yaml:"analysis"`
}

type Databases struct {
	Postgres string `yaml:"postgres"`
	MySQL    string `yaml:"mysql"`
	Mongo    string `yaml:"mongo"`
	SQLite   string `yaml:"sqlite"`
}

type Analysis struct {
	TestName    string  `yaml:"test_name"`
	InsertCount uint    `yaml:"insert_count"`
	SelectCount uint    `yaml:"select_count"`
	UpdateCount uint    `yaml:"update_count"`
	DeleteCount uint    `yaml:"delete_count"`
	Threads     Threads `yaml:"threads"`
	WarmUp      bool    `yaml:"warm_up"`

	ReentrancyElements uint   `yaml:"reentrancy_elements"`
	PollInterval       string `yaml:"poll_interval"`
}

// Threads holds the worker count per operation kind. Zero skips the kind.
type Threads struct {
	Insert int `yaml:"insert"`
	Select int `yaml:"select"`
	Update int `yaml:"update"`
	Delete int `yaml:"delete"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Databases: Databases{
			SQLite: ":memory:",
		},
		Analysis: Analysis{
			TestName:           "kv",
			InsertCount:        20000,
			SelectCount:        20000,
			UpdateCount:        20000,
			DeleteCount:        20000,
			Threads:            Threads{Insert: 4, Select: 4, Update: 4, Delete: 4},
			WarmUp:             true,
			ReentrancyElements: 10000,
			PollInterval:       "100ms",
		},
	}
}

// LoadConfig reads path over the defaults, so a file only needs the settings
// it changes.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return config, nil
}

func (c *Config) Validate() error {
	threads := map[string]int{
		"insert": c.Analysis.Threads.Insert,
		"select": c.Analysis.Threads.Select,
		"update": c.Analysis.Threads.Update,
		"delete": c.Analysis.Threads.Delete,
	}
	for _, op := range []string{"insert", "select", "update", "delete"} {
		if threads[op] < 0 {
			return errors.Errorf("analysis.threads.%s must not be negative, got %d", op, threads[op])
		}
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	return nil
}

// PollInterval parses analysis.poll_interval. An empty value yields zero,
// which leaves the analysis default in place.
func (c *Config) PollInterval() (time.Duration, error) {
	if c.Analysis.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Analysis.PollInterval)
	if err != nil {
		return 0, errors.Wrap(err, "analysis.poll_interval")
	}
	if d < 0 {
		return 0, errors.Errorf("analysis.poll_interval must not be negative, got %s", d)
	}
	return d, nil
}

// DSN returns the connection string configured for backend.
func (c *Config) DSN(backend string) (string, error) {
	switch backend {
	case "memory":
		return "", nil
	case "sqlite":
		return c.Databases.SQLite, nil
	case "postgres":
		return c.Databases.Postgres, nil
	case "mysql":
		return c.Databases.MySQL, nil
	case "mongo":
		return c.Databases.Mongo, nil
	default:
		return "", errors.Errorf("no DSN setting for database %q", backend)
	}
}
