/*
Package config loads server configuration from the environment.

PURPOSE:
  All runtime knobs come from environment variables with sensible
  defaults, so the same binary runs in dev (sqlite file) and in tests
  (":memory:"). A .env file is loaded by main before Process runs.

SEE ALSO:
  - cmd/server/main.go: flag overrides and wiring
*/
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"leave-engine"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"leave.db"`
	}

	Server struct {
		ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
		IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Leave struct {
		// Months of tenure before an employee starts earning credits.
		EligibilityMonths int `envconfig:"LEAVE_ELIGIBILITY_MONTHS" default:"6"`
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
