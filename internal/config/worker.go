package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/dteedee/medix-scheduling/pkg/worker"
)

// WorkerEnv overrides reminder worker settings from the environment, so a
// deployment can retune the poll loop without shipping a new config file.
type WorkerEnv struct {
	BatchSize        int `envconfig:"REMINDER_BATCH_SIZE" default:"0"`
	PollIntervalSecs int `envconfig:"REMINDER_POLL_INTERVAL_SECONDS" default:"0"`
	RetryAttempts    int `envconfig:"REMINDER_RETRY_ATTEMPTS" default:"0"`
	RetryDelaySecs   int `envconfig:"REMINDER_RETRY_DELAY_SECONDS" default:"0"`
	HealthPort       int `envconfig:"WORKER_HEALTH_PORT" default:"8081"`
}

func LoadWorkerEnv() (*WorkerEnv, error) {
	var env WorkerEnv
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to process worker environment: %w", err)
	}
	return &env, nil
}

// ToProcessorConfig merges file-based reminder settings with environment
// overrides and fills the remaining gaps with defaults.
func (e *WorkerEnv) ToProcessorConfig(base ReminderConfig) worker.ReminderProcessorConfig {
	cfg := worker.ReminderProcessorConfig{
		BatchSize:     base.BatchSize,
		PollInterval:  time.Duration(base.PollIntervalSecs) * time.Second,
		RetryAttempts: base.RetryAttempts,
		RetryDelay:    time.Duration(base.RetryDelaySecs) * time.Second,
	}

	if e.BatchSize > 0 {
		cfg.BatchSize = e.BatchSize
	}
	if e.PollIntervalSecs > 0 {
		cfg.PollInterval = time.Duration(e.PollIntervalSecs) * time.Second
	}
	if e.RetryAttempts > 0 {
		cfg.RetryAttempts = e.RetryAttempts
	}
	if e.RetryDelaySecs > 0 {
		cfg.RetryDelay = time.Duration(e.RetryDelaySecs) * time.Second
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return cfg
}
