package planning

import (
	"fmt"

	"github.com/kilianp07/loadplan/core/knapsack"
)

// DefaultHistoryLimit bounds the in-memory plan history.
const DefaultHistoryLimit = 100

// Config holds solver tuning used by the Planner.
type Config struct {
	// Scale is the weight granularity of the capacity axis, in kg.
	Scale float64 `json:"scale"`
	// Workers is the number of goroutines filling one table column.
	Workers int `json:"workers"`
	// ReportBound enables the linear relaxation bound on every plan.
	ReportBound bool `json:"report_bound"`
	// HistoryLimit is how many recent plans are kept in memory.
	HistoryLimit int `json:"history_limit"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Scale == 0 {
		c.Scale = knapsack.DefaultScale
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("solver.scale must be positive, got %v", c.Scale)
	}
	if c.Workers < 1 {
		return fmt.Errorf("solver.workers must be at least 1, got %d", c.Workers)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("solver.history_limit must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}
