package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/me/gosched/internal/workload"
	"gopkg.in/yaml.v3"
)

// DefaultMaxJobs caps the number of jobs read from one workload.
const DefaultMaxJobs = workload.DefaultMaxJobs

// SimConfig holds configuration for a simulation run and the API server.
// The workload path and the Round-Robin quantum have no defaults; they must
// come from a flag or the config file.
type SimConfig struct {
	WorkloadPath string        `yaml:"workload"`
	Quantum      int           `yaml:"quantum"`
	TimeUnit     time.Duration `yaml:"time_unit"` // Real delay per simulated unit (0 = no pacing)
	PaceIdle     bool          `yaml:"pace_idle"` // Also sleep through idle gaps
	Policies     []string      `yaml:"policies"`
	MaxJobs      int           `yaml:"max_jobs"`
	Stats        bool          `yaml:"stats"`

	Record bool   `yaml:"record"`
	DBPath string `yaml:"db"` // SQLite database path (default ~/.gosched/runs.db, ":memory:" for testing)
	Addr   string `yaml:"addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns sensible defaults.
func Default() SimConfig {
	return SimConfig{
		TimeUnit:  time.Second,
		Policies:  []string{"fcfs", "sjf", "priority", "rr"},
		MaxJobs:   DefaultMaxJobs,
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultMaxBodyBytes limits the size of a posted simulation request.
const DefaultMaxBodyBytes = 4 << 20

// DefaultMaxTotalBurst bounds the summed burst of a posted workload, which
// bounds the number of slices one request can dispatch.
const DefaultMaxTotalBurst = 1_000_000

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Addr          string
	MaxJobs       int   // Cap applied to posted workloads
	MaxBodyBytes  int64 // Request body limit
	MaxTotalBurst int   // Largest summed burst accepted per simulation
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		MaxJobs:       DefaultMaxJobs,
		MaxBodyBytes:  DefaultMaxBodyBytes,
		MaxTotalBurst: DefaultMaxTotalBurst,
	}
}

// Server derives the API server settings.
func (c *SimConfig) Server() ServerConfig {
	sc := DefaultServerConfig()
	if c.Addr != "" {
		sc.Addr = c.Addr
	}
	if c.MaxJobs > 0 {
		sc.MaxJobs = c.MaxJobs
	}
	return sc
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *SimConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks settings shared by every command.
func (c *SimConfig) Validate() error {
	if c.MaxJobs <= 0 {
		return fmt.Errorf("max_jobs must be positive, got %d", c.MaxJobs)
	}
	if c.TimeUnit < 0 {
		return fmt.Errorf("time_unit must not be negative, got %s", c.TimeUnit)
	}
	return nil
}

// ValidateRun checks the settings a simulation run requires.
func (c *SimConfig) ValidateRun() error {
	var errs []error
	if c.WorkloadPath == "" {
		errs = append(errs, errors.New("workload path is required (--workload or 'workload' in config)"))
	}
	if c.Quantum <= 0 {
		errs = append(errs, fmt.Errorf("quantum must be a positive integer (--quantum or 'quantum' in config), got %d", c.Quantum))
	}
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResolveDBPath returns DBPath, defaulting to ~/.gosched/runs.db and creating
// its directory.
func (c *SimConfig) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".gosched")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, "runs.db"), nil
}
