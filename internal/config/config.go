package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables consulted when the matching flag is unset
const (
	EnvAuthUser  = "WPP_AUTH_USER"
	EnvAuthPass  = "WPP_AUTH_PASS"
	EnvBaseURL   = "ASAT_BASE_URL"
	EnvResendURL = "ASAT_RESEND_URL"
)

// Defaults for the tunable knobs
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxWorkers = 10
	MaxWorkersCap     = 128
)

// ErrInvalidConfig wraps every pre-run configuration failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the full runtime configuration for one validation run
type Config struct {
	// Paths
	InputDir   string
	OutputDir  string
	OutputName string // Report file name; empty selects a timestamped default

	// Backend
	BaseURL   string
	ResendURL string
	AuthUser  string
	AuthPass  string

	// Execution
	MaxWorkers int
	Timeout    time.Duration

	// Behavior
	Verbose       bool
	NoInteractive bool
}

// Load fills unset credential and endpoint fields from the environment and
// normalizes the tunables. Flags win over environment values.
func Load(cfg Config) Config {
	if cfg.AuthUser == "" {
		cfg.AuthUser = os.Getenv(EnvAuthUser)
	}
	if cfg.AuthPass == "" {
		cfg.AuthPass = os.Getenv(EnvAuthPass)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(EnvBaseURL)
	}
	if cfg.ResendURL == "" {
		cfg.ResendURL = os.Getenv(EnvResendURL)
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.MaxWorkers > MaxWorkersCap {
		cfg.MaxWorkers = MaxWorkersCap
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return cfg
}

// Validate reports every configuration problem at once so the operator
// fixes one invocation, not one flag per attempt. Must pass before any
// order is processed.
func (c *Config) Validate() error {
	var problems []string

	if c.InputDir == "" {
		problems = append(problems, "input directory is required (-input-dir)")
	}
	if c.OutputDir == "" {
		problems = append(problems, "output directory is required (-output-dir)")
	}
	if c.AuthUser == "" {
		problems = append(problems, fmt.Sprintf("auth user missing (-auth-user or %s)", EnvAuthUser))
	}
	if c.AuthPass == "" {
		problems = append(problems, fmt.Sprintf("auth password missing (-auth-pass or %s)", EnvAuthPass))
	}
	if c.BaseURL == "" {
		problems = append(problems, fmt.Sprintf("backend base URL missing (-base-url or %s)", EnvBaseURL))
	}
	if !c.NoInteractive && c.ResendURL == "" {
		problems = append(problems, fmt.Sprintf("resend URL missing (-resend-url or %s); required unless -no-interactive is set", EnvResendURL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}
