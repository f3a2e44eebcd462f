package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		InputDir:  "/data/in",
		OutputDir: "/data/out",
		BaseURL:   "https://backend.example.com/api",
		ResendURL: "https://resend.example.com",
		AuthUser:  "ops",
		AuthPass:  "secret",
	}
}

func TestLoad_EnvFallbacks(t *testing.T) {
	t.Setenv(EnvAuthUser, "env-user")
	t.Setenv(EnvAuthPass, "env-pass")
	t.Setenv(EnvBaseURL, "https://env.example.com")
	t.Setenv(EnvResendURL, "https://env-resend.example.com")

	cfg := Load(Config{})

	assert.Equal(t, "env-user", cfg.AuthUser)
	assert.Equal(t, "env-pass", cfg.AuthPass)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "https://env-resend.example.com", cfg.ResendURL)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv(EnvAuthUser, "env-user")
	t.Setenv(EnvBaseURL, "https://env.example.com")

	cfg := Load(Config{AuthUser: "flag-user", BaseURL: "https://flag.example.com"})

	assert.Equal(t, "flag-user", cfg.AuthUser)
	assert.Equal(t, "https://flag.example.com", cfg.BaseURL)
}

func TestLoad_NormalizesTunables(t *testing.T) {
	cfg := Load(Config{MaxWorkers: 0, Timeout: 0})
	assert.Equal(t, DefaultMaxWorkers, cfg.MaxWorkers)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	cfg = Load(Config{MaxWorkers: 100000, Timeout: time.Second})
	assert.Equal(t, MaxWorkersCap, cfg.MaxWorkers)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsEveryProblemAtOnce(t *testing.T) {
	cfg := Config{}

	err := cfg.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "input directory")
	assert.Contains(t, err.Error(), "output directory")
	assert.Contains(t, err.Error(), "auth user")
	assert.Contains(t, err.Error(), "auth password")
	assert.Contains(t, err.Error(), "base URL")
}

func TestValidate_ResendURLOptionalWhenNonInteractive(t *testing.T) {
	cfg := validConfig()
	cfg.ResendURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend URL")

	cfg.NoInteractive = true
	require.NoError(t, cfg.Validate())
}
