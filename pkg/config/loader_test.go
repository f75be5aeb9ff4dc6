package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/config"
)

type limiterConfig struct {
	Window      string `env:"TEST_RL_WINDOW" envDefault:"15m"`
	MaxRequests int    `env:"TEST_RL_MAX" envDefault:"100"`
}

type lookupConfig struct {
	DSN     string `env:"TEST_LOOKUP_DSN,required"`
	Timeout int    `env:"TEST_LOOKUP_TIMEOUT" envDefault:"5"`
}

func TestLoad_Defaults(t *testing.T) {
	config.Reset()

	var cfg limiterConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "15m", cfg.Window)
	assert.Equal(t, 100, cfg.MaxRequests)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_RL_WINDOW", "1m")
	t.Setenv("TEST_RL_MAX", "5")

	var cfg limiterConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "1m", cfg.Window)
	assert.Equal(t, 5, cfg.MaxRequests)
}

func TestLoad_CachesPerType(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_RL_MAX", "7")

	var first limiterConfig
	require.NoError(t, config.Load(&first))

	// Env changes after the first load are not observed.
	t.Setenv("TEST_RL_MAX", "900")

	var second limiterConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, 7, second.MaxRequests)
}

func TestLoad_RequiredMissing(t *testing.T) {
	config.Reset()

	var cfg lookupConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsing)
}

func TestLoad_NilTarget(t *testing.T) {
	config.Reset()

	err := config.Load[limiterConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilTarget)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	assert.ErrorIs(t, err, config.ErrEnvFile)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	config.Reset()

	assert.Panics(t, func() {
		var cfg lookupConfig
		config.MustLoad(&cfg)
	})
}
