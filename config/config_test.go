package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	require.Equal(t, 0.9, cfg.Gamma)
	require.Equal(t, 1e-5, cfg.Epsilon)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no model source", func(c *Config) { c.Env = ""; c.ModelFile = "" }},
		{"no policy", func(c *Config) { c.Policy = "" }},
		{"gamma of one", func(c *Config) { c.Gamma = 1 }},
		{"negative gamma", func(c *Config) { c.Gamma = -0.5 }},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"zero max sweeps", func(c *Config) { c.MaxSweeps = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("values override defaults", func(t *testing.T) {
		v := viper.New()
		v.Set("env", "swf")
		v.Set("gamma", 0.99)
		v.Set("workers", 4)

		cfg, err := Load(v)

		require.NoError(t, err)
		require.Equal(t, "swf", cfg.Env)
		require.Equal(t, 0.99, cfg.Gamma)
		require.Equal(t, 4, cfg.Workers)
		require.Equal(t, 1e-5, cfg.Epsilon, "Unset values keep their default")
	})

	t.Run("reads a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policyeval.yaml")
		require.NoError(t, os.WriteFile(path, []byte("env: bsw\npolicy: \"1,1,1\"\nepsilon: 0.001\n"), 0644))
		v := viper.New()
		v.Set("config", path)

		cfg, err := Load(v)

		require.NoError(t, err)
		require.Equal(t, "bsw", cfg.Env)
		require.Equal(t, "1,1,1", cfg.Policy)
		require.Equal(t, 0.001, cfg.Epsilon)
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		v := viper.New()
		v.Set("gamma", 1.5)

		_, err := Load(v)

		require.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		v := viper.New()
		v.Set("config", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := Load(v)

		require.Error(t, err)
	})
}
