package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keycmd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Repeat.DefaultMultiplier)
	assert.Equal(t, 10000, cfg.Repeat.MaxCount)
	assert.Equal(t, "Ctrl+G", cfg.CancelKey().String())
	assert.Equal(t, 4, cfg.Keys.MaxSequence)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[repeat]
default_multiplier = 3
cancel_key = "Escape"

[log]
level = "debug"
`)
	t.Setenv("KEYCMD_REPEAT_MAX_COUNT", "500")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Repeat.DefaultMultiplier)
	assert.Equal(t, 500, cfg.Repeat.MaxCount)
	assert.Equal(t, "Escape", cfg.CancelKey().String())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Keys.MaxSequence, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Repeat, cfg.Repeat)
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, "[repeat\nmax_count = 1\n")
	_, err := Load(path)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.Positive(t, pe.Line)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KEYCMD_REPEAT_DEFAULT_MULTIPLIER": "8",
		"KEYCMD_SCRIPTS_DIR":               "/opt/scripts",
		"KEYCMD_LOG_FILE":                  "/tmp/keycmd.log",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 8, cfg.Repeat.DefaultMultiplier)
	assert.Equal(t, "/opt/scripts", cfg.Scripts.Dir)
	assert.Equal(t, "/tmp/keycmd.log", cfg.Log.File)

	env["KEYCMD_KEYS_MAX_SEQUENCE"] = "many"
	assert.ErrorIs(t, cfg.ApplyEnv(lookup), ErrInvalidValue)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"multiplier below two", func(c *Config) { c.Repeat.DefaultMultiplier = 1 }},
		{"zero max count", func(c *Config) { c.Repeat.MaxCount = 0 }},
		{"bad cancel key", func(c *Config) { c.Repeat.CancelKey = "Hyper+Q" }},
		{"zero max sequence", func(c *Config) { c.Keys.MaxSequence = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrValidationFailed)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keycmd.toml")
	cfg := Default()
	cfg.Repeat.MaxCount = 99
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
