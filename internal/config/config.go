package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/input/key"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEYCMD_"

// Config is the application configuration.
type Config struct {
	Repeat  RepeatConfig  `toml:"repeat"`
	Keys    KeysConfig    `toml:"keys"`
	Prefs   PrefsConfig   `toml:"prefs"`
	Scripts ScriptsConfig `toml:"scripts"`
	Log     LogConfig     `toml:"log"`
}

// RepeatConfig configures the repeat prefix.
type RepeatConfig struct {
	DefaultMultiplier int    `toml:"default_multiplier"`
	MaxCount          int    `toml:"max_count"`
	CancelKey         string `toml:"cancel_key"`
}

// KeysConfig configures key sequence handling.
type KeysConfig struct {
	MaxSequence int `toml:"max_sequence"`
}

// PrefsConfig locates the preference file.
type PrefsConfig struct {
	Path string `toml:"path"`
}

// ScriptsConfig locates user Lua scripts.
type ScriptsConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Dir returns the keycmd configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "keycmd")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		Repeat: RepeatConfig{
			DefaultMultiplier: 4,
			MaxCount:          10000,
			CancelKey:         "Ctrl+G",
		},
		Keys:    KeysConfig{MaxSequence: 4},
		Prefs:   PrefsConfig{Path: filepath.Join(dir, "prefs.toml")},
		Scripts: ScriptsConfig{Dir: filepath.Join(dir, "scripts")},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// envSetting binds an environment variable to a field.
type envSetting struct {
	name string
	set  func(c *Config, v string) error
}

func intSetting(field func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetting(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

var envSettings = []envSetting{
	{"REPEAT_DEFAULT_MULTIPLIER", intSetting(func(c *Config) *int { return &c.Repeat.DefaultMultiplier })},
	{"REPEAT_MAX_COUNT", intSetting(func(c *Config) *int { return &c.Repeat.MaxCount })},
	{"REPEAT_CANCEL_KEY", stringSetting(func(c *Config) *string { return &c.Repeat.CancelKey })},
	{"KEYS_MAX_SEQUENCE", intSetting(func(c *Config) *int { return &c.Keys.MaxSequence })},
	{"PREFS_PATH", stringSetting(func(c *Config) *string { return &c.Prefs.Path })},
	{"SCRIPTS_DIR", stringSetting(func(c *Config) *string { return &c.Scripts.Dir })},
	{"LOG_LEVEL", stringSetting(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FILE", stringSetting(func(c *Config) *string { return &c.Log.File })},
}

// ApplyEnv applies KEYCMD_* overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, s := range envSettings {
		name := EnvPrefix + s.name
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := s.set(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, name, v, err)
		}
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var problems []string
	if c.Repeat.DefaultMultiplier < 2 {
		problems = append(problems, fmt.Sprintf("repeat.default_multiplier must be at least 2, got %d", c.Repeat.DefaultMultiplier))
	}
	if c.Repeat.MaxCount < 1 {
		problems = append(problems, fmt.Sprintf("repeat.max_count must be positive, got %d", c.Repeat.MaxCount))
	}
	if _, err := key.Parse(c.Repeat.CancelKey); err != nil {
		problems = append(problems, fmt.Sprintf("repeat.cancel_key: %v", err))
	}
	if c.Keys.MaxSequence < 1 {
		problems = append(problems, fmt.Sprintf("keys.max_sequence must be positive, got %d", c.Keys.MaxSequence))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

// CancelKey returns the parsed cancel key. Validate guarantees it parses.
func (c *Config) CancelKey() key.Event {
	ev, err := key.Parse(c.Repeat.CancelKey)
	if err != nil {
		return key.MustParse("Ctrl+G")
	}
	return ev
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
