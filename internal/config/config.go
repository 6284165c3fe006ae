package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for the config directory
const AppName = "colcut"

// Config holds CLI configuration
type Config struct {
	Delimiter       string `yaml:"delimiter,omitempty" toml:"delimiter,omitempty"`
	OutputDelimiter string `yaml:"output_delimiter,omitempty" toml:"output_delimiter,omitempty"`
	OutputFormat    string `yaml:"output_format,omitempty" toml:"output_format,omitempty"` // text, json, ndjson, yaml, table, pretty
	ErrorFormat     string `yaml:"error_format,omitempty" toml:"error_format,omitempty"`   // auto, text, json, yaml
	Strict          bool   `yaml:"strict,omitempty" toml:"strict,omitempty"`
}

// Env holds settings read from the environment.
type Env struct {
	ConfigPath   string `env:"COLCUT_CONFIG"`
	Delimiter    string `env:"COLCUT_DELIMITER"`
	OutputFormat string `env:"COLCUT_OUTPUT_FORMAT"`
	Strict       *bool  `env:"COLCUT_STRICT"`
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from the given path. A missing file yields an empty
// config. Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// LoadEnv reads COLCUT_* variables. A nil environ reads the process
// environment.
func LoadEnv(environ map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ApplyEnv overlays non-empty environment settings onto c.
func (c *Config) ApplyEnv(e Env) {
	if e.Delimiter != "" {
		c.Delimiter = e.Delimiter
	}
	if strings.TrimSpace(e.OutputFormat) != "" {
		c.OutputFormat = strings.TrimSpace(e.OutputFormat)
	}
	if e.Strict != nil {
		c.Strict = *e.Strict
	}
}

// Save atomically writes config to the given path
func (c *Config) Save(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		data = out
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
