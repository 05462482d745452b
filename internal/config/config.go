// Package config loads casegen settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pkg.jsn.cam/casegen/pkg/casegen"
	"pkg.jsn.cam/casegen/pkg/generator"
)

// Config holds all casegen configuration.
type Config struct {
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Generate  GenerateConfig  `yaml:"generate"`
	Output    OutputConfig    `yaml:"output"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ToolchainConfig configures how the reference program is built and run.
type ToolchainConfig struct {
	Compiler       string   `yaml:"compiler"`
	Args           []string `yaml:"args"`
	CompileTimeout string   `yaml:"compile_timeout"`
	ExecTimeout    string   `yaml:"exec_timeout"`
}

// GenerateConfig configures input generation.
type GenerateConfig struct {
	Category string `yaml:"category"`
	// Count of zero uses the category's default.
	Count  int            `yaml:"count"`
	Seed   uint64         `yaml:"seed"`
	Bounds casegen.Bounds `yaml:"bounds"`
}

// OutputConfig configures where suites are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	Zip bool   `yaml:"zip"`
}

// StoreConfig configures the persistent suite store. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultArgs are the g++ flags used when none are configured.
var DefaultArgs = []string{"-std=c++17", "-O2", "-Wall"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Compiler:       "g++",
			Args:           append([]string(nil), DefaultArgs...),
			CompileTimeout: "30s",
			ExecTimeout:    "5s",
		},
		Generate: GenerateConfig{
			Category: string(casegen.CategoryScalar),
			Bounds:   casegen.DefaultBounds(),
		},
		Output: OutputConfig{
			Dir: "test_cases",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CASEGEN_COMPILER"); v != "" {
		c.Toolchain.Compiler = v
	}
	if v := os.Getenv("CASEGEN_COMPILE_ARGS"); v != "" {
		c.Toolchain.Args = strings.Fields(v)
	}
	if v := os.Getenv("CASEGEN_TIMEOUT"); v != "" {
		c.Toolchain.ExecTimeout = v
	}
	if v := os.Getenv("CASEGEN_STORE"); v != "" {
		c.Store.Path = v
	}
}

// ParseTimeout parses a Go duration ("750ms", "2s"). A bare integer is a
// number of seconds, as older scripts passed it.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// GetCompileTimeout returns the compile timeout as a duration.
func (c *Config) GetCompileTimeout() time.Duration {
	d, err := ParseTimeout(c.Toolchain.CompileTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetExecTimeout returns the per-case execution timeout as a duration.
func (c *Config) GetExecTimeout() time.Duration {
	d, err := ParseTimeout(c.Toolchain.ExecTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Request builds the generation request described by the config.
func (c *Config) Request() (casegen.GenerationRequest, error) {
	category, err := casegen.ParseCategory(c.Generate.Category)
	if err != nil {
		return casegen.GenerationRequest{}, err
	}
	count := c.Generate.Count
	if count == 0 {
		g, err := generator.Get(category, c.Generate.Bounds)
		if err != nil {
			return casegen.GenerationRequest{}, err
		}
		count = g.DefaultCount()
	}
	return casegen.GenerationRequest{
		Category: category,
		Count:    count,
		Bounds:   c.Generate.Bounds,
	}, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Toolchain.Compiler == "" {
		return fmt.Errorf("toolchain compiler not configured (set toolchain.compiler or CASEGEN_COMPILER)")
	}

	timeouts := []struct{ name, raw string }{
		{"compile_timeout", c.Toolchain.CompileTimeout},
		{"exec_timeout", c.Toolchain.ExecTimeout},
	}
	for _, tt := range timeouts {
		name, raw := tt.name, tt.raw
		d, err := ParseTimeout(raw)
		if err != nil {
			return fmt.Errorf("invalid toolchain.%s %q: %w", name, raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("toolchain.%s must be positive, got %s", name, d)
		}
	}

	req, err := c.Request()
	if err != nil {
		return err
	}
	return req.Validate()
}
