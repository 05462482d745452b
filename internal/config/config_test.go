package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "g++", cfg.Toolchain.Compiler)
	assert.Equal(t, []string{"-std=c++17", "-O2", "-Wall"}, cfg.Toolchain.Args)
	assert.Equal(t, 30*time.Second, cfg.GetCompileTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetExecTimeout())
	assert.Zero(t, cfg.Generate.Count)
	assert.Equal(t, "test_cases", cfg.Output.Dir)
	assert.Equal(t, casegen.DefaultBounds(), cfg.Generate.Bounds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CASEGEN_COMPILER", "")
	t.Setenv("CASEGEN_COMPILE_ARGS", "")
	t.Setenv("CASEGEN_TIMEOUT", "")
	t.Setenv("CASEGEN_STORE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("CASEGEN_COMPILER", "")
	t.Setenv("CASEGEN_TIMEOUT", "")

	path := filepath.Join(t.TempDir(), "casegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
toolchain:
  compiler: clang++
  exec_timeout: 2s
generate:
  category: graph
  count: 10
  bounds:
    max_nodes: 50
    max_edges: 200
output:
  dir: out
  zip: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clang++", cfg.Toolchain.Compiler)
	assert.Equal(t, 2*time.Second, cfg.GetExecTimeout())
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.GetCompileTimeout())
	assert.Equal(t, 50, cfg.Generate.Bounds.MaxNodes)
	assert.Equal(t, 200, cfg.Generate.Bounds.MaxEdges)
	assert.Equal(t, int64(1e9), cfg.Generate.Bounds.MaxValue)
	assert.True(t, cfg.Output.Zip)

	req, err := cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, casegen.CategoryGraph, req.Category)
	assert.Equal(t, 10, req.Count)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toolchain: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CASEGEN_COMPILER", "clang++")
	t.Setenv("CASEGEN_COMPILE_ARGS", "-O3  -std=c++20")
	t.Setenv("CASEGEN_TIMEOUT", "750ms")
	t.Setenv("CASEGEN_STORE", "/tmp/suites.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "clang++", cfg.Toolchain.Compiler)
	assert.Equal(t, []string{"-O3", "-std=c++20"}, cfg.Toolchain.Args)
	assert.Equal(t, 750*time.Millisecond, cfg.GetExecTimeout())
	assert.Equal(t, "/tmp/suites.db", cfg.Store.Path)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("CASEGEN_COMPILER", "")
	t.Setenv("CASEGEN_COMPILE_ARGS", "")
	t.Setenv("CASEGEN_TIMEOUT", "")
	t.Setenv("CASEGEN_STORE", "")

	cfg := DefaultConfig()
	cfg.Generate.Category = "text"
	cfg.Generate.Seed = 7

	path := filepath.Join(t.TempDir(), "nested", "casegen.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRequestUsesCategoryDefaultCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generate.Category = "graph"

	req, err := cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, casegen.CategoryGraph, req.Category)
	assert.Equal(t, 25, req.Count)

	cfg.Generate.Count = 3
	req, err = cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, 3, req.Count)
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5", 5 * time.Second},
		{" 30 ", 30 * time.Second},
		{"750ms", 750 * time.Millisecond},
		{"1m30s", 90 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTimeout("soon")
	assert.Error(t, err)
}

func TestEnvTimeoutInSeconds(t *testing.T) {
	t.Setenv("CASEGEN_TIMEOUT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.GetExecTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown category", func(c *Config) { c.Generate.Category = "matrix" }, casegen.ErrUnknownCategory},
		{"negative count", func(c *Config) { c.Generate.Count = -3 }, casegen.ErrInvalidCount},
		{"negative bound", func(c *Config) { c.Generate.Bounds.MaxSize = -1 }, casegen.ErrNegativeBound},
		{"bad timeout", func(c *Config) { c.Toolchain.ExecTimeout = "soon" }, nil},
		{"zero timeout", func(c *Config) { c.Toolchain.CompileTimeout = "0s" }, nil},
		{"no compiler", func(c *Config) { c.Toolchain.Compiler = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
