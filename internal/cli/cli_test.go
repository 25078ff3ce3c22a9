package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holdings/internal/generator"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t       *testing.T
	Config  string
	DataDir string
}

func newTestEnv(t *testing.T, backend string) *testEnv {
	t.Helper()
	color.NoColor = true
	tempDir := t.TempDir()
	env := &testEnv{
		t:       t,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
	}
	require.NoError(t, os.MkdirAll(env.Config, 0o755))
	content := fmt.Sprintf("backend: %s\ndata_dir: %s\n", backend, env.DataDir)
	require.NoError(t, os.WriteFile(filepath.Join(env.Config, configFileExt), []byte(content), 0o644))
	return env
}

type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.Config}, args...))
	err := root.Execute()
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode(err), Err: err}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	require.NoError(e.t, res.Err, "holdings %v\nstdout: %s\nstderr: %s", args, res.Stdout, res.Stderr)
	return res
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, types.BackendJSON)
	res := env.mustRun("version")
	assert.Contains(t, res.Stdout, "holdings v"+Version)
	assert.Contains(t, res.Stdout, modulePath)
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	dataDir := filepath.Join(dir, "data")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config-dir", configDir, "--data-dir", dataDir, "init"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, defaultConfigYAML, string(data))
	assert.DirExists(t, dataDir)
	assert.Contains(t, out.String(), "backend: delimited")
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	env := newTestEnv(t, types.BackendSQL)
	env.mustRun("init")
	env.mustRun("init")

	data, err := os.ReadFile(filepath.Join(env.Config, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sql")
	assert.FileExists(t, filepath.Join(env.DataDir, "holdings.db"))
}

func TestGenerateShow_AllBackends(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end run over every backend")
	}
	for _, backend := range []string{
		types.BackendDelimited, types.BackendJSON, types.BackendYAML, types.BackendSheet, types.BackendSQL,
	} {
		t.Run(backend, func(t *testing.T) {
			env := newTestEnv(t, backend)
			res := env.mustRun("generate", "--people", "6", "--bicycles", "4", "--laptops", "5", "--seed", "3")
			assert.Contains(t, res.Stdout, "saved 6 people, 4 bicycles, 5 laptops")

			view := parseJSON[showView](t, env.mustRun("show", "--json").Stdout)
			require.Len(t, view.People, 6)
			bicycles, laptops := 0, 0
			for _, p := range view.People {
				bicycles += len(p.Bicycles)
				laptops += len(p.Laptops)
				for _, l := range p.Laptops {
					require.NotNil(t, l.OwnerID)
					assert.Equal(t, p.ID, *l.OwnerID)
				}
			}
			assert.Equal(t, 4, bicycles)
			assert.Equal(t, 5, laptops)
			assert.Empty(t, view.UnownedBicycles)
			assert.Empty(t, view.UnownedLaptops)
		})
	}
}

func TestGenerate_IsDeterministicPerSeed(t *testing.T) {
	env := newTestEnv(t, types.BackendJSON)
	env.mustRun("generate", "--people", "3", "--bicycles", "1", "--laptops", "1", "--seed", "42")
	first := env.mustRun("show", "--json").Stdout

	env.mustRun("generate", "--people", "3", "--bicycles", "1", "--laptops", "1", "--seed", "42")
	assert.Equal(t, first, env.mustRun("show", "--json").Stdout)
}

func TestGenerate_SQLAppend(t *testing.T) {
	env := newTestEnv(t, types.BackendSQL)
	env.mustRun("generate", "--people", "2", "--bicycles", "1", "--laptops", "1", "--id-style", "uuid")
	env.mustRun("generate", "--people", "3", "--bicycles", "1", "--laptops", "1", "--id-style", "uuid", "--append")

	view := parseJSON[showView](t, env.mustRun("show", "--json").Stdout)
	assert.Len(t, view.People, 5)
}

func TestShow_Text(t *testing.T) {
	env := newTestEnv(t, types.BackendYAML)
	env.mustRun("generate", "--people", "2", "--bicycles", "2", "--laptops", "1")

	out := env.mustRun("show").Stdout
	assert.Contains(t, out, "(P-000001)")
	assert.Contains(t, out, "bicycle  ")
	assert.Contains(t, out, "laptop   ")
	assert.NotContains(t, out, "unowned")
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, types.BackendDelimited)
	env.mustRun("generate", "--people", "4", "--bicycles", "3", "--laptops", "8")

	view := parseJSON[statsView](t, env.mustRun("stats", "--json").Stdout)
	assert.Equal(t, 4, view.Summary.People)
	assert.Equal(t, 8, view.Summary.Laptops)
	total := 0
	share := 0.0
	for _, b := range view.Laptops {
		total += b.Count
		share += b.Share
	}
	assert.Equal(t, 8, total)
	assert.InDelta(t, 1.0, share, 1e-9)

	text := env.mustRun("stats").Stdout
	assert.Contains(t, text, "people 4, bicycles 3, laptops 8")
	assert.Contains(t, text, "BRAND")
}

func TestExitCodes(t *testing.T) {
	env := newTestEnv(t, types.BackendJSON)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"show before generate", []string{"show"}, exitUserError},
		{"unknown backend flag", []string{"--backend", "xml", "show"}, exitUserError},
		{"unknown flag", []string{"generate", "--planets", "3"}, exitUserError},
		{"bad age range", []string{"generate", "--min-age", "50", "--max-age", "20"}, exitUserError},
		{"zero people", []string{"generate", "--people", "0"}, exitUserError},
		{"bad log level", []string{"--log-level", "chatty", "version"}, exitUserError},
		{"version", []string{"version"}, exitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.run(tt.args...).ExitCode)
		})
	}
}

func TestExitCode_Classification(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("loading: %w", types.ErrNotFound)))
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("new: %w", generator.ErrInvalidGeneratorConfig)))
	assert.Equal(t, exitUserError, exitCode(userError{errors.New("bad flag")}))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("saving: %w", types.ErrConstraint)))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk full")))
}

func TestConfig_EnvOverridesBackend(t *testing.T) {
	env := newTestEnv(t, types.BackendJSON)
	t.Setenv("HOLDINGS_BACKEND", types.BackendYAML)

	env.mustRun("generate", "--people", "1", "--bicycles", "1", "--laptops", "1")
	assert.FileExists(t, filepath.Join(env.DataDir, "people.yaml"))
	assert.NoFileExists(t, filepath.Join(env.DataDir, "people.json"))
}
