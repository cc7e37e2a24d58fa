package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors (*testing.T).Chdir, which needs Go 1.24; this module must
// also build on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SECURITY_GATE_POLICY", "")
	t.Setenv("SECURITY_GATE_OUT_JSON", "")
	t.Setenv("SECURITY_GATE_OUT_HTML", "")
	t.Setenv("SECURITY_GATE_HTML", "")
	t.Setenv("SECURITY_GATE_DEBUG", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "report.json", cfg.OutJSONPath)
	assert.Equal(t, "report.html", cfg.OutHTMLPath)
	assert.Empty(t, cfg.PolicyPath)
	assert.Empty(t, cfg.ChecksumsPath)
	assert.True(t, cfg.WriteHTML)
	assert.False(t, cfg.Debug)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SECURITY_GATE_POLICY", "policies/prod.yaml")
	t.Setenv("SECURITY_GATE_OUT_JSON", "out/gate.json")
	t.Setenv("SECURITY_GATE_HTML", "false")
	t.Setenv("SECURITY_GATE_DEBUG", "1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "policies/prod.yaml", cfg.PolicyPath)
	assert.Equal(t, "out/gate.json", cfg.OutJSONPath)
	assert.False(t, cfg.WriteHTML)
	assert.True(t, cfg.Debug)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "security-gate.env"), []byte("SECURITY_GATE_POLICY=from-file.yaml\n"), 0o644)
	require.NoError(t, err)
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	// godotenv never overrides a variable that is present, even when empty,
	// so the key must be absent for the file value to land.
	t.Setenv("SECURITY_GATE_POLICY", "sentinel")
	os.Unsetenv("SECURITY_GATE_POLICY")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file.yaml", cfg.PolicyPath)
}

func TestLoadRejectsBadBoolean(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SECURITY_GATE_HTML", "maybe")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SECURITY_GATE_HTML")
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name:   "blank out json",
			config: Config{OutJSONPath: "  ", OutHTMLPath: "report.html"},
			errMsg: "SECURITY_GATE_OUT_JSON",
		},
		{
			name:   "blank out html",
			config: Config{OutJSONPath: "report.json", OutHTMLPath: ""},
			errMsg: "SECURITY_GATE_OUT_HTML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "security-gate.env")

	require.NoError(t, WriteTemplate(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SECURITY_GATE_POLICY")

	err = WriteTemplate(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}
