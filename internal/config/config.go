package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries the environment-sourced defaults for the CLI. Flags always
// win over these values.
type Config struct {
	PolicyPath    string
	OutJSONPath   string
	OutHTMLPath   string
	ChecksumsPath string
	RunLogPath    string
	WriteHTML     bool
	Debug         bool
}

// Load reads env files then the process environment. Probed locations, first
// hit wins: ./security-gate.env, ./.env, ~/.config/security-gate/security-gate.env.
func Load() (*Config, error) {
	for _, path := range envPaths() {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg := &Config{
		PolicyPath:    os.Getenv("SECURITY_GATE_POLICY"),
		OutJSONPath:   getEnvOrDefault("SECURITY_GATE_OUT_JSON", "report.json"),
		OutHTMLPath:   getEnvOrDefault("SECURITY_GATE_OUT_HTML", "report.html"),
		ChecksumsPath: os.Getenv("SECURITY_GATE_CHECKSUMS"),
		RunLogPath:    os.Getenv("SECURITY_GATE_RUN_LOG"),
	}

	writeHTML, err := parseBool("SECURITY_GATE_HTML", getEnvOrDefault("SECURITY_GATE_HTML", "true"))
	if err != nil {
		return nil, err
	}
	cfg.WriteHTML = writeHTML

	debug, err := parseBool("SECURITY_GATE_DEBUG", getEnvOrDefault("SECURITY_GATE_DEBUG", "false"))
	if err != nil {
		return nil, err
	}
	cfg.Debug = debug

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := map[string]string{
		"SECURITY_GATE_OUT_JSON": c.OutJSONPath,
		"SECURITY_GATE_OUT_HTML": c.OutHTMLPath,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

func envPaths() []string {
	paths := []string{"security-gate.env", ".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "security-gate", "security-gate.env"))
	}
	return paths
}

const envTemplate = `# security-gate configuration
# Values here become defaults; command-line flags win.

# SECURITY_GATE_POLICY=security-gate.yaml
# SECURITY_GATE_OUT_JSON=report.json
# SECURITY_GATE_OUT_HTML=report.html
# SECURITY_GATE_CHECKSUMS=
# SECURITY_GATE_RUN_LOG=
# SECURITY_GATE_HTML=true
# SECURITY_GATE_DEBUG=false
`

// WriteTemplate writes a commented env file for operators to fill in.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing env file %s", path)
	}
	return os.WriteFile(path, []byte(envTemplate), 0o644)
}

func parseBool(name, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %q", name, value)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
