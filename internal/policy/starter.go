package policy

import (
	"errors"
	"fmt"
	"os"
)

const starterPolicy = `schema_version: "1.0"
policy_id: baseline-v1
policy_name: Baseline delivery gate
settings:
  on_parse_error: fail
rules:
  - id: no-critical-sast
    category: sast
    severity_threshold: critical
    max_count: 0
  - id: block-exploitable-dependencies
    category: sca
    min_cvss: 9.0
  - id: cap-high-container-vulns
    category: container
    severity_threshold: high
    max_count: 10
  - id: no-leaked-secrets
    category: secrets
    severity_threshold: critical
    max_count: 0
`

// WriteStarter writes the baseline policy template. It refuses to overwrite
// an existing file so a tuned policy cannot be clobbered by a rerun.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing policy %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(starterPolicy), 0o644)
}
