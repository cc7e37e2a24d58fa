package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SchemaVersion = "1.0"

	OnParseErrorFail = "fail"
	OnParseErrorSkip = "skip"
)

var allowedCategories = map[string]bool{
	"sast":      true,
	"sca":       true,
	"container": true,
	"dast":      true,
	"secrets":   true,
	"iac":       true,
	"coverage":  true,
}

var allowedSeverities = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

type Policy struct {
	SchemaVersion string   `json:"schema_version"`
	PolicyID      string   `json:"policy_id"`
	PolicyName    string   `json:"policy_name"`
	Settings      Settings `json:"settings"`
	Rules         []Rule   `json:"rules"`
}

type Settings struct {
	OnParseError string `json:"on_parse_error"`
}

// Rule constrains one scanner category. MaxCount and MinCVSS are pointers so
// an absent key is distinguishable from an explicit zero.
type Rule struct {
	ID                string   `json:"id"`
	Category          string   `json:"category"`
	SeverityThreshold string   `json:"severity_threshold,omitempty"`
	MaxCount          *int     `json:"max_count,omitempty"`
	MinCVSS           *float64 `json:"min_cvss,omitempty"`
}

// Error reports a structurally or semantically invalid policy file.
type Error struct {
	Path     string
	Problems []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("policy validation failed for ")
	b.WriteString(e.Path)
	for _, p := range e.Problems {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}

// Load reads, schema-checks and validates a policy YAML file. The returned
// hash is the sha256 of the raw file bytes, used for input digests.
func Load(path string) (Policy, string, error) {
	hash, payload, err := fileSHA256(path)
	if err != nil {
		return Policy{}, "", fmt.Errorf("read policy: %w", err)
	}
	pol, err := parse(path, payload)
	return pol, hash, err
}

func parse(path string, payload []byte) (Policy, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(payload, &root); err != nil {
		return Policy{}, &Error{Path: path, Problems: []string{err.Error()}}
	}
	schemaErrs := validatePolicyDocument(&root)
	if len(schemaErrs) > 0 {
		return Policy{}, newError(path, schemaErrs)
	}

	normalized := yamlNodeToValue(root.Content[0])
	j, err := json.Marshal(normalized)
	if err != nil {
		return Policy{}, &Error{Path: path, Problems: []string{"normalize yaml: " + err.Error()}}
	}
	var pol Policy
	if err := json.Unmarshal(j, &pol); err != nil {
		return Policy{}, &Error{Path: path, Problems: []string{"decode yaml: " + err.Error()}}
	}

	applyDefaults(&pol)
	if problems := validate(pol); len(problems) > 0 {
		return Policy{}, &Error{Path: path, Problems: problems}
	}
	return pol, nil
}

func applyDefaults(pol *Policy) {
	pol.SchemaVersion = strings.TrimSpace(pol.SchemaVersion)
	pol.Settings.OnParseError = strings.ToLower(strings.TrimSpace(pol.Settings.OnParseError))
	if pol.Settings.OnParseError == "" {
		pol.Settings.OnParseError = OnParseErrorFail
	}
	for i := range pol.Rules {
		r := &pol.Rules[i]
		r.Category = strings.ToLower(strings.TrimSpace(r.Category))
		r.SeverityThreshold = strings.ToLower(strings.TrimSpace(r.SeverityThreshold))
		if strings.TrimSpace(r.ID) == "" {
			r.ID = r.Category + "-rule-" + strconv.Itoa(i+1)
		}
	}
}

func validate(pol Policy) []string {
	var problems []string
	if pol.SchemaVersion != SchemaVersion {
		problems = append(problems, fmt.Sprintf("schema_version: unsupported value %q, expected %q", pol.SchemaVersion, SchemaVersion))
	}
	switch pol.Settings.OnParseError {
	case OnParseErrorFail, OnParseErrorSkip:
	default:
		problems = append(problems, "settings.on_parse_error: must be one of: fail, skip")
	}
	seen := map[string]int{}
	for i, r := range pol.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if !allowedCategories[r.Category] {
			problems = append(problems, fmt.Sprintf("%s.category: unsupported value %q", field, r.Category))
		}
		if r.SeverityThreshold != "" && !allowedSeverities[r.SeverityThreshold] {
			problems = append(problems, field+".severity_threshold: must be one of: low, medium, high, critical")
		}
		if r.MaxCount != nil && *r.MaxCount < 0 {
			problems = append(problems, field+".max_count: cannot be negative")
		}
		if r.MinCVSS != nil && (*r.MinCVSS < 0 || *r.MinCVSS > 10) {
			problems = append(problems, field+".min_cvss: must be in range 0.0..10.0")
		}
		if r.SeverityThreshold == "" && r.MaxCount == nil && r.MinCVSS == nil {
			problems = append(problems, field+": at least one of severity_threshold, max_count, min_cvss is required")
		}
		if prev, ok := seen[r.ID]; ok {
			problems = append(problems, fmt.Sprintf("%s.id: duplicate id %q (already used by rules[%d])", field, r.ID, prev))
		} else {
			seen[r.ID] = i
		}
	}
	sort.Strings(problems)
	return problems
}

func fileSHA256(path string) (string, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), b, nil
}
