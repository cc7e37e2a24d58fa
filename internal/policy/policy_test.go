package policy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePolicyFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidPolicy(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `schema_version: "1.0"
policy_id: release-gate
policy_name: Release gate
settings:
  on_parse_error: skip
rules:
  - id: no-critical-sast
    category: sast
    severity_threshold: critical
    max_count: 0
  - category: sca
    min_cvss: 9.0
  - category: container
    severity_threshold: HIGH
`)
	pol, hash, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if hash == "" {
		t.Fatal("expected file hash")
	}
	if pol.Settings.OnParseError != OnParseErrorSkip {
		t.Fatalf("unexpected on_parse_error: %s", pol.Settings.OnParseError)
	}
	if len(pol.Rules) != 3 {
		t.Fatalf("expected three rules, got %d", len(pol.Rules))
	}
	if pol.Rules[0].ID != "no-critical-sast" {
		t.Fatalf("unexpected rule id: %s", pol.Rules[0].ID)
	}
	if pol.Rules[0].MaxCount == nil || *pol.Rules[0].MaxCount != 0 {
		t.Fatalf("max_count 0 must stay distinguishable from unset: %+v", pol.Rules[0].MaxCount)
	}
	if pol.Rules[1].ID != "sca-rule-2" {
		t.Fatalf("expected synthesized id, got %s", pol.Rules[1].ID)
	}
	if pol.Rules[1].MinCVSS == nil || *pol.Rules[1].MinCVSS != 9.0 {
		t.Fatalf("unexpected min_cvss: %+v", pol.Rules[1].MinCVSS)
	}
	if pol.Rules[2].SeverityThreshold != "high" {
		t.Fatalf("severity threshold should normalize to lowercase, got %s", pol.Rules[2].SeverityThreshold)
	}
	if pol.Rules[2].MaxCount != nil {
		t.Fatal("unset max_count must stay nil")
	}
}

func TestLoadDefaultsOnParseErrorToFail(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `schema_version: "1.0"
rules:
  - category: secrets
    max_count: 0
`)
	pol, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if pol.Settings.OnParseError != OnParseErrorFail {
		t.Fatalf("expected default fail, got %s", pol.Settings.OnParseError)
	}
}

func TestLoadRejectsUnknownFieldWithLineNumber(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `schema_version: "1.0"
rules:
  - category: sast
    severity_threshold: high
    severity: high
`)
	_, _, err := Load(path)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *policy.Error, got %v", err)
	}
	if len(perr.Problems) != 1 {
		t.Fatalf("expected one problem, got %v", perr.Problems)
	}
	if !strings.Contains(perr.Problems[0], "line 5") || !strings.Contains(perr.Problems[0], "unknown field") {
		t.Fatalf("unexpected problem: %s", perr.Problems[0])
	}
}

func TestLoadRejectsDuplicateKey(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `schema_version: "1.0"
rules:
  - category: sast
    max_count: 1
    max_count: 2
`)
	_, _, err := Load(path)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *policy.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate key (already defined at line 4)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `policy_id: incomplete
`)
	_, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "policy.schema_version") || !strings.Contains(msg, "missing required field") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg, "policy.rules") {
		t.Fatalf("rules should be required: %v", err)
	}
}

func TestLoadRejectsSemanticErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "negative max_count",
			body: "rules:\n  - category: sast\n    max_count: -1\n",
			want: "max_count: cannot be negative",
		},
		{
			name: "min_cvss above range",
			body: "rules:\n  - category: sca\n    min_cvss: 10.1\n",
			want: "min_cvss: must be in range 0.0..10.0",
		},
		{
			name: "rule without constraints",
			body: "rules:\n  - category: dast\n",
			want: "at least one of severity_threshold, max_count, min_cvss is required",
		},
		{
			name: "unsupported category",
			body: "rules:\n  - category: fuzzing\n    max_count: 0\n",
			want: `category: unsupported value "fuzzing"`,
		},
		{
			name: "unsupported severity threshold",
			body: "rules:\n  - category: sast\n    severity_threshold: blocker\n",
			want: "severity_threshold: must be one of: low, medium, high, critical",
		},
		{
			name: "unsupported schema version",
			body: "rules:\n  - category: sast\n    max_count: 0\n",
			want: "schema_version: unsupported value",
		},
		{
			name: "invalid on_parse_error",
			body: "settings:\n  on_parse_error: ignore\nrules:\n  - category: sast\n    max_count: 0\n",
			want: "on_parse_error: must be one of: fail, skip",
		},
		{
			name: "duplicate rule ids",
			body: "rules:\n  - id: dup\n    category: sast\n    max_count: 0\n  - id: dup\n    category: sca\n    max_count: 0\n",
			want: `duplicate id "dup"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			if tc.name != "unsupported schema version" {
				body = "schema_version: \"1.0\"\n" + body
			} else {
				body = "schema_version: \"2.0\"\n" + body
			}
			path := writePolicyFile(t, t.TempDir(), body)
			_, _, err := Load(path)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *policy.Error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadPreservesRuleOrder(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), `schema_version: "1.0"
rules:
  - category: iac
    max_count: 5
  - category: sast
    severity_threshold: high
  - category: coverage
    max_count: 0
`)
	pol, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"iac", "sast", "coverage"}
	for i, category := range want {
		if pol.Rules[i].Category != category {
			t.Fatalf("rule %d: expected category %s, got %s", i, category, pol.Rules[i].Category)
		}
	}
}

func TestLoadMissingFileIsNotPolicyError(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected read error")
	}
	var perr *Error
	if errors.As(err, &perr) {
		t.Fatal("read failures must not be reported as policy validation errors")
	}
}

func TestWriteStarterProducesLoadablePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security-gate.yaml")
	if err := WriteStarter(path); err != nil {
		t.Fatal(err)
	}
	pol, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pol.Rules) == 0 {
		t.Fatal("starter policy should carry rules")
	}
	if err := WriteStarter(path); err == nil {
		t.Fatal("expected refusal to overwrite")
	} else if !strings.Contains(err.Error(), "refusing to overwrite") {
		t.Fatalf("unexpected error: %v", err)
	}
}
