package gate

import "github.com/devsecops-lab/security-gate/internal/policy"

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
	SeverityUnknown  = "unknown"
)

// severityRank orders the comparable severities. Unknown is deliberately
// absent so it can never satisfy a threshold.
var severityRank = map[string]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

const (
	CategorySAST      = "sast"
	CategorySCA       = "sca"
	CategoryContainer = "container"
	CategoryDAST      = "dast"
	CategorySecrets   = "secrets"
	CategoryIAC       = "iac"
	CategoryCoverage  = "coverage"
)

// parsedCategories are the categories with a report format behind them.
// Coverage is policy-addressable but carries no report, so its rules always
// evaluate against an empty set.
var parsedCategories = []string{
	CategorySAST,
	CategorySCA,
	CategoryContainer,
	CategoryDAST,
	CategorySecrets,
	CategoryIAC,
}

type Config struct {
	PolicyPath      string
	Reports         []ReportInput
	NewFindingsOnly bool
	OutJSONPath     string
	OutHTMLPath     string
	ChecksumsPath   string
	RunLogPath      string
	WriteHTML       bool
	Debug           bool
}

// ReportInput is one scanner report file handed to the gate. Role is either
// "primary" or "baseline".
type ReportInput struct {
	Category string
	Path     string
	Role     string
}

const (
	RolePrimary  = "primary"
	RoleBaseline = "baseline"
)

type Finding struct {
	Source        string   `json:"source"`
	Category      string   `json:"category"`
	Severity      string   `json:"severity"`
	Identifier    string   `json:"identifier"`
	Title         string   `json:"title"`
	CVSSScore     *float64 `json:"cvss_score,omitempty"`
	Location      string   `json:"location,omitempty"`
	SourceFile    string   `json:"source_file"`
	SourceIndex   int      `json:"source_index"`
	BaselineKnown bool     `json:"baseline_known,omitempty"`
}

type RuleEvaluation struct {
	Rule          policy.Rule `json:"rule"`
	MatchingCount int         `json:"matching_count"`
	Violated      bool        `json:"violated"`
}

type Violation struct {
	Rule             policy.Rule `json:"rule"`
	MatchingFindings []Finding   `json:"matching_findings"`
	ActualCount      int         `json:"actual_count"`
}

type Result struct {
	Passed      bool             `json:"passed"`
	Evaluations []RuleEvaluation `json:"rule_evaluations"`
	Violations  []Violation      `json:"violations"`
	Summary     string           `json:"summary"`
}

type InputDigest struct {
	Kind     string `json:"kind"`
	Role     string `json:"role,omitempty"`
	Category string `json:"category,omitempty"`
	Path     string `json:"path"`
	SHA256   string `json:"sha256"`
	ReadOK   bool   `json:"read_ok"`
}

type SkippedSource struct {
	Category string `json:"category"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

type RecommendedStep struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
	Text     string `json:"text"`
}

type Report struct {
	SchemaVersion    string            `json:"schema_version"`
	GeneratedAt      string            `json:"generated_at"`
	RunID            string            `json:"run_id"`
	Inputs           []InputDigest     `json:"inputs"`
	PolicyID         string            `json:"policy_id"`
	PolicyName       string            `json:"policy_name"`
	Passed           bool              `json:"passed"`
	ExitCode         int               `json:"exit_code"`
	Findings         []Finding         `json:"findings"`
	RuleEvaluations  []RuleEvaluation  `json:"rule_evaluations"`
	Violations       []Violation       `json:"violations"`
	SkippedSources   []SkippedSource   `json:"skipped_sources"`
	RecommendedSteps []RecommendedStep `json:"recommended_next_steps"`
	Summary          string            `json:"summary"`
}
