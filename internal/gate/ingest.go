package gate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devsecops-lab/security-gate/internal/ingest/bandit"
	"github.com/devsecops-lab/security-gate/internal/ingest/checkov"
	"github.com/devsecops-lab/security-gate/internal/ingest/gitleaks"
	"github.com/devsecops-lab/security-gate/internal/ingest/safety"
	"github.com/devsecops-lab/security-gate/internal/ingest/semgrep"
	"github.com/devsecops-lab/security-gate/internal/ingest/trivy"
	owaspzap "github.com/devsecops-lab/security-gate/internal/ingest/zap"
)

// ParseError reports an unreadable or malformed scanner report. Offset is the
// byte position of the first JSON error when the decoder exposes one.
type ParseError struct {
	Category string
	Path     string
	Offset   int64
	Err      error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse %s report %s: byte %d: %v", e.Category, e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("parse %s report %s: %v", e.Category, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(category, path string, err error) *ParseError {
	return &ParseError{Category: category, Path: path, Offset: jsonErrorOffset(err), Err: err}
}

func jsonErrorOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	return 0
}

// parseReport routes a report payload to the parser for its category and
// converts tool findings into the gate's normalized form.
func parseReport(category, path string, payload []byte) ([]Finding, error) {
	var (
		findings []Finding
		err      error
	)
	switch category {
	case CategorySAST:
		findings, err = parseSAST(path, payload)
	case CategorySCA:
		findings, err = parseSCA(path, payload)
	case CategoryContainer:
		findings, err = parseContainer(path, payload)
	case CategoryDAST:
		findings, err = parseDAST(path, payload)
	case CategorySecrets:
		findings, err = parseSecrets(path, payload)
	case CategoryIAC:
		findings, err = parseIAC(path, payload)
	default:
		err = fmt.Errorf("no report format registered for category %q", category)
	}
	if err != nil {
		return nil, newParseError(category, path, err)
	}
	return findings, nil
}

func parseSAST(path string, payload []byte) ([]Finding, error) {
	format, err := detectSASTFormat(payload)
	if err != nil {
		return nil, err
	}
	if format == "bandit" {
		parsed, err := bandit.Parse(path, payload)
		if err != nil {
			return nil, err
		}
		return fromBanditFindings(parsed), nil
	}
	parsed, err := semgrep.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromSemgrepFindings(parsed), nil
}

// detectSASTFormat probes top-level keys the two formats do not share.
// Deterministic probe order for ambiguous payloads: Bandit markers first,
// then Semgrep markers, then Semgrep as the fallback. This tie-break order
// is fixed to keep output stable across runs.
func detectSASTFormat(payload []byte) (string, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return "", fmt.Errorf("parse sast json: %w", err)
	}
	if _, ok := root["results"]; !ok {
		return "", errors.New("unsupported sast report: expected Bandit or Semgrep JSON with a results array")
	}
	if _, ok := root["metrics"]; ok {
		return "bandit", nil
	}
	if _, ok := root["generated_at"]; ok {
		return "bandit", nil
	}
	if _, ok := root["paths"]; ok {
		return "semgrep", nil
	}
	if _, ok := root["version"]; ok {
		return "semgrep", nil
	}
	return "semgrep", nil
}

func parseSCA(path string, payload []byte) ([]Finding, error) {
	parsed, err := safety.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromSafetyFindings(parsed), nil
}

func parseContainer(path string, payload []byte) ([]Finding, error) {
	parsed, err := trivy.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromTrivyFindings(parsed), nil
}

func parseDAST(path string, payload []byte) ([]Finding, error) {
	parsed, err := owaspzap.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromZAPFindings(parsed), nil
}

func parseSecrets(path string, payload []byte) ([]Finding, error) {
	parsed, err := gitleaks.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromGitleaksFindings(parsed), nil
}

func parseIAC(path string, payload []byte) ([]Finding, error) {
	parsed, err := checkov.Parse(path, payload)
	if err != nil {
		return nil, err
	}
	return fromCheckovFindings(parsed), nil
}

func fromBanditFindings(in []bandit.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		out = append(out, Finding{
			Source:      "bandit",
			Category:    CategorySAST,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.TestID,
			Title:       f.Title,
			Location:    f.Location,
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromSemgrepFindings(in []semgrep.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		out = append(out, Finding{
			Source:      "semgrep",
			Category:    CategorySAST,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.CheckID,
			Title:       f.Title,
			Location:    f.Location,
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromSafetyFindings(in []safety.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		location := f.Package
		if f.Version != "" && location != "" {
			location = location + "@" + f.Version
		}
		out = append(out, Finding{
			Source:      "safety",
			Category:    CategorySCA,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.VulnerabilityID,
			Title:       f.Title,
			CVSSScore:   scorePointer(f.CVSSScore, f.HasCVSS),
			Location:    location,
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromTrivyFindings(in []trivy.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		out = append(out, Finding{
			Source:      "trivy",
			Category:    CategoryContainer,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.ID,
			Title:       f.Title,
			CVSSScore:   scorePointer(f.CVSSScore, f.HasCVSS),
			Location:    firstNonEmpty(f.Package, f.Target),
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromZAPFindings(in []owaspzap.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		out = append(out, Finding{
			Source:      "zap",
			Category:    CategoryDAST,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.PluginID,
			Title:       f.Alert,
			Location:    firstNonEmpty(f.URI, f.Site),
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromGitleaksFindings(in []gitleaks.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		out = append(out, Finding{
			Source:      "gitleaks",
			Category:    CategorySecrets,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.RuleID,
			Title:       f.Description,
			Location:    f.Location,
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

func fromCheckovFindings(in []checkov.Finding) []Finding {
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		location := f.Location
		if f.Resource != "" {
			location = firstNonEmpty(location, f.Resource)
		}
		out = append(out, Finding{
			Source:      "checkov",
			Category:    CategoryIAC,
			Severity:    normalizeToken(f.Severity),
			Identifier:  f.CheckID,
			Title:       f.CheckName,
			Location:    location,
			SourceFile:  f.SourceFile,
			SourceIndex: f.SourceIndex,
		})
	}
	return out
}

// scorePointer clamps a reported CVSS score into the valid 0..10 band and
// returns nil when the tool reported none.
func scorePointer(score float64, has bool) *float64 {
	if !has {
		return nil
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return &score
}
