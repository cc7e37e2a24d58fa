package bandit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	TestID      string
	TestName    string
	Severity    string
	Confidence  string
	Location    string
	Title       string
	SourceFile  string
	SourceIndex int
}

type report struct {
	GeneratedAt string   `json:"generated_at"`
	Results     []result `json:"results"`
}

type result struct {
	TestID          string `json:"test_id"`
	TestName        string `json:"test_name"`
	IssueSeverity   string `json:"issue_severity"`
	IssueConfidence string `json:"issue_confidence"`
	IssueText       string `json:"issue_text"`
	Filename        string `json:"filename"`
	LineNumber      int    `json:"line_number"`
}

// Parse decodes a Bandit JSON report into normalized findings. The payload
// must carry a top-level "results" array; an empty array is a clean scan.
func Parse(path string, payload []byte) ([]Finding, error) {
	if err := validateReportEnvelope(payload); err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("parse bandit json: %w", err)
	}

	findings := make([]Finding, 0, len(rep.Results))
	for idx, res := range rep.Results {
		findings = append(findings, Finding{
			TestID:      firstNonEmpty(res.TestID, res.TestName, "bandit-"+strconv.Itoa(idx)),
			TestName:    strings.TrimSpace(res.TestName),
			Severity:    normalizeSeverity(res.IssueSeverity),
			Confidence:  normalizeToken(res.IssueConfidence),
			Location:    buildLocation(res.Filename, res.LineNumber),
			Title:       firstNonEmpty(res.IssueText, res.TestName, "unknown issue"),
			SourceFile:  path,
			SourceIndex: idx,
		})
	}
	return findings, nil
}

func validateReportEnvelope(payload []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return fmt.Errorf("parse bandit json: %w", err)
	}
	rawResults, ok := root["results"]
	if !ok {
		return errors.New("parse bandit json: missing top-level results")
	}
	var results []json.RawMessage
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return errors.New("parse bandit json: results must be an array")
	}
	return nil
}

func buildLocation(filename string, line int) string {
	file := strings.TrimSpace(filename)
	if file == "" {
		return ""
	}
	if line > 0 {
		return file + ":" + strconv.Itoa(line)
	}
	return file
}

func normalizeSeverity(raw string) string {
	// Bandit emits UNDEFINED when a plugin cannot rate the issue.
	switch normalizeToken(raw) {
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	default:
		return "unknown"
	}
}

func normalizeToken(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return "unknown"
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
