package semgrep

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	CheckID     string
	Severity    string
	Location    string
	Title       string
	SourceFile  string
	SourceIndex int
}

type report struct {
	Version string   `json:"version"`
	Results []result `json:"results"`
}

type result struct {
	CheckID string   `json:"check_id"`
	Path    string   `json:"path"`
	Start   position `json:"start"`
	Extra   extra    `json:"extra"`
}

type position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type extra struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Parse decodes a Semgrep JSON report into normalized findings.
func Parse(path string, payload []byte) ([]Finding, error) {
	if err := validateReportEnvelope(payload); err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("parse semgrep json: %w", err)
	}

	findings := make([]Finding, 0, len(rep.Results))
	for idx, res := range rep.Results {
		findings = append(findings, Finding{
			CheckID:     firstNonEmpty(res.CheckID, "semgrep-"+strconv.Itoa(idx)),
			Severity:    normalizeSeverity(res.Extra.Severity),
			Location:    buildLocation(res.Path, res.Start.Line),
			Title:       firstNonEmpty(res.Extra.Message, res.CheckID, "unknown issue"),
			SourceFile:  path,
			SourceIndex: idx,
		})
	}
	return findings, nil
}

func validateReportEnvelope(payload []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return fmt.Errorf("parse semgrep json: %w", err)
	}
	rawResults, ok := root["results"]
	if !ok {
		return errors.New("parse semgrep json: missing top-level results")
	}
	var results []json.RawMessage
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return errors.New("parse semgrep json: results must be an array")
	}
	return nil
}

func buildLocation(path string, line int) string {
	// Semgrep on Windows runners reports backslash paths.
	file := strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
	if file == "" {
		return ""
	}
	if line > 0 {
		return file + ":" + strconv.Itoa(line)
	}
	return file
}

func normalizeSeverity(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ERROR":
		return "high"
	case "WARNING":
		return "medium"
	case "INFO":
		return "low"
	default:
		return "unknown"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
