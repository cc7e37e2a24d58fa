package gitleaks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	RuleID      string
	Description string
	File        string
	StartLine   int
	Commit      string
	Fingerprint string
	Severity    string
	Location    string
	SourceFile  string
	SourceIndex int
}

type leak struct {
	Description string `json:"Description"`
	StartLine   int    `json:"StartLine"`
	EndLine     int    `json:"EndLine"`
	File        string `json:"File"`
	Commit      string `json:"Commit"`
	RuleID      string `json:"RuleID"`
	Fingerprint string `json:"Fingerprint"`
}

// Parse decodes a GitLeaks JSON report, which is a bare top-level array of
// leaks. Every leaked credential is treated as critical; a committed secret
// has no lesser grade.
func Parse(path string, payload []byte) ([]Finding, error) {
	var leaks []leak
	if err := json.Unmarshal(payload, &leaks); err != nil {
		return nil, fmt.Errorf("parse gitleaks json: expected a top-level array: %w", err)
	}

	findings := make([]Finding, 0, len(leaks))
	for idx, l := range leaks {
		findings = append(findings, Finding{
			RuleID:      firstNonEmpty(l.RuleID, l.Fingerprint, "gitleaks-"+strconv.Itoa(idx)),
			Description: firstNonEmpty(l.Description, l.RuleID, "leaked secret"),
			File:        strings.TrimSpace(l.File),
			StartLine:   l.StartLine,
			Commit:      strings.TrimSpace(l.Commit),
			Fingerprint: strings.TrimSpace(l.Fingerprint),
			Severity:    "critical",
			Location:    buildLocation(l.File, l.StartLine),
			SourceFile:  path,
			SourceIndex: idx,
		})
	}
	return findings, nil
}

func buildLocation(file string, line int) string {
	f := strings.TrimSpace(file)
	if f == "" {
		return ""
	}
	if line > 0 {
		return f + ":" + strconv.Itoa(line)
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
