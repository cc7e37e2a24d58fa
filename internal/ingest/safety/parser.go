package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	VulnerabilityID string
	CVE             string
	Package         string
	Version         string
	Severity        string
	CVSSScore       float64
	HasCVSS         bool
	Title           string
	SourceFile      string
	SourceIndex     int
}

type report struct {
	ReportMeta      map[string]interface{} `json:"report_meta"`
	Vulnerabilities []vulnerability        `json:"vulnerabilities"`
}

type vulnerability struct {
	VulnerabilityID string          `json:"vulnerability_id"`
	PackageName     string          `json:"package_name"`
	AnalyzedVersion string          `json:"analyzed_version"`
	VulnerableSpec  string          `json:"vulnerable_spec"`
	Advisory        string          `json:"advisory"`
	CVE             string          `json:"CVE"`
	Severity        json.RawMessage `json:"severity"`
	MoreInfoURL     string          `json:"more_info_url"`
}

type severityDetail struct {
	CVSSv3 cvssV3 `json:"cvssv3"`
}

type cvssV3 struct {
	BaseScore    float64 `json:"base_score"`
	BaseSeverity string  `json:"base_severity"`
}

// Parse decodes a Safety JSON report into normalized findings. Safety emits
// the severity field as an object, a bare string, or null depending on the
// database edition, so all three shapes are accepted.
func Parse(path string, payload []byte) ([]Finding, error) {
	if err := validateReportEnvelope(payload); err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("parse safety json: %w", err)
	}

	findings := make([]Finding, 0, len(rep.Vulnerabilities))
	for idx, vuln := range rep.Vulnerabilities {
		severity, score, hasScore := resolveSeverity(vuln.Severity)
		findings = append(findings, Finding{
			VulnerabilityID: firstNonEmpty(vuln.VulnerabilityID, vuln.CVE, "safety-"+strconv.Itoa(idx)),
			CVE:             strings.TrimSpace(vuln.CVE),
			Package:         strings.TrimSpace(vuln.PackageName),
			Version:         strings.TrimSpace(vuln.AnalyzedVersion),
			Severity:        severity,
			CVSSScore:       score,
			HasCVSS:         hasScore,
			Title:           firstNonEmpty(vuln.Advisory, vuln.VulnerabilityID, "unknown advisory"),
			SourceFile:      path,
			SourceIndex:     idx,
		})
	}
	return findings, nil
}

func validateReportEnvelope(payload []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return fmt.Errorf("parse safety json: %w", err)
	}
	rawVulns, ok := root["vulnerabilities"]
	if !ok {
		return errors.New("parse safety json: missing top-level vulnerabilities")
	}
	var vulns []json.RawMessage
	if err := json.Unmarshal(rawVulns, &vulns); err != nil {
		return errors.New("parse safety json: vulnerabilities must be an array")
	}
	return nil
}

func resolveSeverity(raw json.RawMessage) (severity string, score float64, hasScore bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "unknown", 0, false
	}

	var detail severityDetail
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.CVSSv3.BaseScore > 0 {
			score = detail.CVSSv3.BaseScore
			hasScore = true
		}
		if token := normalizeSeverity(detail.CVSSv3.BaseSeverity); token != "unknown" {
			return token, score, hasScore
		}
		if hasScore {
			return severityFromScore(score), score, true
		}
	}

	var token string
	if err := json.Unmarshal(raw, &token); err == nil {
		return normalizeSeverity(token), 0, false
	}
	return "unknown", score, hasScore
}

func normalizeSeverity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return "critical"
	case "high":
		return "high"
	case "medium", "moderate":
		return "medium"
	case "low":
		return "low"
	default:
		return "unknown"
	}
}

// severityFromScore maps a CVSS v3 base score onto the standard rating bands.
func severityFromScore(score float64) string {
	switch {
	case score >= 9.0:
		return "critical"
	case score >= 7.0:
		return "high"
	case score >= 4.0:
		return "medium"
	case score > 0:
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
