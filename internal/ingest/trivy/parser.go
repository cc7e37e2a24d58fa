package trivy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Finding struct {
	ID          string
	Kind        string
	Package     string
	Target      string
	Severity    string
	CVSSScore   float64
	HasCVSS     bool
	Title       string
	SourceFile  string
	SourceIndex int
}

type report struct {
	SchemaVersion interface{} `json:"SchemaVersion"`
	ArtifactName  string      `json:"ArtifactName"`
	Results       []result    `json:"Results"`
}

type result struct {
	Target            string             `json:"Target"`
	Vulnerabilities   []vulnerability    `json:"Vulnerabilities"`
	Misconfigurations []misconfiguration `json:"Misconfigurations"`
	Secrets           []secretFinding    `json:"Secrets"`
}

type vulnerability struct {
	VulnerabilityID  string               `json:"VulnerabilityID"`
	PkgName          string               `json:"PkgName"`
	InstalledVersion string               `json:"InstalledVersion"`
	Severity         string               `json:"Severity"`
	Title            string               `json:"Title"`
	Description      string               `json:"Description"`
	CVSS             map[string]cvssEntry `json:"CVSS"`
}

type cvssEntry struct {
	V3Score float64 `json:"V3Score"`
	V2Score float64 `json:"V2Score"`
}

type misconfiguration struct {
	ID       string `json:"ID"`
	AVDID    string `json:"AVDID"`
	Title    string `json:"Title"`
	Message  string `json:"Message"`
	Severity string `json:"Severity"`
}

type secretFinding struct {
	RuleID   string `json:"RuleID"`
	Category string `json:"Category"`
	Severity string `json:"Severity"`
	Title    string `json:"Title"`
}

// Parse decodes a Trivy JSON report into normalized findings. Vulnerability,
// misconfiguration and secret results are all flattened into one list in
// report order.
func Parse(path string, payload []byte) ([]Finding, error) {
	if err := validateReportEnvelope(payload); err != nil {
		return nil, err
	}
	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("parse trivy json: %w", err)
	}

	var findings []Finding
	sourceIndex := 0
	for _, res := range rep.Results {
		target := firstNonEmpty(res.Target, rep.ArtifactName, "unknown")
		for _, v := range res.Vulnerabilities {
			score, hasScore := bestV3Score(v.CVSS)
			pkg := strings.TrimSpace(v.PkgName)
			if v.InstalledVersion != "" && pkg != "" {
				pkg = pkg + "@" + strings.TrimSpace(v.InstalledVersion)
			}
			findings = append(findings, Finding{
				ID:          firstNonEmpty(v.VulnerabilityID, "trivy-vuln"),
				Kind:        "vulnerability",
				Package:     pkg,
				Target:      target,
				Severity:    normalizeSeverity(v.Severity),
				CVSSScore:   score,
				HasCVSS:     hasScore,
				Title:       firstNonEmpty(v.Title, v.VulnerabilityID, "unknown title"),
				SourceFile:  path,
				SourceIndex: sourceIndex,
			})
			sourceIndex++
		}
		for _, m := range res.Misconfigurations {
			findings = append(findings, Finding{
				ID:          firstNonEmpty(m.ID, m.AVDID, "trivy-misconfig"),
				Kind:        "misconfiguration",
				Target:      target,
				Severity:    normalizeSeverity(m.Severity),
				Title:       firstNonEmpty(m.Title, m.Message, m.ID, "unknown title"),
				SourceFile:  path,
				SourceIndex: sourceIndex,
			})
			sourceIndex++
		}
		for _, s := range res.Secrets {
			findings = append(findings, Finding{
				ID:          firstNonEmpty(s.RuleID, "trivy-secret"),
				Kind:        "secret",
				Target:      target,
				Severity:    normalizeSeverity(s.Severity),
				Title:       firstNonEmpty(s.Title, s.Category, s.RuleID, "unknown title"),
				SourceFile:  path,
				SourceIndex: sourceIndex,
			})
			sourceIndex++
		}
	}
	return findings, nil
}

// bestV3Score picks the highest V3 score across CVSS vendors so the result
// does not depend on map iteration order.
func bestV3Score(entries map[string]cvssEntry) (float64, bool) {
	best := 0.0
	for _, e := range entries {
		if e.V3Score > best {
			best = e.V3Score
		}
	}
	return best, best > 0
}

func normalizeSeverity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return "critical"
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func validateReportEnvelope(payload []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return fmt.Errorf("parse trivy json: %w", err)
	}
	if err := validateSchemaVersion(root); err != nil {
		return err
	}
	rawResults, ok := root["Results"]
	if !ok {
		return errors.New("parse trivy json: missing top-level Results")
	}
	var results []json.RawMessage
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return errors.New("parse trivy json: Results must be an array")
	}
	return nil
}

func validateSchemaVersion(root map[string]json.RawMessage) error {
	rawSchemaVersion, ok := root["SchemaVersion"]
	if !ok {
		return nil
	}
	var num int
	if err := json.Unmarshal(rawSchemaVersion, &num); err == nil {
		if num == 1 || num == 2 {
			return nil
		}
		return fmt.Errorf("parse trivy json: unsupported SchemaVersion %d", num)
	}
	var str string
	if err := json.Unmarshal(rawSchemaVersion, &str); err == nil {
		switch strings.TrimSpace(str) {
		case "1", "2":
			return nil
		default:
			return fmt.Errorf("parse trivy json: unsupported SchemaVersion %q", str)
		}
	}
	return errors.New("parse trivy json: SchemaVersion must be a number or string")
}
