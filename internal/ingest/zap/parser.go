package zap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	PluginID    string
	Alert       string
	Severity    string
	Confidence  string
	Site        string
	URI         string
	SourceFile  string
	SourceIndex int
}

type report struct {
	ProgramName string `json:"@programName"`
	Version     string `json:"@version"`
	Sites       []site `json:"site"`
}

type site struct {
	Name   string  `json:"@name"`
	Alerts []alert `json:"alerts"`
}

type alert struct {
	PluginID   string     `json:"pluginid"`
	Alert      string     `json:"alert"`
	Name       string     `json:"name"`
	RiskCode   string     `json:"riskcode"`
	Confidence string     `json:"confidence"`
	RiskDesc   string     `json:"riskdesc"`
	Instances  []instance `json:"instances"`
}

type instance struct {
	URI    string `json:"uri"`
	Method string `json:"method"`
}

// Parse decodes an OWASP ZAP traditional JSON report into normalized
// findings, one per alert. Instance detail beyond the first URI is dropped.
func Parse(path string, payload []byte) ([]Finding, error) {
	if err := validateReportEnvelope(payload); err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("parse zap json: %w", err)
	}

	var findings []Finding
	sourceIndex := 0
	for _, s := range rep.Sites {
		for _, a := range s.Alerts {
			uri := ""
			if len(a.Instances) > 0 {
				uri = strings.TrimSpace(a.Instances[0].URI)
			}
			findings = append(findings, Finding{
				PluginID:    firstNonEmpty(a.PluginID, "zap-"+strconv.Itoa(sourceIndex)),
				Alert:       firstNonEmpty(a.Alert, a.Name, "unknown alert"),
				Severity:    severityFromRiskCode(a.RiskCode),
				Confidence:  normalizeConfidence(a.Confidence),
				Site:        strings.TrimSpace(s.Name),
				URI:         uri,
				SourceFile:  path,
				SourceIndex: sourceIndex,
			})
			sourceIndex++
		}
	}
	return findings, nil
}

func validateReportEnvelope(payload []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return fmt.Errorf("parse zap json: %w", err)
	}
	rawSites, ok := root["site"]
	if !ok {
		return errors.New("parse zap json: missing top-level site")
	}
	var sites []json.RawMessage
	if err := json.Unmarshal(rawSites, &sites); err != nil {
		return errors.New("parse zap json: site must be an array")
	}
	return nil
}

// severityFromRiskCode maps ZAP risk codes onto severity tokens. Code 0 is
// informational and lands on low rather than a synthetic extra level.
func severityFromRiskCode(code string) string {
	switch strings.TrimSpace(code) {
	case "3":
		return "high"
	case "2":
		return "medium"
	case "1", "0":
		return "low"
	default:
		return "unknown"
	}
}

func normalizeConfidence(raw string) string {
	// ZAP confidence codes: 0 false positive, 1 low, 2 medium, 3 high.
	switch strings.TrimSpace(raw) {
	case "3":
		return "high"
	case "2":
		return "medium"
	case "1":
		return "low"
	case "0":
		return "false-positive"
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
