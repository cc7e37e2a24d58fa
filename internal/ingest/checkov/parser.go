package checkov

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Finding struct {
	CheckID     string
	CheckName   string
	CheckType   string
	Resource    string
	Severity    string
	Location    string
	SourceFile  string
	SourceIndex int
}

type report struct {
	CheckType string  `json:"check_type"`
	Results   results `json:"results"`
}

type results struct {
	FailedChecks []check `json:"failed_checks"`
}

type check struct {
	CheckID       string          `json:"check_id"`
	BcCheckID     string          `json:"bc_check_id"`
	CheckName     string          `json:"check_name"`
	FilePath      string          `json:"file_path"`
	FileLineRange []int           `json:"file_line_range"`
	Resource      string          `json:"resource"`
	Severity      json.RawMessage `json:"severity"`
}

// Parse decodes a Checkov JSON report into normalized findings. Checkov
// writes a single report object for one framework and a top-level array when
// several frameworks ran; both shapes are accepted. Only failed checks become
// findings.
func Parse(path string, payload []byte) ([]Finding, error) {
	reports, err := decodeReports(payload)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	sourceIndex := 0
	for _, rep := range reports {
		for _, c := range rep.Results.FailedChecks {
			findings = append(findings, Finding{
				CheckID:     firstNonEmpty(c.CheckID, c.BcCheckID, "checkov-"+strconv.Itoa(sourceIndex)),
				CheckName:   firstNonEmpty(c.CheckName, c.CheckID, "failed check"),
				CheckType:   strings.TrimSpace(rep.CheckType),
				Resource:    strings.TrimSpace(c.Resource),
				Severity:    resolveSeverity(c.Severity),
				Location:    buildLocation(c.FilePath, c.FileLineRange),
				SourceFile:  path,
				SourceIndex: sourceIndex,
			})
			sourceIndex++
		}
	}
	return findings, nil
}

func decodeReports(payload []byte) ([]report, error) {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var raws []json.RawMessage
		if err := json.Unmarshal(payload, &raws); err != nil {
			return nil, fmt.Errorf("parse checkov json: %w", err)
		}
		reports := make([]report, 0, len(raws))
		for _, raw := range raws {
			rep, err := decodeReport(raw)
			if err != nil {
				return nil, err
			}
			reports = append(reports, rep)
		}
		return reports, nil
	}
	rep, err := decodeReport(payload)
	if err != nil {
		return nil, err
	}
	return []report{rep}, nil
}

func decodeReport(payload []byte) (report, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return report{}, fmt.Errorf("parse checkov json: %w", err)
	}
	if _, ok := root["results"]; !ok {
		return report{}, errors.New("parse checkov json: missing results object")
	}
	var rep report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return report{}, fmt.Errorf("parse checkov json: %w", err)
	}
	return rep, nil
}

func resolveSeverity(raw json.RawMessage) string {
	// The severity field is null on open-source Checkov runs without a
	// platform connection.
	if len(raw) == 0 || string(raw) == "null" {
		return "unknown"
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "unknown"
	}
	switch strings.ToLower(strings.TrimSpace(token)) {
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

func buildLocation(filePath string, lineRange []int) string {
	f := strings.TrimSpace(filePath)
	if f == "" {
		return ""
	}
	if len(lineRange) > 0 && lineRange[0] > 0 {
		return f + ":" + strconv.Itoa(lineRange[0])
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
