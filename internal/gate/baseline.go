package gate

import "strings"

// markBaselineKnown flags current findings whose identity also appears in the
// baseline set. Returns how many were matched.
func markBaselineKnown(findings []Finding, baseline []Finding) int {
	baselineSet := make(map[string]bool, len(baseline))
	for _, f := range baseline {
		baselineSet[baselineDiffKey(f)] = true
	}
	matched := 0
	for i := range findings {
		if baselineSet[baselineDiffKey(findings[i])] {
			findings[i].BaselineKnown = true
			matched++
		}
	}
	return matched
}

// activeFindings drops baseline-known findings before rule evaluation. The
// full list, flags included, still lands in the report.
func activeFindings(findings []Finding) []Finding {
	active := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.BaselineKnown {
			continue
		}
		active = append(active, f)
	}
	return active
}

func baselineDiffKey(f Finding) string {
	parts := []string{
		normPart(f.Category),
		normPart(f.Source),
		normPart(f.Identifier),
		normPart(f.Location),
		normPart(f.Severity),
	}
	return strings.Join(parts, "|")
}

func normPart(v string) string {
	return strings.TrimSpace(strings.ToLower(v))
}
