package gate

import "sort"

func recommendedStepCatalog() map[string]RecommendedStep {
	return map[string]RecommendedStep{
		"REMEDIATE_VIOLATED_RULES": {
			ID:       "REMEDIATE_VIOLATED_RULES",
			Priority: 10,
			Text:     "Fix the findings behind each violated rule and rerun the gate.",
		},
		"REPAIR_SKIPPED_REPORTS": {
			ID:       "REPAIR_SKIPPED_REPORTS",
			Priority: 20,
			Text:     "Regenerate skipped report files so every category is evaluated.",
		},
		"TRIAGE_UNKNOWN_SEVERITIES": {
			ID:       "TRIAGE_UNKNOWN_SEVERITIES",
			Priority: 30,
			Text:     "Triage findings with unknown severity; they never count toward thresholds.",
		},
		"REFRESH_BASELINE": {
			ID:       "REFRESH_BASELINE",
			Priority: 40,
			Text:     "Refresh baseline reports so suppressed findings stay suppressed deliberately.",
		},
	}
}

// collectRecommendedSteps derives followups from the run outcome, ordered by
// priority then id.
func collectRecommendedSteps(result Result, findings []Finding, skipped []SkippedSource, newFindingsOnly bool) []RecommendedStep {
	catalog := recommendedStepCatalog()
	ids := map[string]bool{}
	if len(result.Violations) > 0 {
		ids["REMEDIATE_VIOLATED_RULES"] = true
	}
	if len(skipped) > 0 {
		ids["REPAIR_SKIPPED_REPORTS"] = true
	}
	suppressed := false
	for _, f := range findings {
		if f.Severity == SeverityUnknown {
			ids["TRIAGE_UNKNOWN_SEVERITIES"] = true
		}
		if f.BaselineKnown {
			suppressed = true
		}
	}
	if newFindingsOnly && suppressed {
		ids["REFRESH_BASELINE"] = true
	}

	steps := make([]RecommendedStep, 0, len(ids))
	for id := range ids {
		steps = append(steps, catalog[id])
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Priority != steps[j].Priority {
			return steps[i].Priority < steps[j].Priority
		}
		return steps[i].ID < steps[j].ID
	})
	return steps
}
