package gate

import (
	"fmt"
	"strings"
)

// summaryText renders the one-block human summary. It is built only from the
// evaluation result and finding counts, so equal inputs yield equal text.
func summaryText(findings []Finding, result Result) string {
	var b strings.Builder
	if result.Passed {
		fmt.Fprintf(&b, "gate passed: %d rule(s) evaluated, %d finding(s), no violations", len(result.Evaluations), len(findings))
		return b.String()
	}
	fmt.Fprintf(&b, "gate failed: %d of %d rule(s) violated", len(result.Violations), len(result.Evaluations))
	for _, v := range result.Violations {
		b.WriteString("\n- ")
		b.WriteString(violationLine(v))
	}
	return b.String()
}

func violationLine(v Violation) string {
	limit := "none allowed"
	if v.Rule.MaxCount != nil {
		limit = fmt.Sprintf("at most %d allowed", *v.Rule.MaxCount)
	}
	switch {
	case v.Rule.MinCVSS != nil:
		return fmt.Sprintf("rule %s (%s): %d finding(s) with CVSS >= %.1f, %s", v.Rule.ID, v.Rule.Category, v.ActualCount, *v.Rule.MinCVSS, limit)
	case v.Rule.SeverityThreshold != "":
		return fmt.Sprintf("rule %s (%s): %d finding(s) at or above %s, %s", v.Rule.ID, v.Rule.Category, v.ActualCount, v.Rule.SeverityThreshold, limit)
	default:
		return fmt.Sprintf("rule %s (%s): %d finding(s), %s", v.Rule.ID, v.Rule.Category, v.ActualCount, limit)
	}
}
