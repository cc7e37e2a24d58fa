package gate

import (
	"github.com/devsecops-lab/security-gate/internal/policy"
)

// Evaluate checks findings against rules in declaration order. It is pure:
// the same findings and rules always produce the same result, and every rule
// appears in the evaluations list whether or not it was violated.
func Evaluate(findings []Finding, rules []policy.Rule) Result {
	evaluations := make([]RuleEvaluation, 0, len(rules))
	violations := []Violation{}
	for _, rule := range rules {
		matching := matchRule(findings, rule)
		violated := ruleViolated(rule, len(matching))
		evaluations = append(evaluations, RuleEvaluation{
			Rule:          rule,
			MatchingCount: len(matching),
			Violated:      violated,
		})
		if violated {
			violations = append(violations, Violation{
				Rule:             rule,
				MatchingFindings: matching,
				ActualCount:      len(matching),
			})
		}
	}
	result := Result{
		Passed:      len(violations) == 0,
		Evaluations: evaluations,
		Violations:  violations,
	}
	result.Summary = summaryText(findings, result)
	return result
}

// matchRule selects the findings a rule counts. min_cvss takes precedence
// over severity_threshold when both are set; a rule with neither counts the
// whole category.
func matchRule(findings []Finding, rule policy.Rule) []Finding {
	matching := []Finding{}
	for _, f := range findings {
		if f.Category != rule.Category {
			continue
		}
		switch {
		case rule.MinCVSS != nil:
			if f.CVSSScore != nil && *f.CVSSScore >= *rule.MinCVSS {
				matching = append(matching, f)
			}
		case rule.SeverityThreshold != "":
			if severityAtLeast(f.Severity, rule.SeverityThreshold) {
				matching = append(matching, f)
			}
		default:
			matching = append(matching, f)
		}
	}
	return matching
}

func ruleViolated(rule policy.Rule, count int) bool {
	if count == 0 {
		return false
	}
	if rule.MaxCount != nil {
		return count > *rule.MaxCount
	}
	return true
}

// severityAtLeast reports whether severity meets threshold. Tokens outside
// the rank map, unknown included, never qualify.
func severityAtLeast(severity, threshold string) bool {
	sr, ok := severityRank[normalizeToken(severity)]
	if !ok {
		return false
	}
	tr, ok := severityRank[normalizeToken(threshold)]
	if !ok {
		return false
	}
	return sr >= tr
}
