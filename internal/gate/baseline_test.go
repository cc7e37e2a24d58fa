package gate

import "testing"

func TestMarkBaselineKnownMatchesOnIdentity(t *testing.T) {
	current := []Finding{
		{Category: CategorySAST, Source: "bandit", Identifier: "B602", Location: "app/run.py:12", Severity: SeverityHigh},
		{Category: CategorySAST, Source: "bandit", Identifier: "B602", Location: "app/other.py:3", Severity: SeverityHigh},
		{Category: CategorySCA, Source: "safety", Identifier: "CVE-2025-1111", Location: "lodash@4.17.0", Severity: SeverityCritical},
	}
	baseline := []Finding{
		{Category: CategorySAST, Source: "bandit", Identifier: "B602", Location: "app/run.py:12", Severity: SeverityHigh},
	}

	matched := markBaselineKnown(current, baseline)
	if matched != 1 {
		t.Fatalf("matched=%d want=1", matched)
	}
	if !current[0].BaselineKnown {
		t.Fatal("identical finding not flagged")
	}
	if current[1].BaselineKnown {
		t.Fatal("different location must not match")
	}
	if current[2].BaselineKnown {
		t.Fatal("different category must not match")
	}
}

func TestBaselineKeyIsCaseAndSpaceInsensitive(t *testing.T) {
	a := Finding{Category: "SAST", Source: " Bandit ", Identifier: "B602", Location: "APP/run.py:12", Severity: "High"}
	b := Finding{Category: "sast", Source: "bandit", Identifier: "B602", Location: "app/run.py:12", Severity: "high"}
	if baselineDiffKey(a) != baselineDiffKey(b) {
		t.Fatalf("keys differ:\n%s\n%s", baselineDiffKey(a), baselineDiffKey(b))
	}
}

func TestBaselineKeyDistinguishesSeverityDrift(t *testing.T) {
	a := Finding{Category: CategorySCA, Source: "safety", Identifier: "CVE-2025-1111", Location: "lodash@4.17.0", Severity: SeverityHigh}
	b := a
	b.Severity = SeverityCritical
	if baselineDiffKey(a) == baselineDiffKey(b) {
		t.Fatal("a severity upgrade must surface as a new finding")
	}
}

func TestActiveFindingsDropsBaselineKnown(t *testing.T) {
	findings := []Finding{
		{Identifier: "A", BaselineKnown: true},
		{Identifier: "B"},
		{Identifier: "C", BaselineKnown: true},
	}
	active := activeFindings(findings)
	if len(active) != 1 || active[0].Identifier != "B" {
		t.Fatalf("active=%+v", active)
	}
	if len(findings) != 3 {
		t.Fatal("input slice must be left intact")
	}
}
