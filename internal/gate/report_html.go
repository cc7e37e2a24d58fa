package gate

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devsecops-lab/security-gate/internal/policy"
)

// writeReportHTML renders the operator briefing view next to report.json.
// The JSON artifact stays machine-authoritative; this view only restates it.
func writeReportHTML(path string, report Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil && dir != "." {
		return err
	}

	verdictClassName := verdictClass(report.Passed)
	severityCounts := map[string]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
		SeverityUnknown:  0,
	}
	baselineKnown := 0
	scored := 0
	for _, f := range report.Findings {
		sev := strings.ToLower(f.Severity)
		if _, ok := severityCounts[sev]; ok {
			severityCounts[sev]++
		} else {
			severityCounts[SeverityUnknown]++
		}
		if f.BaselineKnown {
			baselineKnown++
		}
		if f.CVSSScore != nil {
			scored++
		}
	}

	badInputs := 0
	for _, in := range report.Inputs {
		if !in.ReadOK {
			badInputs++
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width,initial-scale=1\">")
	b.WriteString("<title>security-gate report</title>")
	b.WriteString(`<script>(function(){try{var k='security_gate_theme';var t=localStorage.getItem(k);if(t!=='light'&&t!=='dark'){t=(window.matchMedia&&window.matchMedia('(prefers-color-scheme: light)').matches)?'light':'dark'}document.documentElement.setAttribute('data-theme',t);}catch(_){document.documentElement.setAttribute('data-theme','dark');}})();</script>`)
	b.WriteString(`<style>
:root {
  --bg: #070b14;
  --bg-grad-1: #102746;
  --bg-grad-2: #171538;
  --panel: #0f1727;
  --panel-2: #0b1322;
  --ink: #e8f2ff;
  --muted: #9ab0cf;
  --line: #263753;
  --line-strong: #33507a;
  --shadow: 0 20px 34px -24px rgba(1, 4, 12, 0.9);
  --brand: #86f3ff;
  --heading: #d1e5ff;
  --badge-ink: #aecdff;
  --ok: #52f3a6;
  --warn: #ffd166;
  --fail: #ff6b93;
  --ok-bg: rgba(82, 243, 166, 0.12);
  --warn-bg: rgba(255, 209, 102, 0.12);
  --fail-bg: rgba(255, 107, 147, 0.12);
  --pass-border: rgba(82, 243, 166, 0.55);
  --warn-border: rgba(255, 209, 102, 0.55);
  --fail-border: rgba(255, 107, 147, 0.60);
  --pass-glow: 0 0 12px rgba(82, 243, 166, 0.15);
  --warn-glow: 0 0 12px rgba(255, 209, 102, 0.15);
  --fail-glow: 0 0 12px rgba(255, 107, 147, 0.16);
  --table-head: #122038;
  --table-head-ink: #b9d6ff;
  --chip: #111d33;
  --skip-bg: #ecfeff;
  --skip-ink: #04121f;
  --hero-grad-1: #121f36;
  --hero-grad-2: #0b1424;
  --hero-title-shadow: rgba(134, 243, 255, 0.15);
  --hero-verdict-bg: #091324;
  --track-bg: #091427;
  --track-line: #1f3353;
  --fill-critical-a: #ff6b93;
  --fill-critical-b: #ff3d71;
  --fill-high-a: #ff9f67;
  --fill-high-b: #ff6c52;
  --fill-medium-a: #ffd166;
  --fill-medium-b: #ffb347;
  --fill-low-a: #6be9ff;
  --fill-low-b: #42b9ff;
  --fill-unknown-a: #c291ff;
  --fill-unknown-b: #8b68ff;
  --radius: 14px;
}
:root[data-theme="light"] {
  --bg: #f3f7fc;
  --bg-grad-1: #deebfa;
  --bg-grad-2: #e7f0fb;
  --panel: #ffffff;
  --panel-2: #f7fafd;
  --ink: #0f172a;
  --muted: #475569;
  --line: #d7e1ed;
  --line-strong: #bfd0e3;
  --shadow: 0 16px 30px -26px rgba(15, 23, 42, 0.35);
  --brand: #1e3a5f;
  --heading: #16324f;
  --badge-ink: #274463;
  --ok: #166534;
  --warn: #b45309;
  --fail: #b91c1c;
  --ok-bg: #e9f8ee;
  --warn-bg: #fff5e9;
  --fail-bg: #fff0f0;
  --pass-border: #9dd8b2;
  --warn-border: #f1cca1;
  --fail-border: #efb7b7;
  --pass-glow: none;
  --warn-glow: none;
  --fail-glow: none;
  --table-head: #edf3fb;
  --table-head-ink: #274463;
  --chip: #edf3fb;
  --skip-bg: #0f172a;
  --skip-ink: #ffffff;
  --hero-grad-1: #f8fbff;
  --hero-grad-2: #eef4fb;
  --hero-title-shadow: rgba(30, 58, 95, 0.08);
  --hero-verdict-bg: #ffffff;
  --track-bg: #e7eef7;
  --track-line: #d5e2f0;
  --fill-critical-a: #ef4444;
  --fill-critical-b: #b91c1c;
  --fill-high-a: #f97316;
  --fill-high-b: #c2410c;
  --fill-medium-a: #f59e0b;
  --fill-medium-b: #b45309;
  --fill-low-a: #38bdf8;
  --fill-low-b: #0369a1;
  --fill-unknown-a: #a78bfa;
  --fill-unknown-b: #6d28d9;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  background: radial-gradient(900px 460px at 0% 0%, var(--bg-grad-1) 0%, transparent 58%),
              radial-gradient(860px 440px at 100% 100%, var(--bg-grad-2) 0%, transparent 62%),
              var(--bg);
  color: var(--ink);
  font-family: "IBM Plex Sans", "Source Sans 3", "Segoe UI", system-ui, sans-serif;
  line-height: 1.55;
}
.skip-link {
  position: absolute;
  left: -9999px;
  top: auto;
}
.skip-link:focus {
  left: 12px;
  top: 10px;
  background: var(--skip-bg);
  color: var(--skip-ink);
  padding: 8px 10px;
  border-radius: 8px;
  z-index: 99;
}
.shell {
  max-width: 1260px;
  margin: 0 auto;
  padding: 22px;
}
.hero {
  background: linear-gradient(142deg, var(--hero-grad-1), var(--hero-grad-2));
  border: 1px solid var(--line-strong);
  border-radius: 18px;
  padding: 18px;
  box-shadow: var(--shadow);
}
.hero-top {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 10px;
}
.hero-grid {
  display: grid;
  grid-template-columns: 1.6fr 1fr;
  gap: 14px;
}
.hero-main {
  min-width: 0;
}
.hero h1 {
  margin: 0;
  font-size: 1.6rem;
  letter-spacing: 0.01em;
  color: var(--brand);
  text-shadow: 0 0 14px var(--hero-title-shadow);
}
.theme-toggle {
  border: 1px solid var(--line-strong);
  background: var(--chip);
  color: var(--ink);
  border-radius: 999px;
  padding: 0.33rem 0.82rem;
  font-size: 0.78rem;
  font-weight: 700;
  cursor: pointer;
}
.theme-toggle:hover {
  filter: brightness(1.08);
}
.hero .meta {
  margin-top: 10px;
  color: var(--muted);
  font-size: 0.92rem;
}
.meta-line {
  margin-top: 6px;
}
.hero-verdict {
  border: 1px solid var(--line-strong);
  border-radius: 12px;
  background: var(--hero-verdict-bg);
  padding: 12px;
  display: grid;
  gap: 8px;
}
.hero-verdict.pass {
  border-color: var(--pass-border);
  background: linear-gradient(140deg, var(--ok-bg), var(--hero-verdict-bg));
  box-shadow: var(--pass-glow);
}
.hero-verdict.fail {
  border-color: var(--fail-border);
  background: linear-gradient(140deg, var(--fail-bg), var(--hero-verdict-bg));
  box-shadow: var(--fail-glow);
}
.hero-verdict .label {
  font-size: 0.78rem;
  letter-spacing: 0.06em;
  text-transform: uppercase;
  color: var(--muted);
  font-weight: 700;
}
.hero-verdict.pass .label { color: var(--ok); }
.hero-verdict.fail .label { color: var(--fail); }
.hero-kpis {
  display: grid;
  grid-template-columns: repeat(2, minmax(0, 1fr));
  gap: 8px;
}
.hero-kpi {
  border: 1px solid var(--line);
  border-radius: 10px;
  background: var(--panel-2);
  padding: 7px 8px;
}
.hero-kpi .k {
  font-size: 0.75rem;
  color: var(--muted);
  text-transform: uppercase;
  letter-spacing: 0.04em;
}
.hero-kpi .v {
  margin-top: 2px;
  font-size: 1.05rem;
  font-weight: 700;
}
.pills { margin-top: 2px; }
.pill {
  display: inline-flex;
  align-items: center;
  border-radius: 999px;
  padding: 0.2rem 0.66rem;
  font-size: 0.78rem;
  font-weight: 700;
  margin-right: 0.3rem;
  border: 1px solid var(--line);
  background: var(--chip);
  color: var(--ink);
}
.pass { background: var(--ok-bg); color: var(--ok); border-color: var(--pass-border); box-shadow: var(--pass-glow); }
.warn { background: var(--warn-bg); color: var(--warn); border-color: var(--warn-border); box-shadow: var(--warn-glow); }
.fail { background: var(--fail-bg); color: var(--fail); border-color: var(--fail-border); box-shadow: var(--fail-glow); }
.card {
  background: var(--panel);
  border: 1px solid var(--line);
  border-radius: var(--radius);
  box-shadow: var(--shadow);
  padding: 13px;
  animation: rise-in .3s ease both;
}
.section-block { margin-top: 12px; }
h2 {
  margin: 0;
  font-size: 1.01rem;
  color: var(--heading);
}
.section-head {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 10px;
  margin-bottom: 10px;
}
.badge {
  display: inline-block;
  border-radius: 999px;
  padding: 0.16rem 0.58rem;
  font-size: 0.79rem;
  font-weight: 700;
  background: var(--chip);
  border: 1px solid var(--line);
  color: var(--badge-ink);
}
.meaning {
  font-weight: 700;
}
.meaning-pass { color: var(--ok); }
.meaning-warn { color: var(--warn); }
.meaning-fail { color: var(--fail); }
.meaning-neutral { color: var(--brand); }
.summary-grid {
  display: grid;
  grid-template-columns: 1.1fr 1fr;
  gap: 12px;
  margin-top: 12px;
}
.summary-list {
  list-style: none;
  margin: 0;
  padding: 0;
}
.summary-list li {
  margin-top: 8px;
  padding: 8px 10px;
  border-radius: 10px;
  border: 1px solid var(--line);
  background: var(--panel-2);
}
.note {
  color: var(--muted);
  font-size: 0.94rem;
  margin: 7px 0 0;
}
.row {
  display: grid;
  grid-template-columns: 1.25fr 1fr;
  gap: 12px;
  margin-top: 12px;
}
.meter { margin-top: 10px; }
.meter-top {
  display: flex;
  justify-content: space-between;
  font-size: 0.92rem;
  color: var(--muted);
}
.track {
  margin-top: 6px;
  width: 100%;
  height: 11px;
  border-radius: 999px;
  background: var(--track-bg);
  overflow: hidden;
  border: 1px solid var(--track-line);
}
.fill { height: 100%; border-radius: 999px; }
.fill-critical { background: linear-gradient(90deg, var(--fill-critical-a), var(--fill-critical-b)); }
.fill-high { background: linear-gradient(90deg, var(--fill-high-a), var(--fill-high-b)); }
.fill-medium { background: linear-gradient(90deg, var(--fill-medium-a), var(--fill-medium-b)); }
.fill-low { background: linear-gradient(90deg, var(--fill-low-a), var(--fill-low-b)); }
.fill-unknown { background: linear-gradient(90deg, var(--fill-unknown-a), var(--fill-unknown-b)); }
.grid-2 {
  display: grid;
  grid-template-columns: 1fr 1fr;
  gap: 12px;
  margin-top: 12px;
}
ul.clean {
  list-style: none;
  margin: 0;
  padding: 0;
}
ul.clean li {
  margin-top: 8px;
  padding: 10px;
  border-radius: 10px;
  border: 1px solid var(--line);
  background: var(--panel-2);
}
ul.clean ul.inner {
  list-style: none;
  margin: 8px 0 0;
  padding: 0 0 0 14px;
  border-left: 2px solid var(--line);
}
ul.clean ul.inner li {
  margin-top: 6px;
  padding: 6px 8px;
  font-size: 0.88rem;
}
.table-wrap {
  overflow: auto;
  border: 1px solid var(--line);
  border-radius: 12px;
  background: var(--panel);
}
table {
  width: 100%;
  border-collapse: collapse;
  background: var(--panel);
  font-size: 0.92rem;
}
caption {
  text-align: left;
  color: var(--muted);
  padding: 10px 10px 0;
  font-size: 0.87rem;
}
th, td {
  border-bottom: 1px solid var(--line);
  padding: 9px;
  text-align: left;
  vertical-align: top;
  white-space: normal;
  overflow-wrap: anywhere;
}
th {
  position: sticky;
  top: 0;
  background: var(--table-head);
  color: var(--table-head-ink);
  white-space: nowrap;
}
.nowrap { white-space: nowrap; }
.mono {
  font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
}
footer {
  margin-top: 12px;
  color: var(--muted);
  font-size: 0.9rem;
  text-align: center;
  padding-bottom: 8px;
}
@keyframes rise-in {
  from { opacity: 0; transform: translateY(4px); }
  to { opacity: 1; transform: translateY(0); }
}
@media (prefers-reduced-motion: reduce) {
  .card { animation: none; }
}
@media (max-width: 1120px) {
  .hero-grid { grid-template-columns: 1fr; }
  .row { grid-template-columns: 1fr; }
  .summary-grid { grid-template-columns: 1fr; }
}
@media (max-width: 760px) {
  .shell { padding: 14px; }
  .hero-top { align-items: flex-start; flex-direction: column; }
  .hero-kpis { grid-template-columns: 1fr; }
  .grid-2 { grid-template-columns: 1fr; }
  th, td { font-size: 0.85rem; }
}
</style>`)
	b.WriteString("</head><body><a class=\"skip-link\" href=\"#main-content\">Skip to main content</a><main id=\"main-content\" class=\"shell\">")

	fmt.Fprintf(&b, "<section class=\"hero\" aria-labelledby=\"report-title\"><div class=\"hero-grid\"><div class=\"hero-main\"><div class=\"hero-top\"><h1 id=\"report-title\">security-gate run report</h1><button id=\"theme-toggle\" class=\"theme-toggle\" type=\"button\" aria-pressed=\"false\">Theme</button></div><div class=\"meta\">Machine-authoritative output remains <span class=\"mono\">report.json</span>; this HTML is an operator briefing view.</div><div class=\"meta meta-line\">Run ID: <span class=\"mono\">%s</span></div><div class=\"meta meta-line\">Generated: %s</div><div class=\"meta meta-line\">Policy: <span class=\"mono\">%s</span> (%s)</div></div><aside class=\"hero-verdict %s\" aria-label=\"Verdict snapshot\"><div class=\"label\">Gate Verdict</div><div class=\"pills\"><span class=\"pill %s\">%s</span><span class=\"pill\">Exit: %d</span></div><div class=\"hero-kpis\"><div class=\"hero-kpi\"><div class=\"k\">Findings</div><div class=\"v\">%d</div></div><div class=\"hero-kpi\"><div class=\"k\">Rules</div><div class=\"v\">%d</div></div><div class=\"hero-kpi\"><div class=\"k\">Violations</div><div class=\"v\">%d</div></div><div class=\"hero-kpi\"><div class=\"k\">Skipped Reports</div><div class=\"v\">%d</div></div></div></aside></div></section>", esc(report.RunID), esc(report.GeneratedAt), esc(report.PolicyID), esc(report.PolicyName), verdictClassName, verdictClassName, verdictLabel(report.Passed), report.ExitCode, len(report.Findings), len(report.RuleEvaluations), len(report.Violations), len(report.SkippedSources))

	b.WriteString("<section class=\"summary-grid\" aria-label=\"Verdict summary and run facts\">")
	b.WriteString("<article class=\"card\" aria-labelledby=\"summary-title\"><div class=\"section-head\"><h2 id=\"summary-title\">Verdict Summary</h2><span class=\"badge\">Deterministic text</span></div><ul class=\"summary-list\">")
	for i, line := range strings.Split(report.Summary, "\n") {
		text := strings.TrimPrefix(line, "- ")
		if i == 0 {
			fmt.Fprintf(&b, "<li><strong class=\"meaning %s\">%s</strong></li>", meaningClassForVerdict(report.Passed), esc(text))
			continue
		}
		fmt.Fprintf(&b, "<li>%s</li>", esc(text))
	}
	b.WriteString("</ul></article>")

	b.WriteString("<article class=\"card\" aria-labelledby=\"facts-title\"><div class=\"section-head\"><h2 id=\"facts-title\">Run Facts</h2><span class=\"badge\">From report.json</span></div><ul class=\"summary-list\">")
	fmt.Fprintf(&b, "<li><strong>Inputs:</strong> %d report file(s) hashed, <span class=\"meaning %s\">%d read failure(s)</span>.</li>", len(report.Inputs), meaningClassForCount(badInputs), badInputs)
	fmt.Fprintf(&b, "<li><strong>Skipped sources:</strong> <span class=\"meaning %s\">%d</span> report(s) excluded after parse errors.</li>", meaningClassForCount(len(report.SkippedSources)), len(report.SkippedSources))
	fmt.Fprintf(&b, "<li><strong>Baseline:</strong> %d finding(s) carried a baseline match and were excluded from rule matching.</li>", baselineKnown)
	fmt.Fprintf(&b, "<li><strong>CVSS coverage:</strong> %d of %d finding(s) carry a numeric score.</li>", scored, len(report.Findings))
	b.WriteString("</ul></article></section>")

	b.WriteString("<section class=\"row\" aria-label=\"Severity distribution and rule outcomes\">")
	b.WriteString("<article class=\"card\" aria-labelledby=\"severity-title\"><div class=\"section-head\"><h2 id=\"severity-title\">Severity Distribution</h2><span class=\"badge\">Normalized findings</span></div>")
	severityOrder := []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}
	for _, sev := range severityOrder {
		count := severityCounts[sev]
		pct := 0
		if len(report.Findings) > 0 {
			pct = (count * 100) / len(report.Findings)
		}
		fmt.Fprintf(&b, "<div class=\"meter\"><div class=\"meter-top\"><span>%s</span><strong>%d (%d%%)</strong></div><div class=\"track\"><div class=\"fill %s\" style=\"width:%d%%\"></div></div></div>", esc(strings.ToUpper(sev)), count, pct, severityFillClass(sev), pct)
	}
	b.WriteString("<p class=\"note\">Unknown severities are retained in output and never satisfy a threshold.</p></article>")

	b.WriteString("<article class=\"card\" aria-labelledby=\"violations-title\"><div class=\"section-head\"><h2 id=\"violations-title\">Violations</h2>")
	if len(report.Violations) == 0 {
		b.WriteString("<span class=\"pill pass\">None</span></div><p class=\"note\">Every policy rule stayed within its configured limit.</p>")
	} else {
		fmt.Fprintf(&b, "<span class=\"pill fail\">%d</span></div><ul class=\"clean\">", len(report.Violations))
		for _, v := range report.Violations {
			fmt.Fprintf(&b, "<li><strong class=\"mono\">%s</strong> <span class=\"meaning meaning-fail\">%d matching</span>, %s<br><span class=\"note\">%s</span>", esc(v.Rule.ID), v.ActualCount, esc(ruleLimitText(v.Rule)), esc(ruleScopeText(v.Rule)))
			if len(v.MatchingFindings) > 0 {
				b.WriteString("<ul class=\"inner\">")
				for _, f := range v.MatchingFindings {
					fmt.Fprintf(&b, "<li><span class=\"mono\">%s</span> %s <span class=\"mono\">%s</span></li>", esc(f.Identifier), esc(strings.ToUpper(f.Severity)), esc(f.Location))
				}
				b.WriteString("</ul>")
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</article></section>")

	b.WriteString("<section class=\"card section-block\" aria-labelledby=\"rules-title\"><div class=\"section-head\"><h2 id=\"rules-title\">Rule Evaluations</h2><span class=\"badge\">Policy declaration order</span></div>")
	b.WriteString("<div class=\"table-wrap\"><table><caption>Every policy rule with its matching count and outcome</caption><thead><tr><th scope=\"col\">rule_id</th><th scope=\"col\">category</th><th scope=\"col\">scope</th><th scope=\"col\">limit</th><th scope=\"col\" class=\"nowrap\">matching</th><th scope=\"col\" class=\"nowrap\">outcome</th></tr></thead><tbody>")
	for _, ev := range report.RuleEvaluations {
		outcome := "<span class=\"pill pass\">ok</span>"
		if ev.Violated {
			outcome = "<span class=\"pill fail\">VIOLATED</span>"
		}
		fmt.Fprintf(&b, "<tr><td class=\"mono\">%s</td><td class=\"mono\">%s</td><td>%s</td><td class=\"nowrap\">%s</td><td class=\"nowrap\">%d</td><td class=\"nowrap\">%s</td></tr>", esc(ev.Rule.ID), esc(ev.Rule.Category), esc(ruleScopeText(ev.Rule)), esc(ruleLimitText(ev.Rule)), ev.MatchingCount, outcome)
	}
	b.WriteString("</tbody></table></div></section>")

	b.WriteString("<section class=\"card section-block\" aria-labelledby=\"findings-title\"><div class=\"section-head\"><h2 id=\"findings-title\">Findings Table</h2><span class=\"badge\">Normalized</span></div>")
	b.WriteString("<div class=\"table-wrap\"><table><caption>Normalized findings in report order</caption><thead><tr><th scope=\"col\">source</th><th scope=\"col\">category</th><th scope=\"col\">severity</th><th scope=\"col\">identifier</th><th scope=\"col\" class=\"nowrap\">cvss</th><th scope=\"col\">location</th><th scope=\"col\" class=\"nowrap\">baseline</th><th scope=\"col\">origin</th></tr></thead><tbody>")
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "<tr><td class=\"nowrap\">%s</td><td class=\"nowrap\">%s</td><td>%s</td><td class=\"mono\">%s</td><td class=\"nowrap\">%s</td><td class=\"mono\">%s</td><td class=\"nowrap\">%s</td><td class=\"mono\">%s:%d</td></tr>", esc(f.Source), esc(f.Category), esc(strings.ToUpper(f.Severity)), esc(f.Identifier), cvssCell(f.CVSSScore), esc(f.Location), yesNo(f.BaselineKnown), esc(f.SourceFile), f.SourceIndex)
	}
	b.WriteString("</tbody></table></div></section>")

	b.WriteString("<section class=\"grid-2\" aria-label=\"Skipped sources and next steps\">")
	if len(report.SkippedSources) == 0 {
		b.WriteString("<article class=\"card\" aria-labelledby=\"skipped-title\"><div class=\"section-head\"><h2 id=\"skipped-title\">Skipped Sources</h2><span class=\"pill pass\">None</span></div><p class=\"note\">All supplied reports parsed cleanly.</p></article>")
	} else {
		b.WriteString("<article class=\"card\" aria-labelledby=\"skipped-title\"><div class=\"section-head\"><h2 id=\"skipped-title\">Skipped Sources</h2><span class=\"pill warn\">on_parse_error: skip</span></div><ul class=\"clean\">")
		for _, s := range report.SkippedSources {
			fmt.Fprintf(&b, "<li><span class=\"mono\">%s</span> <span class=\"mono\">%s</span><br><span class=\"note\">%s</span></li>", esc(s.Category), esc(s.Path), esc(s.Reason))
		}
		b.WriteString("</ul><p class=\"note\">Skipped reports contribute zero findings. Their rules still evaluate.</p></article>")
	}

	b.WriteString("<article class=\"card\" aria-labelledby=\"steps-title\"><div class=\"section-head\"><h2 id=\"steps-title\">Recommended Next Steps</h2><span class=\"badge\">Catalog IDs</span></div>")
	if len(report.RecommendedSteps) == 0 {
		b.WriteString("<p class=\"note\">No additional steps were required for this verdict.</p>")
	} else {
		sortedSteps := append([]RecommendedStep(nil), report.RecommendedSteps...)
		sort.Slice(sortedSteps, func(i, j int) bool {
			if sortedSteps[i].Priority != sortedSteps[j].Priority {
				return sortedSteps[i].Priority < sortedSteps[j].Priority
			}
			return sortedSteps[i].ID < sortedSteps[j].ID
		})
		b.WriteString("<ul class=\"clean\">")
		for i, s := range sortedSteps {
			fmt.Fprintf(&b, "<li><strong>Step %d:</strong> <strong class=\"mono\">%s</strong><br>%s</li>", i+1, esc(s.ID), esc(s.Text))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</article></section>")

	b.WriteString("<section class=\"card section-block\" aria-labelledby=\"inputs-title\"><div class=\"section-head\"><h2 id=\"inputs-title\">Input Provenance</h2><span class=\"badge\">SHA-256 trace</span></div>")
	fmt.Fprintf(&b, "<p class=\"note\">Input files: %d | Read failures: %d</p>", len(report.Inputs), badInputs)
	b.WriteString("<div class=\"table-wrap\"><table><caption>Input digests and readability</caption><thead><tr><th scope=\"col\">kind</th><th scope=\"col\">role</th><th scope=\"col\">category</th><th scope=\"col\">path</th><th scope=\"col\">sha256</th><th scope=\"col\" class=\"nowrap\">read_ok</th></tr></thead><tbody>")
	for _, in := range report.Inputs {
		fmt.Fprintf(&b, "<tr><td class=\"nowrap\">%s</td><td class=\"nowrap\">%s</td><td class=\"nowrap\">%s</td><td class=\"mono\">%s</td><td class=\"mono\">%s</td><td class=\"nowrap\">%s</td></tr>", esc(in.Kind), esc(firstNonEmpty(in.Role, "-")), esc(firstNonEmpty(in.Category, "-")), esc(in.Path), esc(in.SHA256), yesNo(in.ReadOK))
	}
	b.WriteString("</tbody></table></div></section>")

	b.WriteString("<footer>Non-authoritative visualization generated from report.json. For machine decisions, consume report.json only.</footer>")
	b.WriteString(`<script>(function(){var key='security_gate_theme';var root=document.documentElement;var btn=document.getElementById('theme-toggle');function theme(){return root.getAttribute('data-theme')==='light'?'light':'dark'}function apply(t){root.setAttribute('data-theme',t)}function sync(){if(!btn){return}var t=theme();btn.textContent=t==='dark'?'Light theme':'Dark theme';btn.setAttribute('aria-label',t==='dark'?'Switch to light theme':'Switch to dark theme');btn.setAttribute('aria-pressed',t==='dark'?'true':'false')}sync();if(btn){btn.addEventListener('click',function(){var next=theme()==='dark'?'light':'dark';apply(next);try{localStorage.setItem(key,next)}catch(_){}sync()})}})();</script>`)
	b.WriteString("</main></body></html>")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func verdictClass(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

func verdictLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}

func meaningClassForVerdict(passed bool) string {
	if passed {
		return "meaning-pass"
	}
	return "meaning-fail"
}

func meaningClassForCount(v int) string {
	if v > 0 {
		return "meaning-fail"
	}
	return "meaning-pass"
}

func esc(s string) string {
	return html.EscapeString(s)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func severityFillClass(sev string) string {
	switch strings.ToLower(sev) {
	case SeverityCritical:
		return "fill-critical"
	case SeverityHigh:
		return "fill-high"
	case SeverityMedium:
		return "fill-medium"
	case SeverityLow:
		return "fill-low"
	default:
		return "fill-unknown"
	}
}

// ruleScopeText describes which findings a rule matches, mirroring the
// precedence used during evaluation.
func ruleScopeText(r policy.Rule) string {
	switch {
	case r.MinCVSS != nil:
		return fmt.Sprintf("findings with CVSS >= %.1f", *r.MinCVSS)
	case r.SeverityThreshold != "":
		return fmt.Sprintf("findings at or above %s", r.SeverityThreshold)
	default:
		return "all findings in category"
	}
}

func ruleLimitText(r policy.Rule) string {
	if r.MaxCount != nil {
		return fmt.Sprintf("at most %d allowed", *r.MaxCount)
	}
	return "none allowed"
}

func cvssCell(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}
