package gate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devsecops-lab/security-gate/internal/logging"
	"github.com/devsecops-lab/security-gate/internal/policy"
	enginereport "github.com/devsecops-lab/security-gate/internal/report"
)

// Run executes one full gate evaluation: digest inputs, load the policy,
// parse scanner reports, evaluate rules and write the report artifacts.
// Errors returned here mean the gate could not produce a verdict; a failing
// verdict is a normal report with ExitCode 1.
func Run(cfg Config) (Report, error) {
	if strings.TrimSpace(cfg.OutJSONPath) == "" {
		cfg.OutJSONPath = "report.json"
	}
	if strings.TrimSpace(cfg.OutHTMLPath) == "" {
		cfg.OutHTMLPath = "report.html"
	}
	if strings.TrimSpace(cfg.ChecksumsPath) == "" {
		cfg.ChecksumsPath = enginereport.DefaultChecksumsPath(cfg.OutJSONPath)
	}
	if strings.TrimSpace(cfg.RunLogPath) == "" {
		cfg.RunLogPath = enginereport.DefaultRunLogPath(cfg.OutJSONPath)
	}

	log, closeLog := logging.NewRunLogger(cfg.RunLogPath, cfg.Debug)
	defer closeLog()
	log.Infow("run.start",
		"policy_path", cfg.PolicyPath,
		"report_count", len(cfg.Reports),
		"new_findings_only", cfg.NewFindingsOnly,
		"out_json", cfg.OutJSONPath,
		"out_html", cfg.OutHTMLPath,
		"checksums", cfg.ChecksumsPath,
	)

	if err := validateConfig(cfg); err != nil {
		log.Warnw("run.config.error", "error", err.Error())
		return Report{}, err
	}

	pol, polHash, err := policy.Load(cfg.PolicyPath)
	digests := []InputDigest{{Kind: "policy_yaml", Path: cfg.PolicyPath, SHA256: polHash, ReadOK: err == nil}}
	if err != nil {
		log.Warnw("run.policy.error", "error", err.Error())
		return Report{}, err
	}

	var findings []Finding
	var baseline []Finding
	var skipped []SkippedSource
	for _, in := range cfg.Reports {
		if in.Role == RoleBaseline && !cfg.NewFindingsOnly {
			continue
		}
		hash, payload, readErr := fileSHA256(in.Path)
		digests = append(digests, InputDigest{
			Kind:     "report_json",
			Role:     in.Role,
			Category: in.Category,
			Path:     in.Path,
			SHA256:   hash,
			ReadOK:   readErr == nil,
		})
		if readErr != nil {
			log.Warnw("run.report.unreadable", "category", in.Category, "path", in.Path, "error", readErr.Error())
			return Report{}, fmt.Errorf("report file unreadable %s: %w", in.Path, readErr)
		}
		parsed, parseErr := parseReport(in.Category, in.Path, payload)
		if parseErr != nil {
			if pol.Settings.OnParseError == policy.OnParseErrorSkip {
				skipped = append(skipped, SkippedSource{Category: in.Category, Path: in.Path, Reason: parseErr.Error()})
				log.Warnw("run.report.skipped", "category", in.Category, "path", in.Path, "error", parseErr.Error())
				continue
			}
			log.Warnw("run.report.parse_error", "category", in.Category, "path", in.Path, "error", parseErr.Error())
			return Report{}, parseErr
		}
		if in.Role == RoleBaseline {
			baseline = append(baseline, parsed...)
		} else {
			findings = append(findings, parsed...)
		}
	}
	log.Infow("run.load_inputs.ok",
		"input_count", len(digests),
		"finding_count", len(findings),
		"baseline_finding_count", len(baseline),
		"skipped_count", len(skipped),
	)

	if cfg.NewFindingsOnly {
		matched := markBaselineKnown(findings, baseline)
		log.Infow("run.baseline_diff.ok",
			"baseline_findings", len(baseline),
			"matched", matched,
			"new", len(findings)-matched,
		)
	}

	result := Evaluate(activeFindings(findings), pol.Rules)
	exitCode := 0
	if !result.Passed {
		exitCode = 1
	}
	log.Infow("run.evaluate.ok",
		"rules", len(result.Evaluations),
		"violations", len(result.Violations),
		"passed", result.Passed,
	)

	rep := Report{
		SchemaVersion:    "1.0.0",
		GeneratedAt:      "1970-01-01T00:00:00Z",
		RunID:            stableRunID(digests),
		Inputs:           digests,
		PolicyID:         pol.PolicyID,
		PolicyName:       pol.PolicyName,
		Passed:           result.Passed,
		ExitCode:         exitCode,
		Findings:         findings,
		RuleEvaluations:  result.Evaluations,
		Violations:       result.Violations,
		SkippedSources:   skipped,
		RecommendedSteps: collectRecommendedSteps(result, findings, skipped, cfg.NewFindingsOnly),
		Summary:          result.Summary,
	}

	if err := enginereport.WriteJSON(cfg.OutJSONPath, rep); err != nil {
		log.Warnw("run.report_json.error", "error", err.Error())
		return Report{}, err
	}
	artifactPaths := []string{cfg.OutJSONPath}
	htmlWritten := false
	if cfg.WriteHTML {
		if err := writeReportHTML(cfg.OutHTMLPath, rep); err != nil {
			log.Warnw("run.report_html.error", "error", err.Error(), "path", cfg.OutHTMLPath)
		} else {
			htmlWritten = true
			artifactPaths = append(artifactPaths, cfg.OutHTMLPath)
		}
	}
	if err := enginereport.WriteChecksums(cfg.ChecksumsPath, artifactPaths); err != nil {
		log.Warnw("run.checksums.error", "error", err.Error())
		return Report{}, err
	}
	log.Infow("run.complete",
		"passed", rep.Passed,
		"exit_code", rep.ExitCode,
		"violations", len(rep.Violations),
		"report_json", cfg.OutJSONPath,
		"html_written", htmlWritten,
		"checksums", cfg.ChecksumsPath,
	)
	return rep, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.PolicyPath) == "" {
		return errors.New("a policy file is required (--config)")
	}
	known := map[string]bool{}
	for _, c := range parsedCategories {
		known[c] = true
	}
	baselineCount := 0
	for _, in := range cfg.Reports {
		if !known[in.Category] {
			return fmt.Errorf("no report format registered for category %q", in.Category)
		}
		switch in.Role {
		case RolePrimary:
		case RoleBaseline:
			baselineCount++
		default:
			return fmt.Errorf("unsupported report role %q for %s", in.Role, in.Path)
		}
	}
	if cfg.NewFindingsOnly && baselineCount == 0 {
		return errors.New("--new-findings-only requires at least one baseline report")
	}
	return nil
}
