package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devsecops-lab/security-gate/internal/config"
	"github.com/devsecops-lab/security-gate/internal/gate"
	"github.com/devsecops-lab/security-gate/internal/policy"
	enginereport "github.com/devsecops-lab/security-gate/internal/report"
)

// gateCategories fixes the order report flags are collected in, so the same
// invocation always produces the same findings order.
var gateCategories = []string{
	gate.CategorySAST,
	gate.CategorySCA,
	gate.CategoryContainer,
	gate.CategoryDAST,
	gate.CategorySecrets,
	gate.CategoryIAC,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "security-gate error:", err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "security-gate",
		Short:         "Policy-driven security gate for CI pipelines",
		Long:          "security-gate evaluates scanner reports against a YAML policy and fails the pipeline when a rule is violated. Exit codes: 0 pass, 1 fail, 2 error.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newEvaluateCmd(), newValidateCmd(), newInitCmd())
	return cmd
}

type categoryInputs struct {
	primary  []string
	baseline []string
}

func newEvaluateCmd() *cobra.Command {
	var (
		policyPath      string
		outJSON         string
		outHTML         string
		checksumsPath   string
		runLogPath      string
		noHTML          bool
		debug           bool
		newFindingsOnly bool
	)
	inputs := make(map[string]*categoryInputs, len(gateCategories))

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate scanner reports against a policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			envCfg, err := config.Load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(policyPath) == "" {
				policyPath = envCfg.PolicyPath
			}
			if strings.TrimSpace(outJSON) == "" {
				outJSON = envCfg.OutJSONPath
			}
			if strings.TrimSpace(outHTML) == "" {
				outHTML = envCfg.OutHTMLPath
			}
			if strings.TrimSpace(checksumsPath) == "" {
				checksumsPath = envCfg.ChecksumsPath
			}
			if strings.TrimSpace(runLogPath) == "" {
				runLogPath = envCfg.RunLogPath
			}
			writeHTML := envCfg.WriteHTML
			if noHTML {
				writeHTML = false
			}

			var reports []gate.ReportInput
			for _, c := range gateCategories {
				for _, p := range inputs[c].primary {
					reports = append(reports, gate.ReportInput{Category: c, Path: p, Role: gate.RolePrimary})
				}
				for _, p := range inputs[c].baseline {
					reports = append(reports, gate.ReportInput{Category: c, Path: p, Role: gate.RoleBaseline})
				}
			}

			report, err := gate.Run(gate.Config{
				PolicyPath:      policyPath,
				Reports:         reports,
				NewFindingsOnly: newFindingsOnly,
				OutJSONPath:     outJSON,
				OutHTMLPath:     outHTML,
				ChecksumsPath:   checksumsPath,
				RunLogPath:      runLogPath,
				WriteHTML:       writeHTML,
				Debug:           debug || envCfg.Debug,
			})
			if err != nil {
				return err
			}

			if strings.TrimSpace(checksumsPath) == "" {
				checksumsPath = enginereport.DefaultChecksumsPath(outJSON)
			}
			if strings.TrimSpace(runLogPath) == "" {
				runLogPath = enginereport.DefaultRunLogPath(outJSON)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary)
			fmt.Fprintf(cmd.OutOrStdout(), "report=%s checksums=%s run_log=%s exit_code=%d\n", outJSON, checksumsPath, runLogPath, report.ExitCode)
			if report.ExitCode != 0 {
				os.Exit(report.ExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyPath, "config", "c", "", "Path to policy YAML (or SECURITY_GATE_POLICY)")
	for _, c := range gateCategories {
		in := &categoryInputs{}
		inputs[c] = in
		cmd.Flags().StringArrayVar(&in.primary, c, nil, fmt.Sprintf("Path to %s report JSON (repeatable)", c))
		cmd.Flags().StringArrayVar(&in.baseline, "baseline-"+c, nil, fmt.Sprintf("Path to baseline %s report JSON (repeatable, used with --new-findings-only)", c))
	}
	cmd.Flags().BoolVar(&newFindingsOnly, "new-findings-only", false, "Evaluate only findings not present in baseline reports")
	cmd.Flags().StringVar(&outJSON, "out-json", "", `Output report.json path (default "report.json")`)
	cmd.Flags().StringVar(&outHTML, "out-html", "", `Output report.html path (default "report.html")`)
	cmd.Flags().StringVar(&checksumsPath, "checksums", "", "Output checksums.sha256 path (default next to out-json)")
	cmd.Flags().StringVar(&runLogPath, "run-log", "", "Output run log path (default next to out-json)")
	cmd.Flags().BoolVar(&noHTML, "no-html", false, "Disable report.html output")
	cmd.Flags().BoolVar(&debug, "debug", false, "Verbose run log, mirrored to stderr")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var policyPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a policy file without running the gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(policyPath) == "" {
				envCfg, err := config.Load()
				if err != nil {
					return err
				}
				policyPath = envCfg.PolicyPath
			}
			pol, hash, err := policy.Load(policyPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy %s ok: %d rule(s), sha256 %s\n", policyPath, len(pol.Rules), hash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&policyPath, "config", "c", "", "Path to policy YAML (or SECURITY_GATE_POLICY)")
	return cmd
}

func newInitCmd() *cobra.Command {
	var outPath string
	var withEnv bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter policy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := policy.WriteStarter(outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote starter policy %s\n", outPath)
			if withEnv {
				if err := config.WriteTemplate("security-gate.env"); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "wrote env template security-gate.env")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "security-gate.yaml", "Starter policy path")
	cmd.Flags().BoolVar(&withEnv, "with-env", false, "Also write a commented security-gate.env template")
	return cmd
}
