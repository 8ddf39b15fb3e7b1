package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"petdeface/internal/preflight"
	"petdeface/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var inputs inputFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the runtime, license, and directories before a run",
		Long: `Run preflight checks: the container runtime is on PATH, the FreeSurfer
license variable points at a readable file, and the staging and install
directories are usable. When -t/-p are given the input files and the PET
sidecar are checked too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			checks := preflight.RunAll(cfg, nil, preflight.Inputs{
				T1:  strings.TrimSpace(inputs.t1),
				PET: strings.TrimSpace(inputs.pet),
			})
			failed := preflight.Failed(checks)
			var failure error
			if failed {
				failure = services.Wrap(services.ErrValidation, "", "preflight", fmt.Sprintf("%d check(s) failed", countFailed(checks)), nil)
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, checkReport(checks)); err != nil {
					return err
				}
				if failure != nil {
					return reportedError{err: failure}
				}
				return nil
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(checks))
			for _, c := range checks {
				rows = append(rows, []string{c.Name, yesNo(c.Passed), c.Detail})
			}
			fmt.Fprint(out, renderTable(out, []string{"Check", "Passed", "Detail"}, rows, nil))
			if failure != nil {
				return failure
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	inputs.register(cmd)
	return cmd
}

type checkResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

func checkReport(checks []preflight.Result) map[string]any {
	out := make([]checkResult, 0, len(checks))
	for _, c := range checks {
		out = append(out, checkResult{Name: c.Name, Passed: c.Passed, Detail: c.Detail})
	}
	return map[string]any{
		"passed": !preflight.Failed(checks),
		"checks": out,
	}
}

func countFailed(checks []preflight.Result) int {
	n := 0
	for _, c := range checks {
		if !c.Passed {
			n++
		}
	}
	return n
}
