package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"petdeface/internal/results"
	"petdeface/internal/workflow"
)

var titleCaser = cases.Title(language.Und)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var inputs inputFlags

	cmd := &cobra.Command{
		Use:   "plan -t T1_FILE -p PET_FILE",
		Short: "Show how a run would stage and process the inputs",
		Long: `Resolve subject and session labels, then print the staging layout, the
pipeline command, and where results would be copied. Nothing is written and
the pipeline is not started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := inputs.validate(); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger("")
			if err != nil {
				return err
			}

			preview, err := workflow.Plan(workflow.Request{
				T1:     strings.TrimSpace(inputs.t1),
				PET:    strings.TrimSpace(inputs.pet),
				Config: cfg,
			}, logger)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, planReport(preview))
			}
			printPlan(cmd, preview)
			return nil
		},
	}
	inputs.register(cmd)
	return cmd
}

func planReport(p workflow.Preview) map[string]any {
	outputs := make([]copyReport, 0, len(p.Copies))
	for _, c := range p.Copies {
		outputs = append(outputs, copyReport{Kind: c.Kind, Source: c.Source, Destination: c.Destination})
	}
	return map[string]any{
		"subject":          p.Identifiers.Subject,
		"t1_session":       p.Identifiers.T1Session,
		"pet_session":      p.Identifiers.PETSession,
		"fallback_subject": p.Identifiers.Fallback,
		"sidecar":          p.Sidecar,
		"workspace":        p.Workspace,
		"staged_t1":        p.StagedT1,
		"staged_pet":       p.StagedPET,
		"command":          append([]string{p.Binary}, p.Args...),
		"outputs":          outputs,
	}
}

func printPlan(cmd *cobra.Command, p workflow.Preview) {
	out := cmd.OutOrStdout()

	subject := p.Identifiers.Subject
	if p.Identifiers.Fallback {
		subject += " (fallback)"
	}
	rows := [][]string{
		{"Subject", subject},
		{"T1 session", orNone(p.Identifiers.T1Session)},
		{"PET session", orNone(p.Identifiers.PETSession)},
		{"Sidecar", p.Sidecar},
		{"Workspace", p.Workspace},
		{"Staged T1", p.StagedT1},
		{"Staged PET", p.StagedPET},
	}
	fmt.Fprint(out, renderTable(out, []string{"Field", "Value"}, rows, nil))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command:")
	fmt.Fprintf(out, "  %s %s\n", p.Binary, strings.Join(p.Args, " "))

	fmt.Fprintln(out)
	if len(p.Copies) == 0 {
		fmt.Fprintln(out, "Results mode is none; nothing would be copied back")
		return
	}
	fmt.Fprint(out, renderTable(out, []string{"Output", "Written To"}, copyRows(p.Copies), nil))
}

func copyRows(copies []results.Copy) [][]string {
	rows := make([][]string, 0, len(copies))
	for _, c := range copies {
		rows = append(rows, []string{kindLabel(c.Kind), filepath.Clean(c.Destination)})
	}
	return rows
}

func kindLabel(kind string) string {
	switch kind {
	case results.KindT1, results.KindPET:
		return strings.ToUpper(kind)
	default:
		return titleCaser.String(kind)
	}
}

func orNone(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
