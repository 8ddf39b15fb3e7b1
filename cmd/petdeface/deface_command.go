package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"petdeface/internal/services"
	"petdeface/internal/workflow"
)

// runReport is the JSON outcome of a defacing run.
type runReport struct {
	Status          string       `json:"status"`
	ErrorKind       string       `json:"error_kind,omitempty"`
	Message         string       `json:"message,omitempty"`
	ExitCode        int          `json:"exit_code"`
	RunID           string       `json:"run_id,omitempty"`
	Phase           string       `json:"phase,omitempty"`
	Subject         string       `json:"subject,omitempty"`
	T1Session       string       `json:"t1_session,omitempty"`
	PETSession      string       `json:"pet_session,omitempty"`
	FallbackSubject bool         `json:"fallback_subject,omitempty"`
	Command         []string     `json:"command,omitempty"`
	Outputs         []copyReport `json:"outputs,omitempty"`
	Unchanged       []string     `json:"unchanged_outputs,omitempty"`
	DurationSeconds float64      `json:"duration_seconds,omitempty"`
}

type copyReport struct {
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (f inputFlags) validate() error {
	var missing []string
	if strings.TrimSpace(f.t1) == "" {
		missing = append(missing, "--t1_file")
	}
	if strings.TrimSpace(f.pet) == "" {
		missing = append(missing, "--pet_file")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "", "parse flags", "missing required flag(s) "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func runDeface(cmd *cobra.Command, ctx *commandContext, inputs inputFlags) error {
	if err := inputs.validate(); err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := ctx.newLogger(runID)
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	driver := workflow.NewDriver(logger, workflow.WithRunIDs(func() string { return runID }))
	res, runErr := driver.Run(signalCtx, workflow.Request{
		T1:     strings.TrimSpace(inputs.t1),
		PET:    strings.TrimSpace(inputs.pet),
		Config: cfg,
	})

	if ctx.JSONMode() {
		report := resultReport(res, runErr)
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
		if runErr != nil {
			return reportedError{err: runErr}
		}
		return nil
	}
	if runErr != nil {
		return runErr
	}
	printRunResult(cmd, res)
	return nil
}

func resultReport(res workflow.Result, err error) runReport {
	report := runReport{
		Status:          "succeeded",
		RunID:           res.RunID,
		Phase:           string(res.Phase),
		Subject:         res.Identifiers.Subject,
		T1Session:       res.Identifiers.T1Session,
		PETSession:      res.Identifiers.PETSession,
		FallbackSubject: res.Identifiers.Fallback,
		DurationSeconds: res.Duration.Seconds(),
		Unchanged:       res.Unchanged,
	}
	if res.Binary != "" {
		report.Command = append([]string{res.Binary}, res.Args...)
	}
	for _, c := range res.Copies {
		report.Outputs = append(report.Outputs, copyReport{Kind: c.Kind, Source: c.Source, Destination: c.Destination})
	}
	if err != nil {
		report.Status = "failed"
		report.ErrorKind = services.Kind(err)
		report.Message = err.Error()
		report.ExitCode = services.ExitCode(err)
	}
	return report
}

// failureReport describes an error raised before a run could start.
func failureReport(err error) runReport {
	return runReport{
		Status:    "failed",
		ErrorKind: services.Kind(err),
		Message:   err.Error(),
		ExitCode:  services.ExitCode(err),
	}
}

func printRunResult(cmd *cobra.Command, res workflow.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Defaced %s in %s (run %s)\n", res.Identifiers.Subject, res.Duration.Round(time.Second), res.RunID)
	if len(res.Copies) == 0 {
		fmt.Fprintln(out, "Results mode is none; no files were copied back")
		return
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTable(out, []string{"Output", "Written To"}, copyRows(res.Copies), nil))
}
