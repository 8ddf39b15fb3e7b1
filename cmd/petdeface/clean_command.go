package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petdeface/internal/staging"
)

const defaultCleanMaxAge = 24 * time.Hour

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale workspaces left behind by interrupted runs",
		Long: `Remove petdeface workspaces from the staging directory that are older
than --max-age. Runs remove their own workspace on exit, so anything left is
from a process that was killed. Other directories are never touched.

Use --list to show the workspaces without removing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagingDir := cfg.ResolveStagingDir()

			if listOnly {
				return listWorkspaces(cmd, ctx, stagingDir)
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}

			logger, err := ctx.newLogger("")
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), stagingDir, maxAge, logger)
			if ctx.JSONMode() {
				return writeCleanJSON(cmd, stagingDir, result)
			}
			return printCleanResult(cmd, result)
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", defaultCleanMaxAge, "Only remove workspaces last modified longer ago than this")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List workspaces instead of removing them")
	return cmd
}

func listWorkspaces(cmd *cobra.Command, ctx *commandContext, stagingDir string) error {
	dirs, err := staging.ListWorkspaces(stagingDir)
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}

	var totalSize int64
	for _, dir := range dirs {
		totalSize += dir.Size
	}

	if ctx.JSONMode() {
		if dirs == nil {
			dirs = []staging.DirInfo{}
		}
		return writeJSON(cmd, map[string]any{
			"staging_dir":      stagingDir,
			"workspaces":       dirs,
			"total_size_bytes": totalSize,
		})
	}

	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No workspaces found")
		return nil
	}

	fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		age := time.Since(dir.ModTime).Truncate(time.Minute)
		rows = append(rows, []string{dir.Name, formatDuration(age), humanBytes(dir.Size)})
	}
	fmt.Fprint(out, renderTable(out,
		[]string{"Workspace", "Age", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	))
	fmt.Fprintf(out, "\nTotal: %d workspaces, %s\n", len(dirs), humanBytes(totalSize))
	return nil
}

func printCleanResult(cmd *cobra.Command, result staging.CleanStaleResult) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No stale workspaces to clean")
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d stale workspaces, %d errors\n", len(result.Removed), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d stale workspaces\n", len(result.Removed))
	return nil
}

func writeCleanJSON(cmd *cobra.Command, stagingDir string, result staging.CleanStaleResult) error {
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
	}
	removed := result.Removed
	if removed == nil {
		removed = []string{}
	}
	return writeJSON(cmd, map[string]any{
		"staging_dir": stagingDir,
		"removed":     removed,
		"errors":      errs,
	})
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
