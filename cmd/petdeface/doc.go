// Package main hosts the petdeface CLI entrypoint and command graph.
//
// The root command runs one defacing job for a T1w/PET pair. Subcommands
// preview a run (plan), verify the environment (check), remove workspaces
// left by killed runs (clean), and scaffold or validate configuration. Errors
// are classified by their marker into distinct exit codes, and --json turns
// every outcome into a single JSON document on stdout.
//
// Keep this package thin: behavior lives in internal/workflow and the packages
// it drives; commands here parse flags, load config, and render results.
package main
