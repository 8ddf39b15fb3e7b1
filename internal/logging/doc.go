// Package logging assembles structured slog loggers and formatting helpers used
// across the defacing driver.
//
// It owns the configurable console/JSON handlers, an optional JSON file tee,
// per-component level overrides, and run ID stamping. Context-aware helpers
// tag log lines with the driver phase and subject label. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
