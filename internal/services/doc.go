// Package services defines shared utilities consumed by the defacing driver
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run ID, driver phase, and subject label
//     for logging.
//   - Structured error markers plus the Wrap helper, and the mapping from
//     markers to process exit codes and machine-readable kinds.
//
// Use these helpers when wiring new phases so failures classify the same way
// at the CLI boundary.
package services
