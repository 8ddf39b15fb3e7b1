// Package config loads, normalizes, and validates petdeface configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML, JSON, or YAML files chosen by extension. A plain config.json with
// only n_procs and placement, the historical pipeline format, is a valid
// configuration.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
