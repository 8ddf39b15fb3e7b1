// Package workflow drives a single defacing run from input paths to copied
// results.
//
// A Driver is constructed once with its collaborators (pipeline executor,
// environment lookup, install directory, logger) and runs immutable Requests.
// Each run moves through a fixed sequence of phases:
//
//	start -> identifiers_resolved -> staged -> config_loaded -> dispatched -> collected -> succeeded
//
// Any error moves the run to failed. Identifier conflicts are detected before
// anything touches the filesystem, and the run workspace is removed on every
// exit path once it exists. There is no resumption; a failed run starts over.
//
// Plan performs the identifier and layout resolution without side effects so
// the CLI can preview a run.
package workflow
