// Package staging owns the per-run workspace and the BIDS-shaped input tree
// handed to the defacing pipeline.
//
// A Workspace is a uniquely named directory under the configured staging
// parent. It holds the staged inputs under input/ and the pipeline output
// under the configured output directory name. Close removes the whole tree
// and is safe to call more than once. CleanStale sweeps workspaces left
// behind by runs that were killed before they could clean up.
package staging
