// Package preflight provides readiness checks for the binaries, environment,
// and filesystem paths a defacing run depends on.
//
// The "petdeface check" command runs RunAll and renders the results as a
// table. The workflow driver does not call these checks; it reports the same
// conditions as classified errors when a run actually hits them.
package preflight
