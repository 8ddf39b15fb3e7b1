// Package petdeface mediates access to the containerized petdeface pipeline.
//
// It builds the fixed-shape container invocation for the configured runtime,
// runs it as a single blocking subprocess, and streams its stdout and stderr
// line by line to the caller. Tests inject an Executor to observe the argument
// list and to fabricate pipeline output without a container runtime.
package petdeface
