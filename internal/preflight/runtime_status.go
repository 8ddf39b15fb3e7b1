package preflight

import (
	"fmt"

	"petdeface/internal/deps"
)

// FromDeps converts dependency statuses to preflight results. Optional
// dependencies always pass; their detail still notes when they are missing.
func FromDeps(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Command
		if status.Detail != "" {
			detail = fmt.Sprintf("%s (%s)", status.Command, status.Detail)
		}
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available || status.Optional,
			Detail: detail,
		})
	}
	return results
}
