package logging

import "strings"

// FormatSubject builds the subject/phase string used in console output,
// e.g. "sub-01 (dispatch)".
func FormatSubject(subject, phase string) string {
	subject = strings.TrimSpace(subject)
	phase = strings.TrimSpace(phase)
	switch {
	case subject != "" && phase != "":
		return subject + " (" + phase + ")"
	case subject != "":
		return subject
	default:
		return phase
	}
}
