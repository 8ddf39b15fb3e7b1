package workflow

import (
	"fmt"
	"log/slog"

	"petdeface/internal/bids"
	"petdeface/internal/config"
	"petdeface/internal/logging"
	"petdeface/internal/services"
)

const (
	subjectKey = "sub"
	sessionKey = "ses"
)

// Identifiers are the labels that place the inputs in the staging tree.
// Sessions are resolved per file and may differ.
type Identifiers struct {
	Subject    string
	T1Session  string
	PETSession string
	Fallback   bool
}

// ResolveIdentifiers extracts subject and session segments from the T1 and
// PET paths. When neither carries a subject, the configured fallback subject
// is used and sessions are dropped. Differing subjects are a conflict. A
// session mismatch is logged and becomes a conflict only when
// cfg.StrictSessions is set.
func ResolveIdentifiers(t1, pet string, cfg *config.Config, logger *slog.Logger) (Identifiers, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	t1Entities := bids.Parse(t1)
	petEntities := bids.Parse(pet)
	for name, entities := range map[string]bids.Entities{"t1": t1Entities, "pet": petEntities} {
		if entities.ForeignSeparators {
			logging.WarnWithContext(logger, "input path uses foreign separators", "foreign_separators",
				logging.String("input", name),
				logging.String(logging.FieldErrorHint, "pass paths using this system's separator"),
				logging.String(logging.FieldImpact, "identifiers resolved on a best-effort split"),
			)
		}
	}

	t1Subject := presentSegment(t1Entities, subjectKey)
	petSubject := presentSegment(petEntities, subjectKey)

	switch {
	case t1Subject == "" && petSubject == "":
		logger.Info("no subject in input paths; using fallback subject",
			logging.Args(logging.DecisionAttrs("subject_fallback", cfg.FallbackSubject, "neither input path carries a subject segment")...)...,
		)
		return Identifiers{Subject: cfg.FallbackSubject, Fallback: true}, nil
	case t1Subject != petSubject:
		return Identifiers{}, services.Wrap(services.ErrIdentifierConflict, string(PhaseStart), opResolve,
			fmt.Sprintf("T1 subject %q does not match PET subject %q", orAbsent(t1Subject), orAbsent(petSubject)), nil)
	}

	ids := Identifiers{
		Subject:    t1Subject,
		T1Session:  presentSegment(t1Entities, sessionKey),
		PETSession: presentSegment(petEntities, sessionKey),
	}
	if ids.T1Session != ids.PETSession {
		if cfg.StrictSessions {
			return Identifiers{}, services.Wrap(services.ErrIdentifierConflict, string(PhaseStart), opResolve,
				fmt.Sprintf("T1 session %q does not match PET session %q", orAbsent(ids.T1Session), orAbsent(ids.PETSession)), nil)
		}
		logging.WarnWithContext(logger, "T1 and PET sessions differ", "session_mismatch",
			logging.String("t1_session", orAbsent(ids.T1Session)),
			logging.String("pet_session", orAbsent(ids.PETSession)),
			logging.String(logging.FieldErrorHint, "confirm the inputs belong to the same visit or set strict_sessions"),
			logging.String(logging.FieldImpact, "inputs staged under their own session directories"),
		)
	}
	return ids, nil
}

// presentSegment returns "<key>-<value>" when key is present with a non-empty
// value. An empty value counts as absent.
func presentSegment(e bids.Entities, key string) string {
	value, ok := e.Lookup(key)
	if !ok || value == "" {
		return ""
	}
	return key + "-" + value
}

func orAbsent(segment string) string {
	if segment == "" {
		return "<none>"
	}
	return segment
}
