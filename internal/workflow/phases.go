package workflow

// Phase names a step of the run state machine.
type Phase string

const (
	PhaseStart               Phase = "start"
	PhaseIdentifiersResolved Phase = "identifiers_resolved"
	PhaseStaged              Phase = "staged"
	PhaseConfigLoaded        Phase = "config_loaded"
	PhaseDispatched          Phase = "dispatched"
	PhaseCollected           Phase = "collected"
	PhaseSucceeded           Phase = "succeeded"
	PhaseFailed              Phase = "failed"
)

// operation labels used for error wrapping and log context.
const (
	opResolve  = "resolve"
	opStage    = "stage"
	opConfig   = "config"
	opDispatch = "dispatch"
	opCollect  = "collect"
)

// Terminal reports whether the run has finished.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}
