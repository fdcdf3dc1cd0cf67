package ircsasl

// A State tracks the progress of a SASL negotiation.
type State int

const (
	// StateIdle is the initial state: the session exists but the mechanism
	// has not been announced to the server yet.
	StateIdle State = iota

	// StateStarted means the mechanism has been sent and the first server
	// challenge is awaited.
	StateStarted

	// StateAwaitingStep means the exchange is underway: a challenge
	// continuation, or the final numeric, is awaited.
	StateAwaitingStep

	// StateSucceeded means the server accepted the credentials.
	StateSucceeded

	// StateAlreadyAuthenticated means the server reported that the
	// connection was authenticated before the exchange. It is treated as a
	// success.
	StateAlreadyAuthenticated

	// StateFailed means the negotiation terminated with an error: a server
	// failure numeric, an invalid payload or a timeout.
	StateFailed

	// StateClosed means the connection went away mid-negotiation.
	StateClosed
)

// Terminal reports whether the negotiation has concluded. No event has any
// effect on a terminal session.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateAlreadyAuthenticated, StateFailed, StateClosed:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateAwaitingStep:
		return "awaiting-step"
	case StateSucceeded:
		return "succeeded"
	case StateAlreadyAuthenticated:
		return "already-authenticated"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
