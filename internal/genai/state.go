package genai

// Per-call retry state machine:
//
//	Idle -> Attempting(n) -> {Success | Retrying -> Attempting(n+1) | Degraded}
//
// Terminal states are Success and Degraded; there is no fatal state exposed
// to callers. The transition function is pure so the policy can be tested
// without a network.

type callState int

const (
	stateIdle callState = iota
	stateAttempting
	stateRetrying
	stateSuccess
	stateDegraded
)

func (s callState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAttempting:
		return "attempting"
	case stateRetrying:
		return "retrying"
	case stateSuccess:
		return "success"
	case stateDegraded:
		return "degraded"
	}
	return "unknown"
}

// attemptOutcome classifies one service call.
type attemptOutcome int

const (
	outcomeOK attemptOutcome = iota
	outcomeRateLimited
	outcomeTransient
)

// attempt tracks one call through the state machine.
type attempt struct {
	state       callState
	n           int // attempts made so far
	maxAttempts int
	// backoff is set when the next attempt must wait (rate-limit signal).
	backoff bool
}

func newAttempt(maxAttempts int) *attempt {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &attempt{state: stateIdle, maxAttempts: maxAttempts}
}

// next reports whether another service call should be made, moving
// Idle/Retrying into Attempting.
func (a *attempt) next() bool {
	switch a.state {
	case stateIdle, stateRetrying:
		a.state = stateAttempting
		a.n++
		return true
	default:
		return false
	}
}

// observe applies the outcome of the current attempt and returns the new
// state. Rate-limited failures request a backoff before the next attempt;
// other transient failures retry immediately. Exhausting the attempt bound
// lands in Degraded.
func (a *attempt) observe(out attemptOutcome) callState {
	if a.state != stateAttempting {
		return a.state
	}
	switch out {
	case outcomeOK:
		a.state = stateSuccess
	case outcomeRateLimited:
		if a.n >= a.maxAttempts {
			a.state = stateDegraded
		} else {
			a.state = stateRetrying
			a.backoff = true
		}
	default:
		if a.n >= a.maxAttempts {
			a.state = stateDegraded
		} else {
			a.state = stateRetrying
			a.backoff = false
		}
	}
	return a.state
}

// shouldBackoff reports whether the next attempt must wait, clearing the flag.
func (a *attempt) shouldBackoff() bool {
	b := a.backoff
	a.backoff = false
	return b
}
