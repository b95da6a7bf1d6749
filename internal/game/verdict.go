package game

// Verdict is the dealer's answer to a candidate set
type Verdict int

const (
	VerdictUnset Verdict = iota
	VerdictValid
	VerdictInvalid
	// VerdictMalformed means the selection was not full or referenced a slot
	// vacated before adjudication. No score change, no freeze.
	VerdictMalformed
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	case VerdictMalformed:
		return "malformed"
	default:
		return "unset"
	}
}

// Phase is the dealer's position in its master loop
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseDealing
	PhaseCountingDown
	PhaseCollecting
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseCountingDown:
		return "counting_down"
	case PhaseCollecting:
		return "collecting"
	case PhaseFinished:
		return "finished"
	default:
		return "idle"
	}
}
