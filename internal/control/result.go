// internal/control/result.go
package control

// Outcome classifies what a command-mode symbol did.
type Outcome uint8

const (
	Unhandled Outcome = iota
	HandledSilently
	HandledWithAck
)

func (o Outcome) String() string {
	switch o {
	case HandledSilently:
		return "silent"
	case HandledWithAck:
		return "ack"
	default:
		return "unhandled"
	}
}

// Result is the evaluation of one symbol. Symbol is kept for Unhandled so
// the caller can report it.
type Result struct {
	Outcome Outcome
	Symbol  byte
}

// combine merges the lockable-tier and always-tier results. The tiers are
// disjoint, so at most one of them is handled.
func combine(lockable, always Result) Result {
	if lockable.Outcome != Unhandled {
		return lockable
	}
	return always
}
