package conversation

// Role tags the speaker of a Turn.
type Role string

// Speaker roles. RoleSystem marks replies produced by the completion service.
const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Turn is one message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Reply is the outcome of a successful exchange.
type Reply struct {
	Text string
	// Tokens is the local estimate from budget.Estimate, not provider usage.
	Tokens int
}

// History is the append-only, chronological record of turns for one run.
// The zero value is an empty history ready for use.
type History struct {
	turns []Turn
}

// Append adds t at the end of the history.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

// Len reports the number of turns recorded so far.
func (h *History) Len() int { return len(h.turns) }

// Turns returns a copy of the recorded turns in order. Callers may keep or
// modify the slice without affecting the history.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
