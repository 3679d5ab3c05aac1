package claim

// transitions is the status-transition policy graph: the legal forward and
// backward moves from each status. Loaded once, never mutated at runtime.
// It is the single source of truth for both the next-action recommendation
// and the mutation guard that rejects illegal status writes.
var transitions = map[Status][]Status{
	StatusDraft:        {StatusSubmitted},
	StatusSubmitted:    {StatusVerification, StatusEvaluation, StatusRejected},
	StatusVerification: {StatusEvaluation, StatusSubmitted},
	StatusEvaluation:   {StatusNegotiation, StatusVerification, StatusRejected, StatusResolved},
	StatusNegotiation:  {StatusCourt, StatusResolved, StatusEvaluation, StatusRejected},
	StatusCourt:        {StatusResolved, StatusRejected, StatusNegotiation},
	StatusResolved:     {StatusEvaluation, StatusNegotiation},
	StatusRejected:     {StatusEvaluation, StatusSubmitted},
}

// Allowed reports whether a status write from -> to is legal. Writing the
// current status back is always allowed (no-op updates carry audit payloads).
func Allowed(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionsFrom returns the legal moves out of s in a deterministic order.
// The returned slice is a copy; callers may modify it.
func TransitionsFrom(s Status) []Status {
	next := transitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
