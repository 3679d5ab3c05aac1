package triage

import (
	"sort"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// Score weights. SLA breaches are contractual risk and always outrank
// everything else; unassigned staff work is actionable risk; stuck is soft
// risk; age is a tiebreaker capped so very old claims cannot dominate.
const (
	scoreSLABreach  = 1000
	scoreUnassigned = 500
	scoreStuck      = 250
	scoreAgeCap     = 100
)

// Score computes the scalar priority of a row. Higher sorts first.
func Score(r *Row) int {
	s := 0
	if r.SLABreach {
		s += scoreSLABreach
	}
	if r.Unassigned && claim.StaffOwned(r.Status) {
		s += scoreUnassigned
	}
	if r.Stuck {
		s += scoreStuck
	}
	age := r.DaysInStage
	if age > scoreAgeCap {
		age = scoreAgeCap
	}
	return s + age
}

// SortByPriority returns a new slice sorted by score descending. The sort is
// stable - equal-score rows keep their relative input order - and the input
// slice is left untouched.
func SortByPriority(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return Score(&out[i]) > Score(&out[j])
	})
	return out
}
