package triage

import "github.com/linnemanlabs/claimdesk/internal/claim"

// NextActions recommends what the console should offer for one claim. The
// decision is a first-match-wins ordered rule chain over the derived flags;
// the transition list comes straight from the policy graph so the UI and the
// mutation guard can never disagree.
func NextActions(r *Row, actingStaffID string) Recommendation {
	rec := Recommendation{
		AllowedTransitions: claim.TransitionsFrom(r.Status),
	}

	terminal := r.Status.Terminal()
	staffOwned := claim.StaffOwned(r.Status)
	assigned := r.AssigneeID != ""
	mine := actingStaffID != "" && r.AssigneeID == actingStaffID

	rec.ShowAssignment = staffOwned && !terminal

	switch {
	case terminal && len(rec.AllowedTransitions) > 0:
		rec.Primary = ActionReopen

	case r.SLABreach:
		rec.Primary = ActionAckSLA
		if r.Unassigned && staffOwned && !terminal {
			rec.add(ActionAssign)
		}

	case r.Stuck:
		rec.Primary = ActionReviewBlockers
		if r.Unassigned && staffOwned && !terminal {
			rec.add(ActionAssign)
		}
		rec.add(ActionEscalate)

	case r.Unassigned && staffOwned && !terminal && r.WaitingOn != claim.PartyMember:
		rec.Primary = ActionAssign

	case r.Owner == claim.PartyMember:
		rec.Primary = ActionMessagePoke

	case staffOwned && mine:
		rec.Primary = ActionUpdateStatus

	case staffOwned && assigned:
		rec.Primary = ActionMessageRespond
	}

	// Standing offers, independent of which rule fired.
	if !terminal {
		if staffOwned && assigned {
			rec.add(ActionReassign)
		}
		if len(rec.AllowedTransitions) > 0 {
			rec.add(ActionUpdateStatus)
		}
	}

	return rec
}

// add appends a secondary action, skipping duplicates and the primary.
func (rec *Recommendation) add(a Action) {
	if a == rec.Primary {
		return
	}
	for _, have := range rec.Secondary {
		if have == a {
			return
		}
	}
	rec.Secondary = append(rec.Secondary, a)
}
