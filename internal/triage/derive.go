package triage

import (
	"time"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// Derive maps a raw claim row to its operational view as of now. It is a
// total function: malformed rows degrade to safe defaults (the stage/owner
// projections handle unrecognized statuses) instead of failing, so a single
// corrupt row cannot break the whole triage view.
func Derive(c *claim.Claim, now time.Time) Row {
	r := Row{
		ID:           c.ID,
		Number:       c.Number,
		Title:        c.Title,
		Category:     c.Category,
		MemberID:     c.MemberID,
		BranchID:     c.BranchID,
		Status:       c.Status,
		AssigneeID:   c.AssigneeID,
		AssigneeName: c.AssigneeName,
		WaitingOn:    c.WaitingOn,
		Stage:        claim.StageOf(c.Status),
		Owner:        claim.OwnerOf(c.Status),
		UpdatedAt:    c.UpdatedAt,
	}

	r.StageStartedAt = stageStart(c)
	r.DaysInStage = daysSince(r.StageStartedAt, now)

	if threshold, ok := claim.StuckThreshold(c.Status); ok {
		r.Stuck = r.DaysInStage >= threshold
	}
	r.SLABreach = r.Stuck

	r.Unassigned = c.AssigneeID == "" &&
		claim.StaffOwned(c.Status) &&
		!c.Status.Terminal()

	return r
}

// stageStart picks the first populated timestamp from the ordered sources:
// status change, update, assignment, creation.
func stageStart(c *claim.Claim) time.Time {
	if c.StatusChangedAt != nil && !c.StatusChangedAt.IsZero() {
		return *c.StatusChangedAt
	}
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	if c.AssignedAt != nil && !c.AssignedAt.IsZero() {
		return *c.AssignedAt
	}
	return c.CreatedAt
}

func daysSince(start, now time.Time) int {
	d := int(now.Sub(start) / (24 * time.Hour))
	if d < 0 {
		return 0
	}
	return d
}
