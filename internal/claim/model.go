// Package claim defines the claim domain model: the raw claim row, the
// status lifecycle with its stage/owner projections, the status-transition
// policy graph, and the pool resume anchor.
package claim

import "time"

// Claim is a raw claim row as fetched from the store. All triage state is
// derived from it per request; nothing here is computed.
type Claim struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	TenantID string `json:"tenant_id"`
	BranchID string `json:"branch_id"`
	MemberID string `json:"member_id"`

	Title    string `json:"title"`
	Category string `json:"category"`

	Status Status `json:"status"`

	// AssigneeID is the staff member working the claim, empty if unassigned.
	AssigneeID   string `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`

	// WaitingOn is supplied by policy when the claim blocks on a party.
	// Empty means no recorded wait; it is never defaulted to member.
	WaitingOn Party `json:"waiting_on,omitempty"`

	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	SLAAckedAt      *time.Time `json:"sla_acked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
