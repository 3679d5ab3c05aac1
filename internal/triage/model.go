package triage

import (
	"time"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// Row is the operational view of a single claim: the raw display fields plus
// everything the console derives per request. Rows are ephemeral - they are
// recomputed on every read and never persisted.
type Row struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Category string `json:"category"`
	MemberID string `json:"member_id"`
	BranchID string `json:"branch_id"`

	Status       claim.Status `json:"status"`
	AssigneeID   string       `json:"assignee_id,omitempty"`
	AssigneeName string       `json:"assignee_name,omitempty"`

	// WaitingOn is carried through from the raw row as supplied by policy.
	// Empty means no recorded wait; it is never defaulted to member.
	WaitingOn claim.Party `json:"waiting_on,omitempty"`

	Stage claim.Stage `json:"stage"`
	Owner claim.Party `json:"owner"`

	StageStartedAt time.Time `json:"stage_started_at"`
	DaysInStage    int       `json:"days_in_stage"`

	Stuck bool `json:"stuck"`

	// SLABreach currently mirrors Stuck; a real SLA clock would replace the
	// derivation in one place without touching its consumers.
	SLABreach bool `json:"sla_breach"`

	// Unassigned is recomputable from (AssigneeID, Status) alone; no other
	// code path may set it independently.
	Unassigned bool `json:"unassigned"`

	UpdatedAt time.Time `json:"updated_at"`
}

// KPISet is the global queue summary shown in the console sidebar. It is
// always computed over the full derived pool, before any list filtering.
type KPISet struct {
	SLABreach       int `json:"sla_breach"`
	Stuck           int `json:"stuck"`
	Unassigned      int `json:"unassigned"`
	WaitingOnMember int `json:"waiting_on_member"`
	AssignedToMe    int `json:"assigned_to_me"`

	// NeedsAction is the cardinality of the union of the three risk flags,
	// never their sum: a claim matching two criteria counts once.
	NeedsAction int `json:"needs_action"`

	TotalOpen int `json:"total_open"`
}

// StaffLoad is one workload bucket in the assignee overview.
type StaffLoad struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	CountOpen        int    `json:"count_open"`
	CountNeedsAction int    `json:"count_needs_action"`
}

// Overview is the per-assignee workload summary: the acting user's bucket,
// the unassigned bucket, and the top staff loads.
type Overview struct {
	Me         StaffLoad   `json:"me"`
	Unassigned StaffLoad   `json:"unassigned"`
	Staff      []StaffLoad `json:"staff"`
}

// Action is a console action the engine can recommend for a claim.
type Action string

const (
	ActionReopen         Action = "reopen"
	ActionAckSLA         Action = "ack_sla"
	ActionReviewBlockers Action = "review_blockers"
	ActionAssign         Action = "assign"
	ActionEscalate       Action = "escalate"
	ActionMessagePoke    Action = "message_poke"
	ActionUpdateStatus   Action = "update_status"
	ActionMessageRespond Action = "message_respond"
	ActionReassign       Action = "reassign"
)

// Recommendation is the next-action output for a single claim.
type Recommendation struct {
	// Primary is empty when no action applies.
	Primary   Action   `json:"primary,omitempty"`
	Secondary []Action `json:"secondary,omitempty"`

	AllowedTransitions []claim.Status `json:"allowed_transitions,omitempty"`

	// ShowAssignment gates the assignment widget: staff-owned and not
	// terminal. (An earlier waiting-on clause was subsumed by this one and
	// has been dropped.)
	ShowAssignment bool `json:"show_assignment"`
}
