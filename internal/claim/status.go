package claim

// Status tracks where a claim is in its lifecycle.
type Status string

const (
	// StatusDraft means the member is still composing the claim
	StatusDraft Status = "draft"

	// StatusSubmitted means the claim is awaiting initial staff review
	StatusSubmitted Status = "submitted"

	// StatusVerification means staff are checking documents and coverage
	StatusVerification Status = "verification"

	// StatusEvaluation means staff are assessing damages and liability
	StatusEvaluation Status = "evaluation"

	// StatusNegotiation means a settlement is being negotiated
	StatusNegotiation Status = "negotiation"

	// StatusCourt means the claim is in legal proceedings
	StatusCourt Status = "court"

	// StatusResolved means the claim closed with a settlement
	StatusResolved Status = "resolved"

	// StatusRejected means the claim closed without a settlement
	StatusRejected Status = "rejected"
)

// Statuses lists every claim status in lifecycle order. Tests range over it
// to keep the projections below exhaustive.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusVerification,
	StatusEvaluation,
	StatusNegotiation,
	StatusCourt,
	StatusResolved,
	StatusRejected,
}

// Known reports whether s is one of the eight claim statuses.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusVerification, StatusEvaluation,
		StatusNegotiation, StatusCourt, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further staff action is expected on s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Stage is the coarse lifecycle stage shown in the console, a many-to-one
// projection of Status.
type Stage string

const (
	StageIntake       Stage = "intake"
	StageVerification Stage = "verification"
	StageProcessing   Stage = "processing"
	StageNegotiation  Stage = "negotiation"
	StageLegal        Stage = "legal"
	StageCompleted    Stage = "completed"
)

// StageOf projects a status onto its lifecycle stage. An unrecognized status
// degrades to StageIntake so one corrupt row cannot break the triage view.
func StageOf(s Status) Stage {
	switch s {
	case StatusDraft:
		return StageIntake
	case StatusSubmitted, StatusVerification:
		return StageVerification
	case StatusEvaluation:
		return StageProcessing
	case StatusNegotiation:
		return StageNegotiation
	case StatusCourt:
		return StageLegal
	case StatusResolved, StatusRejected:
		return StageCompleted
	}
	return StageIntake
}

// StatusesInStage returns the statuses projecting onto a lifecycle stage,
// in lifecycle order. Store implementations use it to push the console's
// stage filter down into the pool query.
func StatusesInStage(st Stage) []Status {
	var out []Status
	for _, s := range Statuses {
		if StageOf(s) == st {
			out = append(out, s)
		}
	}
	return out
}

// Party identifies who must act next on a claim.
type Party string

const (
	PartyMember Party = "member"
	PartyStaff  Party = "staff"
	PartySystem Party = "system"
)

// OwnerOf projects a status onto the party that must act next. An
// unrecognized status degrades to PartySystem.
func OwnerOf(s Status) Party {
	switch s {
	case StatusDraft:
		return PartyMember
	case StatusSubmitted, StatusVerification, StatusEvaluation, StatusNegotiation:
		return PartyStaff
	case StatusCourt, StatusResolved, StatusRejected:
		return PartySystem
	}
	return PartySystem
}

// StaffOwned reports whether staff must act next on a claim in status s.
func StaffOwned(s Status) bool {
	return OwnerOf(s) == PartyStaff
}

// stuckThresholdDays holds the per-status age after which a claim counts as
// stuck. Statuses without an entry never go stuck, whatever their age.
var stuckThresholdDays = map[Status]int{
	StatusSubmitted:    3,
	StatusVerification: 5,
	StatusEvaluation:   7,
	StatusNegotiation:  14,
	StatusCourt:        45,
}

// StuckThreshold returns the stuck threshold in days for s, and whether one
// is defined.
func StuckThreshold(s Status) (int, bool) {
	d, ok := stuckThresholdDays[s]
	return d, ok
}
