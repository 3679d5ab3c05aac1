package triage

import (
	"strings"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// PriorityBucket is an in-memory list filter matching one of the derived
// risk buckets. It never feeds the KPI computation.
type PriorityBucket string

const (
	BucketNone          PriorityBucket = ""
	BucketSLA           PriorityBucket = "sla"
	BucketUnassigned    PriorityBucket = "unassigned"
	BucketStuck         PriorityBucket = "stuck"
	BucketWaitingMember PriorityBucket = "waiting_member"
	BucketNeedsAction   PriorityBucket = "needs_action"
	BucketMine          PriorityBucket = "mine"
)

// ParsePriorityBucket validates a bucket value arriving from the URL.
// Unknown values fail closed to the no-op filter, never to an error.
func ParsePriorityBucket(s string) PriorityBucket {
	switch PriorityBucket(s) {
	case BucketSLA, BucketUnassigned, BucketStuck, BucketWaitingMember, BucketNeedsAction, BucketMine:
		return PriorityBucket(s)
	}
	return BucketNone
}

// Match reports whether a row falls in the bucket. Each predicate mirrors
// the corresponding KPI definition so the filtered list and the sidebar
// number it drills into always agree.
func (b PriorityBucket) Match(r *Row, actingStaffID string) bool {
	switch b {
	case BucketSLA:
		return r.SLABreach
	case BucketUnassigned:
		return r.Unassigned && claim.StaffOwned(r.Status)
	case BucketStuck:
		return r.Stuck
	case BucketWaitingMember:
		return r.WaitingOn == claim.PartyMember && !r.Status.Terminal()
	case BucketNeedsAction:
		return needsAction(r)
	case BucketMine:
		return actingStaffID != "" && r.AssigneeID == actingStaffID &&
			claim.StaffOwned(r.Status) && !r.Status.Terminal()
	}
	return true
}

// AssigneeMode selects which assignee the list is narrowed to.
type AssigneeMode string

const (
	AssigneeAll        AssigneeMode = "all"
	AssigneeUnassigned AssigneeMode = "unassigned"
	AssigneeMe         AssigneeMode = "me"
	AssigneeStaff      AssigneeMode = "staff"
)

// AssigneeFilter is the parsed assignee list filter. The zero value is the
// no-op "all" filter.
type AssigneeFilter struct {
	Mode    AssigneeMode
	StaffID string
}

// ParseAssigneeFilter validates an assignee value arriving from the URL:
// all | unassigned | me | staff:<id>. Unknown values (including staff: with
// an empty id) fail closed to "all".
func ParseAssigneeFilter(s string) AssigneeFilter {
	switch AssigneeMode(s) {
	case AssigneeUnassigned:
		return AssigneeFilter{Mode: AssigneeUnassigned}
	case AssigneeMe:
		return AssigneeFilter{Mode: AssigneeMe}
	}
	if id, ok := strings.CutPrefix(s, "staff:"); ok && id != "" {
		return AssigneeFilter{Mode: AssigneeStaff, StaffID: id}
	}
	return AssigneeFilter{Mode: AssigneeAll}
}

// Active reports whether the filter narrows the list at all. An active
// assignee filter changes how hasMore is derived.
func (f AssigneeFilter) Active() bool {
	return f.Mode != AssigneeAll && f.Mode != ""
}

// Match mirrors the staff-ownership and terminal-exclusion rules of the KPI
// bucket definitions: a claim counted in the "Mine" workload bucket must
// also appear when the list is filtered to assignee=me.
func (f AssigneeFilter) Match(r *Row, actingStaffID string) bool {
	switch f.Mode {
	case AssigneeUnassigned:
		return r.Unassigned && claim.StaffOwned(r.Status)
	case AssigneeMe:
		return actingStaffID != "" && r.AssigneeID == actingStaffID &&
			claim.StaffOwned(r.Status) && !r.Status.Terminal()
	case AssigneeStaff:
		return r.AssigneeID == f.StaffID &&
			claim.StaffOwned(r.Status) && !r.Status.Terminal()
	}
	return true
}

// ApplyWindow applies the two independent in-memory list filters. It always
// returns a new slice, never a view into rows.
func ApplyWindow(rows []Row, bucket PriorityBucket, assignee AssigneeFilter, actingStaffID string) []Row {
	out := make([]Row, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if !bucket.Match(r, actingStaffID) {
			continue
		}
		if !assignee.Match(r, actingStaffID) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// Page slices one display page out of the sorted, filtered pool and returns
// it with the number of rows remaining after it. Out-of-range pages yield
// an empty page.
func Page(rows []Row, pageIndex, pageSize int) (page []Row, remaining int) {
	if pageIndex < 0 || pageSize <= 0 {
		return nil, 0
	}
	start := pageIndex * pageSize
	if start >= len(rows) {
		return nil, 0
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], len(rows) - end
}

// HasMore decides whether the console should offer "load more".
//
// With an in-memory assignee filter active the decision comes solely from
// the filtered pool's remainder: the next database page might contain zero
// matching rows, and keying off pool truncation would produce an endless
// "load more with no new results" loop. Without such a filter, a truncated
// database pool also means more.
func HasMore(remaining int, assignee AssigneeFilter, poolTruncated bool) bool {
	if assignee.Active() {
		return remaining > 0
	}
	return remaining > 0 || poolTruncated
}
