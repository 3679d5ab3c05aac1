package triage

import (
	"sort"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// maxOverviewStaff caps the per-staff workload list in the sidebar.
const maxOverviewStaff = 10

// needsAction reports whether a row matches any of the three risk flags.
// KPI and overview counters share this single definition so a claim
// matching two criteria still counts once.
func needsAction(r *Row) bool {
	return r.SLABreach ||
		(r.Unassigned && claim.StaffOwned(r.Status)) ||
		r.Stuck
}

// ComputeKPIs aggregates the global queue counters in a single linear pass
// over the full, unfiltered derived pool. It must run before any
// list-display filtering so the sidebar numbers reflect the whole visible
// universe regardless of what the list pane currently shows.
func ComputeKPIs(rows []Row, actingStaffID string) KPISet {
	var k KPISet
	k.TotalOpen = len(rows)

	for i := range rows {
		r := &rows[i]

		if r.SLABreach {
			k.SLABreach++
		}
		if r.Stuck {
			k.Stuck++
		}
		if r.Unassigned && claim.StaffOwned(r.Status) {
			k.Unassigned++
		}
		if r.WaitingOn == claim.PartyMember && !r.Status.Terminal() {
			k.WaitingOnMember++
		}
		if actingStaffID != "" && r.AssigneeID == actingStaffID &&
			claim.StaffOwned(r.Status) && !r.Status.Terminal() {
			k.AssignedToMe++
		}
		if needsAction(r) {
			k.NeedsAction++
		}
	}
	return k
}

// ComputeAssigneeOverview buckets the non-terminal, staff-owned rows of the
// full pool into the acting user's load, the unassigned backlog, and
// per-staff loads. The per-staff list covers every assigned staff member
// (the acting user included, so each sidebar entry agrees with its
// staff:<id> list filter), sorted by a fully deterministic four-key
// tie-break and truncated to the top entries.
func ComputeAssigneeOverview(rows []Row, actingStaffID string) Overview {
	ov := Overview{
		Me: StaffLoad{ID: actingStaffID},
	}
	byStaff := make(map[string]*StaffLoad)

	for i := range rows {
		r := &rows[i]
		if r.Status.Terminal() || !claim.StaffOwned(r.Status) {
			continue
		}

		needs := needsAction(r)

		if r.AssigneeID == "" {
			ov.Unassigned.CountOpen++
			if needs {
				ov.Unassigned.CountNeedsAction++
			}
			continue
		}

		if actingStaffID != "" && r.AssigneeID == actingStaffID {
			ov.Me.CountOpen++
			if needs {
				ov.Me.CountNeedsAction++
			}
		}

		load, ok := byStaff[r.AssigneeID]
		if !ok {
			load = &StaffLoad{ID: r.AssigneeID, Name: r.AssigneeName}
			byStaff[r.AssigneeID] = load
		}
		if load.Name == "" {
			load.Name = r.AssigneeName
		}
		load.CountOpen++
		if needs {
			load.CountNeedsAction++
		}
	}

	staff := make([]StaffLoad, 0, len(byStaff))
	for _, load := range byStaff {
		staff = append(staff, *load)
	}
	sort.Slice(staff, func(i, j int) bool {
		a, b := &staff[i], &staff[j]
		if a.CountOpen != b.CountOpen {
			return a.CountOpen > b.CountOpen
		}
		if a.CountNeedsAction != b.CountNeedsAction {
			return a.CountNeedsAction > b.CountNeedsAction
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	if len(staff) > maxOverviewStaff {
		staff = staff[:maxOverviewStaff]
	}
	ov.Staff = staff

	return ov
}
