package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func scope() claimstore.Scope {
	return claimstore.Scope{TenantID: "t1"}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.SetClock(func() time.Time { return now })

	s.Put(claim.Claim{
		ID: "c1", Number: "CLM-0001", TenantID: "t1", BranchID: "b1",
		Title: "Hail damage, roof", Status: claim.StatusSubmitted,
		CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour),
	})
	s.Put(claim.Claim{
		ID: "c2", Number: "CLM-0002", TenantID: "t1", BranchID: "b2",
		Title: "Rear-end collision", Status: claim.StatusEvaluation,
		CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
	})
	s.Put(claim.Claim{
		ID: "c3", Number: "CLM-0003", TenantID: "t1", BranchID: "b1",
		Title: "Stolen bicycle", Status: claim.StatusResolved, // terminal, never pooled
		CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-1 * time.Hour),
	})
	s.Put(claim.Claim{
		ID: "x1", Number: "CLM-0009", TenantID: "t2", BranchID: "b1",
		Title: "Other tenant", Status: claim.StatusSubmitted,
		CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now,
	})
	return s
}

func TestFetchPool_ScopeAndOrdering(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	rows, err := s.FetchPool(context.Background(), scope(), claimstore.PoolQuery{Limit: 10})
	if err != nil {
		t.Fatalf("FetchPool: %v", err)
	}

	// Terminal c3 and foreign-tenant x1 excluded; newest first.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != "c2" || rows[1].ID != "c1" {
		t.Errorf("order = [%s %s], want [c2 c1]", rows[0].ID, rows[1].ID)
	}
}

func TestFetchPool_TieBreakOnID(t *testing.T) {
	t.Parallel()

	s := New()
	at := now.Add(-time.Hour)
	for _, id := range []string{"a", "c", "b"} {
		s.Put(claim.Claim{
			ID: id, Number: "CLM-" + id, TenantID: "t1", BranchID: "b1",
			Status: claim.StatusSubmitted, CreatedAt: at, UpdatedAt: at,
		})
	}

	rows, err := s.FetchPool(context.Background(), scope(), claimstore.PoolQuery{Limit: 10})
	if err != nil {
		t.Fatalf("FetchPool: %v", err)
	}
	if rows[0].ID != "c" || rows[1].ID != "b" || rows[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", rows[0].ID, rows[1].ID, rows[2].ID)
	}
}

func TestFetchPool_BranchScope(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	sc := claimstore.Scope{TenantID: "t1", BranchIDs: []string{"b1"}}

	rows, err := s.FetchPool(context.Background(), sc, claimstore.PoolQuery{Limit: 10})
	if err != nil {
		t.Fatalf("FetchPool: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "c1" {
		t.Fatalf("rows = %v, want only c1 (branch b1)", rows)
	}
}

func TestFetchPool_Filters(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ctx := context.Background()

	rows, _ := s.FetchPool(ctx, scope(), claimstore.PoolQuery{Lifecycle: claim.StageProcessing, Limit: 10})
	if len(rows) != 1 || rows[0].ID != "c2" {
		t.Errorf("lifecycle filter: rows = %v, want only c2", rows)
	}

	rows, _ = s.FetchPool(ctx, scope(), claimstore.PoolQuery{Branch: "b2", Limit: 10})
	if len(rows) != 1 || rows[0].ID != "c2" {
		t.Errorf("branch filter: rows = %v, want only c2", rows)
	}

	rows, _ = s.FetchPool(ctx, scope(), claimstore.PoolQuery{Search: "hail", Limit: 10})
	if len(rows) != 1 || rows[0].ID != "c1" {
		t.Errorf("search by title: rows = %v, want only c1", rows)
	}

	rows, _ = s.FetchPool(ctx, scope(), claimstore.PoolQuery{Search: "clm-0002", Limit: 10})
	if len(rows) != 1 || rows[0].ID != "c2" {
		t.Errorf("search by number: rows = %v, want only c2", rows)
	}
}

func TestFetchPool_AnchorResume(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	anchor := claim.Anchor{UpdatedAt: now.Add(-48 * time.Hour), ID: "c1"}

	rows, err := s.FetchPool(context.Background(), scope(), claimstore.PoolQuery{Anchor: anchor, Limit: 10})
	if err != nil {
		t.Fatalf("FetchPool: %v", err)
	}
	// c2 is newer than the anchor and must not reappear.
	if len(rows) != 1 || rows[0].ID != "c1" {
		t.Fatalf("rows = %v, want only c1 at/behind anchor", rows)
	}
}

func TestFetchPool_LimitPlusOne(t *testing.T) {
	t.Parallel()

	s := New()
	for i := 0; i < 6; i++ {
		s.Put(claim.Claim{
			Number: "CLM", TenantID: "t1", BranchID: "b1",
			Status:    claim.StatusSubmitted,
			CreatedAt: now, UpdatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	rows, err := s.FetchPool(context.Background(), scope(), claimstore.PoolQuery{Limit: 3})
	if err != nil {
		t.Fatalf("FetchPool: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("got %d rows, want limit+1 = 4 for truncation detection", len(rows))
	}
}

func TestAssignAndUnassign(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ctx := context.Background()

	if err := s.Assign(ctx, scope(), "c1", "staff-7", "Dana", "admin-1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	c, ok, _ := s.Get(ctx, scope(), "c1")
	if !ok || c.AssigneeID != "staff-7" || c.AssigneeName != "Dana" {
		t.Fatalf("after Assign: %+v", c)
	}
	if c.AssignedAt == nil || !c.UpdatedAt.Equal(now) {
		t.Error("Assign must stamp assigned_at and touch updated_at")
	}

	if err := s.Unassign(ctx, scope(), "c1", "admin-1"); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	c, _, _ = s.Get(ctx, scope(), "c1")
	if c.AssigneeID != "" || c.AssignedAt != nil {
		t.Errorf("after Unassign: %+v", c)
	}

	if err := s.Assign(ctx, scope(), "missing", "staff-7", "Dana", "admin-1"); !errors.Is(err, claimstore.ErrNotFound) {
		t.Errorf("Assign(missing) = %v, want ErrNotFound", err)
	}
	// Out-of-scope rows behave exactly like missing ones.
	if err := s.Assign(ctx, scope(), "x1", "staff-7", "Dana", "admin-1"); !errors.Is(err, claimstore.ErrNotFound) {
		t.Errorf("Assign(other tenant) = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ctx := context.Background()

	// Legal move.
	if err := s.UpdateStatus(ctx, scope(), "c2", claim.StatusEvaluation, claim.StatusNegotiation, "staff-7"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	c, _, _ := s.Get(ctx, scope(), "c2")
	if c.Status != claim.StatusNegotiation {
		t.Errorf("Status = %s, want %s", c.Status, claim.StatusNegotiation)
	}
	if c.StatusChangedAt == nil {
		t.Error("UpdateStatus must stamp status_changed_at")
	}

	// Off-graph move fails closed before touching the row.
	if err := s.UpdateStatus(ctx, scope(), "c1", claim.StatusSubmitted, claim.StatusCourt, "staff-7"); !errors.Is(err, claimstore.ErrIllegalTransition) {
		t.Errorf("illegal move = %v, want ErrIllegalTransition", err)
	}

	// Stale precondition: row no longer at from.
	if err := s.UpdateStatus(ctx, scope(), "c2", claim.StatusEvaluation, claim.StatusResolved, "staff-7"); !errors.Is(err, claimstore.ErrStale) {
		t.Errorf("stale move = %v, want ErrStale", err)
	}
}

func TestAckSLAAndPoke(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ctx := context.Background()

	if err := s.AckSLA(ctx, scope(), "c1", "staff-7"); err != nil {
		t.Fatalf("AckSLA: %v", err)
	}
	c, _, _ := s.Get(ctx, scope(), "c1")
	if c.SLAAckedAt == nil {
		t.Error("AckSLA must stamp sla_acked_at")
	}

	if err := s.Poke(ctx, scope(), "c1", "staff-7", "please upload the invoice"); err != nil {
		t.Fatalf("Poke: %v", err)
	}

	entries, err := s.Audit(ctx, scope(), "c1")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Action != "poke" || entries[1].Action != "ack_sla" {
		t.Errorf("audit order = [%s %s], want [poke ack_sla]", entries[0].Action, entries[1].Action)
	}
	if entries[0].Detail["message"] != "please upload the invoice" {
		t.Errorf("poke detail = %v", entries[0].Detail)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("audit entries must carry distinct ids")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ctx := context.Background()

	c, _, _ := s.Get(ctx, scope(), "c1")
	c.Title = "mutated"

	again, _, _ := s.Get(ctx, scope(), "c1")
	if again.Title == "mutated" {
		t.Error("Get leaked internal state")
	}
}

func TestPut_AssignsID(t *testing.T) {
	t.Parallel()

	s := New()
	c := s.Put(claim.Claim{TenantID: "t1", BranchID: "b1", Status: claim.StatusDraft, CreatedAt: now, UpdatedAt: now})
	if c.ID == "" {
		t.Fatal("Put left ID empty")
	}
}
