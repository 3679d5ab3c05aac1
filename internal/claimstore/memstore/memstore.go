// Package memstore provides an in-memory implementation of claimstore.Store.
// Suitable for dev and testing; the console runs against it when no
// database URL is configured.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
)

// Store holds claims in memory behind a single lock. All reads return
// copies so callers can never alias internal state.
type Store struct {
	mu     sync.RWMutex
	claims map[string]*claim.Claim            // claim ID -> row
	audits map[string][]claimstore.AuditEntry // claim ID -> entries
	now    func() time.Time
}

// New initializes an empty in-memory Store.
func New() *Store {
	return &Store{
		claims: make(map[string]*claim.Claim),
		audits: make(map[string][]claimstore.AuditEntry),
		now:    time.Now,
	}
}

// SetClock pins the store clock; tests use it for deterministic timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put inserts or replaces a claim row, assigning an ID if absent.
// It is the seeding entry point; console mutations go through the
// conditional methods below.
func (s *Store) Put(c claim.Claim) claim.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := c
	s.claims[c.ID] = &cp
	return c
}

// FetchPool returns the scoped, non-terminal claim pool ordered
// (updated_at desc, id desc), honoring the query filters and anchor, up to
// Limit+1 rows so the caller can detect truncation.
func (s *Store) FetchPool(_ context.Context, scope claimstore.Scope, q claimstore.PoolQuery) ([]claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))

	var out []claim.Claim
	for _, c := range s.claims {
		if c.TenantID != scope.TenantID || c.Status.Terminal() {
			continue
		}
		if !scope.AllowsBranch(c.BranchID) {
			continue
		}
		if q.Branch != "" && c.BranchID != q.Branch {
			continue
		}
		if q.Lifecycle != "" && claim.StageOf(c.Status) != q.Lifecycle {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Number), search) &&
			!strings.Contains(strings.ToLower(c.Title), search) {
			continue
		}
		if !q.Anchor.IsZero() && !q.Anchor.Covers(c.UpdatedAt, c.ID) {
			continue
		}
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit+1 {
		out = out[:q.Limit+1]
	}
	return out, nil
}

// Get retrieves a claim by ID within the scope. Returns a copy.
func (s *Store) Get(_ context.Context, scope claimstore.Scope, id string) (*claim.Claim, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.locked(scope, id)
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

// Assign sets the assignee on a claim.
func (s *Store) Assign(_ context.Context, scope claimstore.Scope, claimID, assigneeID, assigneeName, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.locked(scope, claimID)
	if !ok {
		return claimstore.ErrNotFound
	}
	now := s.now()
	c.AssigneeID = assigneeID
	c.AssigneeName = assigneeName
	c.AssignedAt = &now
	c.UpdatedAt = now

	s.audit(scope, claimID, actorID, "assign", map[string]string{"assignee_id": assigneeID})
	return nil
}

// Unassign clears the assignee on a claim.
func (s *Store) Unassign(_ context.Context, scope claimstore.Scope, claimID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.locked(scope, claimID)
	if !ok {
		return claimstore.ErrNotFound
	}
	c.AssigneeID = ""
	c.AssigneeName = ""
	c.AssignedAt = nil
	c.UpdatedAt = s.now()

	s.audit(scope, claimID, actorID, "unassign", nil)
	return nil
}

// UpdateStatus writes from -> to as a conditional single-row update: the
// move must be in the policy graph and the row must still be at from.
func (s *Store) UpdateStatus(_ context.Context, scope claimstore.Scope, claimID string, from, to claim.Status, actorID string) error {
	if !claim.Allowed(from, to) {
		return claimstore.ErrIllegalTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.locked(scope, claimID)
	if !ok {
		return claimstore.ErrNotFound
	}
	if c.Status != from {
		return claimstore.ErrStale
	}
	now := s.now()
	c.Status = to
	c.StatusChangedAt = &now
	c.UpdatedAt = now

	s.audit(scope, claimID, actorID, "update_status", map[string]string{
		"from": string(from),
		"to":   string(to),
	})
	return nil
}

// AckSLA records an SLA-breach acknowledgement.
func (s *Store) AckSLA(_ context.Context, scope claimstore.Scope, claimID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.locked(scope, claimID)
	if !ok {
		return claimstore.ErrNotFound
	}
	now := s.now()
	c.SLAAckedAt = &now
	c.UpdatedAt = now

	s.audit(scope, claimID, actorID, "ack_sla", nil)
	return nil
}

// Poke records a reminder nudge to the member.
func (s *Store) Poke(_ context.Context, scope claimstore.Scope, claimID, actorID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locked(scope, claimID); !ok {
		return claimstore.ErrNotFound
	}
	detail := map[string]string{}
	if message != "" {
		detail["message"] = message
	}
	s.audit(scope, claimID, actorID, "poke", detail)
	return nil
}

// Audit returns the audit trail of a claim, newest first.
func (s *Store) Audit(_ context.Context, scope claimstore.Scope, claimID string) ([]claimstore.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.locked(scope, claimID); !ok {
		return nil, claimstore.ErrNotFound
	}
	entries := s.audits[claimID]
	out := make([]claimstore.AuditEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

// locked fetches a claim within the scope. Callers hold s.mu.
func (s *Store) locked(scope claimstore.Scope, id string) (*claim.Claim, bool) {
	c, ok := s.claims[id]
	if !ok || c.TenantID != scope.TenantID || !scope.AllowsBranch(c.BranchID) {
		return nil, false
	}
	return c, true
}

// audit appends an entry. Callers hold s.mu.
func (s *Store) audit(scope claimstore.Scope, claimID, actorID, action string, detail map[string]string) {
	s.audits[claimID] = append(s.audits[claimID], claimstore.AuditEntry{
		ID:       ulid.Make().String(),
		TenantID: scope.TenantID,
		ClaimID:  claimID,
		ActorID:  actorID,
		Action:   action,
		Detail:   detail,
		At:       s.now(),
	})
}
