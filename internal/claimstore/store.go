// Package claimstore defines the persistence contract for claim rows: the
// scoped pool fetch consumed by the triage engine and the single-row
// conditional mutations issued by the console. Implementations live in the
// pgstore and memstore subpackages.
package claimstore

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/claimdesk/internal/claim"
)

// Mutation failure modes. They fail closed: no partial writes, no retry.
var (
	// ErrNotFound means no row matched the tenant+id scope.
	ErrNotFound = xerrors.New("claimstore: claim not found")

	// ErrStale means the conditional update matched zero rows because the
	// claim changed under the caller (e.g. status moved since it was read).
	ErrStale = xerrors.New("claimstore: claim changed concurrently")

	// ErrIllegalTransition means the status write is not in the policy graph.
	ErrIllegalTransition = xerrors.New("claimstore: illegal status transition")
)

// Scope is the tenant/RBAC restriction every store call runs under. The
// triage engine never widens it; an empty BranchIDs list means all branches
// the tenant has.
type Scope struct {
	TenantID  string
	BranchIDs []string
}

// AllowsBranch reports whether the scope covers a branch.
func (s Scope) AllowsBranch(branchID string) bool {
	if len(s.BranchIDs) == 0 {
		return true
	}
	for _, b := range s.BranchIDs {
		if b == branchID {
			return true
		}
	}
	return false
}

// PoolQuery selects the bounded claim pool for one console request.
type PoolQuery struct {
	// Lifecycle narrows to statuses projecting onto one stage; empty = all.
	Lifecycle claim.Stage

	// Branch narrows to one branch within the scope; empty = all in scope.
	Branch string

	// Search is a case-insensitive match against claim number and title.
	Search string

	// Anchor, when set, resumes the pool at (updated_at, id) <= anchor.
	Anchor claim.Anchor

	// Limit bounds the pool. Implementations return up to Limit+1 rows so
	// the caller can detect truncation without a separate count query.
	Limit int
}

// AuditEntry records one console mutation against a claim.
type AuditEntry struct {
	ID       string            `json:"id"`
	TenantID string            `json:"tenant_id"`
	ClaimID  string            `json:"claim_id"`
	ActorID  string            `json:"actor_id"`
	Action   string            `json:"action"`
	Detail   map[string]string `json:"detail,omitempty"`
	At       time.Time         `json:"at"`
}

// Store is the full persistence interface for claims.
//
// FetchPool returns rows pre-scoped by tenant and branch restrictions,
// excluding terminal statuses, ordered (updated_at desc, id desc). Every
// mutation is a single-row, tenant+id-scoped conditional update: zero rows
// affected is an error, never a silent no-op, and each mutation appends an
// audit entry atomically with the write.
type Store interface {
	FetchPool(ctx context.Context, scope Scope, q PoolQuery) ([]claim.Claim, error)
	Get(ctx context.Context, scope Scope, id string) (*claim.Claim, bool, error)

	Assign(ctx context.Context, scope Scope, claimID, assigneeID, assigneeName, actorID string) error
	Unassign(ctx context.Context, scope Scope, claimID, actorID string) error

	// UpdateStatus writes from -> to, rejecting moves outside the policy
	// graph with ErrIllegalTransition and concurrent changes with ErrStale.
	UpdateStatus(ctx context.Context, scope Scope, claimID string, from, to claim.Status, actorID string) error

	// AckSLA records that a staff member acknowledged an SLA breach.
	AckSLA(ctx context.Context, scope Scope, claimID, actorID string) error

	// Poke records a reminder nudge to the member. Delivery is handled by
	// the notification pipeline, not the store.
	Poke(ctx context.Context, scope Scope, claimID, actorID, message string) error

	Audit(ctx context.Context, scope Scope, claimID string) ([]AuditEntry, error)
}
