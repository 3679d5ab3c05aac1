// Package pgstore provides a PostgreSQL implementation of claimstore.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
)

var tracer = otel.Tracer("github.com/linnemanlabs/claimdesk/internal/claimstore/pgstore")

//go:embed schema.sql
var schema string

// terminalStatuses is pushed into pool queries so closed claims never
// leave the database.
var terminalStatuses = func() []string {
	var out []string
	for _, s := range claim.Statuses {
		if s.Terminal() {
			out = append(out, string(s))
		}
	}
	return out
}()

// Store persists claims in PostgreSQL. The pool is owned by the caller.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const claimColumns = `id, number, tenant_id, branch_id, member_id, title, category, status,
	assignee_id, assignee_name, waiting_on, status_changed_at, assigned_at, sla_acked_at,
	created_at, updated_at`

// Put inserts or replaces a claim row. Intake pipelines and tests seed
// through it; console mutations go through the conditional methods.
func (s *Store) Put(ctx context.Context, c *claim.Claim) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	query := `INSERT INTO claims (` + claimColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	ON CONFLICT (id) DO UPDATE SET
		number            = EXCLUDED.number,
		branch_id         = EXCLUDED.branch_id,
		member_id         = EXCLUDED.member_id,
		title             = EXCLUDED.title,
		category          = EXCLUDED.category,
		status            = EXCLUDED.status,
		assignee_id       = EXCLUDED.assignee_id,
		assignee_name     = EXCLUDED.assignee_name,
		waiting_on        = EXCLUDED.waiting_on,
		status_changed_at = EXCLUDED.status_changed_at,
		assigned_at       = EXCLUDED.assigned_at,
		sla_acked_at      = EXCLUDED.sla_acked_at,
		updated_at        = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		c.ID, c.Number, c.TenantID, c.BranchID, c.MemberID, c.Title, c.Category,
		string(c.Status), c.AssigneeID, c.AssigneeName, string(c.WaitingOn),
		c.StatusChangedAt, c.AssignedAt, c.SLAAckedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert claim: %w", err)
	}
	return nil
}

// FetchPool returns the scoped non-terminal pool ordered
// (updated_at desc, id desc), up to Limit+1 rows.
func (s *Store) FetchPool(ctx context.Context, scope claimstore.Scope, q claimstore.PoolQuery) ([]claim.Claim, error) {
	ctx, span := tracer.Start(ctx, "pgstore.FetchPool", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	args := []any{scope.TenantID, terminalStatuses}
	where := []string{"tenant_id = $1", "NOT (status = ANY($2))"}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(scope.BranchIDs) > 0 {
		where = append(where, "branch_id = ANY("+arg(scope.BranchIDs)+")")
	}
	if q.Branch != "" {
		where = append(where, "branch_id = "+arg(q.Branch))
	}
	if q.Lifecycle != "" {
		var statuses []string
		for _, st := range claim.StatusesInStage(q.Lifecycle) {
			statuses = append(statuses, string(st))
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		p := arg("%" + escapeLike(search) + "%")
		where = append(where, "(number ILIKE "+p+" OR title ILIKE "+p+")")
	}
	if !q.Anchor.IsZero() {
		where = append(where, "(updated_at, id) <= ("+arg(q.Anchor.UpdatedAt)+", "+arg(q.Anchor.ID)+")")
	}

	query := `SELECT ` + claimColumns + ` FROM claims WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY updated_at DESC, id DESC`
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit+1)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query pool: %w", err)
	}
	defer rows.Close()

	var out []claim.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate pool: %w", err)
	}
	return out, nil
}

// Get retrieves a claim by ID within the scope.
func (s *Store) Get(ctx context.Context, scope claimstore.Scope, id string) (*claim.Claim, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 AND tenant_id = $2`
	args := []any{id, scope.TenantID}
	if len(scope.BranchIDs) > 0 {
		query += " AND branch_id = ANY($3)"
		args = append(args, scope.BranchIDs)
	}

	c, err := scanClaimRow(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// Assign sets the assignee on a claim.
func (s *Store) Assign(ctx context.Context, scope claimstore.Scope, claimID, assigneeID, assigneeName, actorID string) error {
	return s.mutate(ctx, "pgstore.Assign", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockClaim(ctx, tx, scope, claimID); err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err := tx.Exec(ctx,
			`UPDATE claims SET assignee_id = $2, assignee_name = $3, assigned_at = $4, updated_at = $4 WHERE id = $1`,
			claimID, assigneeID, assigneeName, now,
		)
		if err != nil {
			return fmt.Errorf("update assignee: %w", err)
		}
		return insertAudit(ctx, tx, scope, claimID, actorID, "assign", map[string]string{"assignee_id": assigneeID}, now)
	})
}

// Unassign clears the assignee on a claim.
func (s *Store) Unassign(ctx context.Context, scope claimstore.Scope, claimID, actorID string) error {
	return s.mutate(ctx, "pgstore.Unassign", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockClaim(ctx, tx, scope, claimID); err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err := tx.Exec(ctx,
			`UPDATE claims SET assignee_id = '', assignee_name = '', assigned_at = NULL, updated_at = $2 WHERE id = $1`,
			claimID, now,
		)
		if err != nil {
			return fmt.Errorf("clear assignee: %w", err)
		}
		return insertAudit(ctx, tx, scope, claimID, actorID, "unassign", nil, now)
	})
}

// UpdateStatus writes from -> to as a conditional update: the move must be
// in the policy graph and the row must still be at from.
func (s *Store) UpdateStatus(ctx context.Context, scope claimstore.Scope, claimID string, from, to claim.Status, actorID string) error {
	if !claim.Allowed(from, to) {
		return claimstore.ErrIllegalTransition
	}
	return s.mutate(ctx, "pgstore.UpdateStatus", func(ctx context.Context, tx pgx.Tx) error {
		c, err := lockClaim(ctx, tx, scope, claimID)
		if err != nil {
			return err
		}
		if c.Status != from {
			return claimstore.ErrStale
		}
		now := time.Now().UTC()
		_, err = tx.Exec(ctx,
			`UPDATE claims SET status = $2, status_changed_at = $3, updated_at = $3 WHERE id = $1`,
			claimID, string(to), now,
		)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return insertAudit(ctx, tx, scope, claimID, actorID, "update_status", map[string]string{
			"from": string(from),
			"to":   string(to),
		}, now)
	})
}

// AckSLA records an SLA-breach acknowledgement.
func (s *Store) AckSLA(ctx context.Context, scope claimstore.Scope, claimID, actorID string) error {
	return s.mutate(ctx, "pgstore.AckSLA", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockClaim(ctx, tx, scope, claimID); err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err := tx.Exec(ctx,
			`UPDATE claims SET sla_acked_at = $2, updated_at = $2 WHERE id = $1`,
			claimID, now,
		)
		if err != nil {
			return fmt.Errorf("ack sla: %w", err)
		}
		return insertAudit(ctx, tx, scope, claimID, actorID, "ack_sla", nil, now)
	})
}

// Poke records a reminder nudge to the member.
func (s *Store) Poke(ctx context.Context, scope claimstore.Scope, claimID, actorID, message string) error {
	return s.mutate(ctx, "pgstore.Poke", func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockClaim(ctx, tx, scope, claimID); err != nil {
			return err
		}
		var detail map[string]string
		if message != "" {
			detail = map[string]string{"message": message}
		}
		return insertAudit(ctx, tx, scope, claimID, actorID, "poke", detail, time.Now().UTC())
	})
}

// Audit returns the audit trail of a claim, newest first.
func (s *Store) Audit(ctx context.Context, scope claimstore.Scope, claimID string) ([]claimstore.AuditEntry, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Audit", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	if _, ok, err := s.Get(ctx, scope, claimID); err != nil {
		return nil, err
	} else if !ok {
		return nil, claimstore.ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, claim_id, actor_id, action, detail, at
		 FROM claim_audit WHERE claim_id = $1 AND tenant_id = $2
		 ORDER BY at DESC, id DESC`,
		claimID, scope.TenantID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var out []claimstore.AuditEntry
	for rows.Next() {
		var (
			e          claimstore.AuditEntry
			detailJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ClaimID, &e.ActorID, &e.Action, &detailJSON, &e.At); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &e.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate audit: %w", err)
	}
	return out, nil
}

// mutate runs fn in a transaction under a span. Sentinel errors pass
// through unwrapped so callers can match them with errors.Is.
func (s *Store) mutate(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	if err := fn(ctx, tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// lockClaim selects a claim FOR UPDATE within the scope.
func lockClaim(ctx context.Context, tx pgx.Tx, scope claimstore.Scope, id string) (*claim.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 AND tenant_id = $2`
	args := []any{id, scope.TenantID}
	if len(scope.BranchIDs) > 0 {
		query += " AND branch_id = ANY($3)"
		args = append(args, scope.BranchIDs)
	}
	query += " FOR UPDATE"

	c, err := scanClaimRow(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimstore.ErrNotFound
	}
	return c, nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, scope claimstore.Scope, claimID, actorID, action string, detail map[string]string, at time.Time) error {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO claim_audit (id, tenant_id, claim_id, actor_id, action, detail, at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ulid.Make().String(), scope.TenantID, claimID, actorID, action, detailJSON, at,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// scanClaimRow scans a single row. Returns (nil, nil) when no row matched.
func scanClaimRow(row pgx.Row) (*claim.Claim, error) {
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanClaim(row pgx.Row) (*claim.Claim, error) {
	var (
		c         claim.Claim
		status    string
		waitingOn string
	)
	err := row.Scan(
		&c.ID, &c.Number, &c.TenantID, &c.BranchID, &c.MemberID, &c.Title, &c.Category, &status,
		&c.AssigneeID, &c.AssigneeName, &waitingOn, &c.StatusChangedAt, &c.AssignedAt, &c.SLAAckedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	c.Status = claim.Status(status)
	c.WaitingOn = claim.Party(waitingOn)
	return &c, nil
}

// escapeLike neutralizes LIKE metacharacters in user search input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
