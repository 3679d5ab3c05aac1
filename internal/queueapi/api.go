// Package queueapi exposes the claims triage console over HTTP: the queue
// list and summary reads, the claim detail view, and the console mutations.
// Every route runs behind the staff token middleware; handlers derive the
// store scope from the verified identity and never widen it.
package queueapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/claimdesk/internal/authmw"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
	"github.com/linnemanlabs/claimdesk/internal/triage"
)

// QueueService defines the triage operations queueapi needs.
type QueueService interface {
	BuildQueue(ctx context.Context, scope claimstore.Scope, req triage.QueueRequest) *triage.QueueView
	ClaimActions(ctx context.Context, scope claimstore.Scope, claimID, actingStaffID string) (*triage.ClaimDetail, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger  log.Logger
	svc     QueueService
	store   claimstore.Store
	metrics *triage.Metrics
}

// New creates a new API handler. metrics may be nil.
func New(logger log.Logger, svc QueueService, store claimstore.Store, m *triage.Metrics) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("queue service is required"))
	}
	if store == nil {
		panic(xerrors.New("claim store is required"))
	}
	return &API{
		logger:  logger,
		svc:     svc,
		store:   store,
		metrics: m,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queue", a.handleQueue)
		r.Get("/queue/summary", a.handleQueueSummary)
		r.Get("/claims/{id}", a.handleClaimDetail)
		r.Post("/claims/{id}/assign", a.handleAssign)
		r.Post("/claims/{id}/unassign", a.handleUnassign)
		r.Post("/claims/{id}/status", a.handleUpdateStatus)
		r.Post("/claims/{id}/ack-sla", a.handleAckSLA)
		r.Post("/claims/{id}/poke", a.handlePoke)
	})
}

// identity pulls the verified staff identity, or fails the request. The
// middleware guarantees it is present on every registered route; the guard
// covers misconfigured test routers.
func (a *API) identity(w http.ResponseWriter, r *http.Request) (*authmw.Identity, bool) {
	id, ok := authmw.FromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
		return nil, false
	}
	return id, true
}

// scopeOf maps the verified identity onto the store scope. Admins see the
// whole tenant; adjusters only the branches in their token.
func scopeOf(id *authmw.Identity) claimstore.Scope {
	return claimstore.Scope{
		TenantID:  id.TenantID,
		BranchIDs: id.BranchIDs,
	}
}

func (a *API) handleQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}

	req := parseQueueRequest(r, id)
	view := a.svc.BuildQueue(r.Context(), scopeOf(id), req)
	a.writeJSON(w, r, http.StatusOK, view)
}

// summaryResponse carries the sidebar state without the list.
type summaryResponse struct {
	KPIs     triage.KPISet   `json:"kpis"`
	Overview triage.Overview `json:"overview"`
}

func (a *API) handleQueueSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}

	req := parseQueueRequest(r, id)
	// The summary ignores the list window; only the pool-defining filters
	// apply.
	req.Priority = triage.BucketNone
	req.Assignee = triage.AssigneeFilter{}
	req.Page = 0

	view := a.svc.BuildQueue(r.Context(), scopeOf(id), req)
	a.writeJSON(w, r, http.StatusOK, summaryResponse{
		KPIs:     view.KPIs,
		Overview: view.Overview,
	})
}

// claimDetailResponse is the single-claim view plus its audit trail.
type claimDetailResponse struct {
	*triage.ClaimDetail
	Audit []claimstore.AuditEntry `json:"audit"`
}

func (a *API) handleClaimDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("claimdesk.claim.id", claimID))

	detail, ok, err := a.svc.ClaimActions(r.Context(), scopeOf(id), claimID, id.StaffID)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load claim detail", "claim_id", claimID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	audit, err := a.store.Audit(r.Context(), scopeOf(id), claimID)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load audit trail", "claim_id", claimID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if audit == nil {
		audit = []claimstore.AuditEntry{}
	}

	a.writeJSON(w, r, http.StatusOK, claimDetailResponse{
		ClaimDetail: detail,
		Audit:       audit,
	})
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error(r.Context(), err, "failed to encode response")
	}
}
