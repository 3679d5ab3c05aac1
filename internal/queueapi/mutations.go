package queueapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
)

// The console mutations are thin passthroughs to the store's conditional
// updates. They fail closed: a stale or illegal write surfaces as an error
// status, never a silent no-op.

type assignRequest struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

func (a *API) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	// Empty assignee means self-assign.
	if req.AssigneeID == "" {
		req.AssigneeID = id.StaffID
		req.AssigneeName = id.StaffName
	}

	err := a.store.Assign(r.Context(), scopeOf(id), claimID, req.AssigneeID, req.AssigneeName, id.StaffID)
	a.finishMutation(w, r, "assign", claimID, err)
}

func (a *API) handleUnassign(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	err := a.store.Unassign(r.Context(), scopeOf(id), claimID, id.StaffID)
	a.finishMutation(w, r, "unassign", claimID, err)
}

type statusRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	from, to := claim.Status(req.From), claim.Status(req.To)
	if !from.Known() || !to.Known() {
		http.Error(w, `{"error":"unknown status"}`, http.StatusUnprocessableEntity)
		return
	}

	err := a.store.UpdateStatus(r.Context(), scopeOf(id), claimID, from, to, id.StaffID)
	a.finishMutation(w, r, "update_status", claimID, err)
}

func (a *API) handleAckSLA(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	err := a.store.AckSLA(r.Context(), scopeOf(id), claimID, id.StaffID)
	a.finishMutation(w, r, "ack_sla", claimID, err)
}

type pokeRequest struct {
	Message string `json:"message"`
}

func (a *API) handlePoke(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "id")

	// The body is optional; a bare poke is a valid nudge.
	var req pokeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	err := a.store.Poke(r.Context(), scopeOf(id), claimID, id.StaffID, req.Message)
	a.finishMutation(w, r, "poke", claimID, err)
}

// finishMutation maps store outcomes onto HTTP statuses: not found 404,
// concurrent change 409, illegal transition 422, anything else 500. Every
// outcome is counted per action.
func (a *API) finishMutation(w http.ResponseWriter, r *http.Request, action, claimID string, err error) {
	var outcome string
	switch {
	case err == nil:
		outcome = "ok"
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, claimstore.ErrNotFound):
		outcome = "not_found"
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	case errors.Is(err, claimstore.ErrStale):
		outcome = "stale"
		http.Error(w, `{"error":"claim changed concurrently"}`, http.StatusConflict)
	case errors.Is(err, claimstore.ErrIllegalTransition):
		outcome = "illegal_transition"
		http.Error(w, `{"error":"illegal status transition"}`, http.StatusUnprocessableEntity)
	default:
		outcome = "error"
		a.logger.Error(r.Context(), err, "claim mutation failed", "action", action, "claim_id", claimID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}

	if a.metrics != nil {
		a.metrics.MutationsTotal.WithLabelValues(action, outcome).Inc()
	}
}
