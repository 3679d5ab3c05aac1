package queueapi

import (
	"net/http"
	"strconv"

	"github.com/linnemanlabs/claimdesk/internal/authmw"
	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/triage"
)

// Query parameter names of the queue contract. urlstate.go shares them.
const (
	paramLifecycle = "lifecycle"
	paramBranch    = "branch"
	paramAssignee  = "assignee"
	paramSearch    = "search"
	paramPriority  = "priority"
	paramPage      = "page"
	paramAnchor    = "poolAnchor"
)

// parseQueueRequest maps URL query params onto a queue request. Invalid
// values never fail the request: unknown filter values fall back to their
// no-op variant and malformed page/poolAnchor are treated as absent, so a
// stale console URL always renders something sensible.
func parseQueueRequest(r *http.Request, id *authmw.Identity) triage.QueueRequest {
	q := r.URL.Query()

	req := triage.QueueRequest{
		ActingStaffID: id.StaffID,
		Branch:        q.Get(paramBranch),
		Search:        q.Get(paramSearch),
		Assignee:      triage.ParseAssigneeFilter(q.Get(paramAssignee)),
		Priority:      triage.ParsePriorityBucket(q.Get(paramPriority)),
	}

	req.Lifecycle = parseStage(q.Get(paramLifecycle))

	if page, err := strconv.Atoi(q.Get(paramPage)); err == nil && page > 0 {
		req.Page = page
	}

	if anchor, err := claim.ParseAnchor(q.Get(paramAnchor)); err == nil {
		req.Anchor = anchor
	}

	return req
}

// parseStage validates a lifecycle stage value. Unknown values fall back to
// the no-op empty stage.
func parseStage(s string) claim.Stage {
	switch st := claim.Stage(s); st {
	case claim.StageIntake, claim.StageVerification, claim.StageProcessing,
		claim.StageNegotiation, claim.StageLegal, claim.StageCompleted:
		return st
	}
	return ""
}
