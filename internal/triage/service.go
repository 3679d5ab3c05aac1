package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/claimdesk/internal/claim"
	"github.com/linnemanlabs/claimdesk/internal/claimstore"
)

// Default pool and page bounds, overridable via Options.
const (
	DefaultPoolLimit = 500
	DefaultPageSize  = 25
)

// Store is the slice of the claim store the read path needs.
type Store interface {
	FetchPool(ctx context.Context, scope claimstore.Scope, q claimstore.PoolQuery) ([]claim.Claim, error)
	Get(ctx context.Context, scope claimstore.Scope, id string) (*claim.Claim, bool, error)
}

// Notifier receives the periodic ops digest.
type Notifier interface {
	SendDigest(ctx context.Context, d *Digest) error
}

// QueueRequest is one console read of the triage queue.
type QueueRequest struct {
	ActingStaffID string

	// Pool-defining filters (pushed down to the store).
	Lifecycle claim.Stage
	Branch    string
	Search    string

	// In-memory list filters (never applied to KPI inputs).
	Assignee AssigneeFilter
	Priority PriorityBucket

	Page     int
	PageSize int

	// Anchor pins the pool so later pages stay consistent while writers
	// move rows. Zero on the first page of a fresh view.
	Anchor claim.Anchor
}

// QueueView is everything one console request renders: the paged list, the
// sidebar KPIs and workload overview, and the anchor to paginate under.
type QueueView struct {
	KPIs     KPISet   `json:"kpis"`
	Overview Overview `json:"overview"`

	Rows    []Row `json:"rows"`
	Page    int   `json:"page"`
	HasMore bool  `json:"has_more"`

	// Anchor echoes the request anchor, or pins the newest row of a fresh
	// un-anchored fetch. Empty when the pool is empty.
	Anchor string `json:"anchor,omitempty"`
}

// ClaimDetail is the single-claim view: the operational row plus the
// recommended next actions.
type ClaimDetail struct {
	Row            Row            `json:"row"`
	Recommendation Recommendation `json:"recommendation"`
}

// Digest is a point-in-time queue summary for the notification pipeline.
type Digest struct {
	TenantID string
	At       time.Time
	KPIs     KPISet
	// TopRows are the highest-priority queue entries, capped at a handful.
	TopRows []Row
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	PoolLimit int
	PageSize  int
	Notifier  Notifier

	// Now is the clock used for stage-age derivation; tests pin it.
	Now func() time.Time
}

// Service composes the pure engine functions with the claim store into the
// console read path. It holds no mutable state between requests: every call
// fetches a fresh pool and recomputes everything from scratch.
type Service struct {
	store     Store
	logger    log.Logger
	metrics   *Metrics
	notifier  Notifier
	poolLimit int
	pageSize  int
	now       func() time.Time
}

// NewService creates a triage service.
func NewService(store Store, logger log.Logger, m *Metrics, opts Options) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		store:     store,
		logger:    logger,
		metrics:   m,
		notifier:  opts.Notifier,
		poolLimit: opts.PoolLimit,
		pageSize:  opts.PageSize,
		now:       opts.Now,
	}
	if s.poolLimit <= 0 {
		s.poolLimit = DefaultPoolLimit
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// BuildQueue runs one full queue computation: fetch, derive, aggregate,
// rank, window, page. A store failure degrades to an empty zeroed view so
// the console stays renderable; it is logged and counted, never propagated.
func (s *Service) BuildQueue(ctx context.Context, scope claimstore.Scope, req QueueRequest) *QueueView {
	start := s.now()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	claims, err := s.store.FetchPool(ctx, scope, claimstore.PoolQuery{
		Lifecycle: req.Lifecycle,
		Branch:    req.Branch,
		Search:    req.Search,
		Anchor:    req.Anchor,
		Limit:     s.poolLimit,
	})
	if err != nil {
		s.logger.Error(ctx, err, "pool fetch failed, serving empty queue view",
			"tenant", scope.TenantID,
		)
		if s.metrics != nil {
			s.metrics.StoreErrorsTotal.Inc()
			s.metrics.QueueBuildsTotal.WithLabelValues("store_error").Inc()
		}
		return &QueueView{Page: req.Page, Rows: []Row{}}
	}

	truncated := len(claims) > s.poolLimit
	if truncated {
		claims = claims[:s.poolLimit]
	}

	anchor := req.Anchor
	if anchor.IsZero() && len(claims) > 0 {
		anchor = claim.AnchorOf(&claims[0])
	}

	now := s.now()
	pool := make([]Row, len(claims))
	for i := range claims {
		pool[i] = Derive(&claims[i], now)
	}

	// KPIs and overview run over the full pool, before window filtering.
	view := &QueueView{
		KPIs:     ComputeKPIs(pool, req.ActingStaffID),
		Overview: ComputeAssigneeOverview(pool, req.ActingStaffID),
		Page:     req.Page,
	}

	sorted := SortByPriority(pool)
	filtered := ApplyWindow(sorted, req.Priority, req.Assignee, req.ActingStaffID)
	pageRows, remaining := Page(filtered, req.Page, pageSize)

	view.Rows = pageRows
	if view.Rows == nil {
		view.Rows = []Row{}
	}
	view.HasMore = HasMore(remaining, req.Assignee, truncated)
	if !anchor.IsZero() {
		view.Anchor = anchor.Encode()
	}

	if s.metrics != nil {
		s.metrics.QueueBuildsTotal.WithLabelValues("ok").Inc()
		s.metrics.PoolSize.Observe(float64(len(claims)))
		s.metrics.BuildDuration.Observe(s.now().Sub(start).Seconds())
		if truncated {
			s.metrics.PoolTruncatedTotal.Inc()
		}
	}

	return view
}

// ClaimActions computes the detail view for one claim.
func (s *Service) ClaimActions(ctx context.Context, scope claimstore.Scope, claimID, actingStaffID string) (*ClaimDetail, bool, error) {
	c, ok, err := s.store.Get(ctx, scope, claimID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	row := Derive(c, s.now())
	return &ClaimDetail{
		Row:            row,
		Recommendation: NextActions(&row, actingStaffID),
	}, true, nil
}

// digestTopRows caps the queue excerpt included in the digest.
const digestTopRows = 5

// EmitDigest builds a queue summary and hands it to the notifier, if one is
// configured. Notification failures are logged, not propagated; the next
// tick simply tries again.
func (s *Service) EmitDigest(ctx context.Context, scope claimstore.Scope) {
	if s.notifier == nil {
		return
	}

	view := s.BuildQueue(ctx, scope, QueueRequest{PageSize: digestTopRows})
	d := &Digest{
		TenantID: scope.TenantID,
		At:       s.now(),
		KPIs:     view.KPIs,
		TopRows:  view.Rows,
	}

	if err := s.notifier.SendDigest(ctx, d); err != nil {
		s.logger.Error(ctx, err, "digest notification failed", "tenant", scope.TenantID)
		if s.metrics != nil {
			s.metrics.DigestsTotal.WithLabelValues("error").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.DigestsTotal.WithLabelValues("ok").Inc()
	}
}
