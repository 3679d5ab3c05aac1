package claim

import (
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/xerrors"
)

// anchorSep separates the timestamp and id halves of an encoded anchor.
const anchorSep = "|"

// Anchor is the pool watermark cursor: the (updatedAt, id) pair a paginating
// client resumes from. Pool queries filter (updatedAt, id) <= anchor and
// order (updatedAt desc, id desc), so the comparison below is total and
// tie-broken deterministically.
type Anchor struct {
	UpdatedAt time.Time
	ID        string
}

// AnchorOf returns the anchor pinned at a claim row.
func AnchorOf(c *Claim) Anchor {
	return Anchor{UpdatedAt: c.UpdatedAt, ID: c.ID}
}

// IsZero reports whether no anchor is set.
func (a Anchor) IsZero() bool {
	return a.UpdatedAt.IsZero() && a.ID == ""
}

// Covers reports whether a row at (updatedAt, id) falls at or behind the
// anchor in (updatedAt desc, id desc) order, i.e. whether an anchored pool
// fetch should include it.
func (a Anchor) Covers(updatedAt time.Time, id string) bool {
	if updatedAt.Before(a.UpdatedAt) {
		return true
	}
	if updatedAt.After(a.UpdatedAt) {
		return false
	}
	return id <= a.ID
}

// Encode serializes the anchor as "<RFC3339Nano updatedAt>|<id>" for use as
// a query parameter.
func (a Anchor) Encode() string {
	return a.UpdatedAt.UTC().Format(time.RFC3339Nano) + anchorSep + a.ID
}

// ParseAnchor decodes an anchor produced by Encode. A missing separator,
// malformed timestamp, or empty half is an error; callers at the HTTP
// boundary treat any error as "no anchor".
func ParseAnchor(s string) (Anchor, error) {
	ts, id, ok := strings.Cut(s, anchorSep)
	if !ok {
		return Anchor{}, xerrors.New("anchor: missing separator")
	}
	if id == "" {
		return Anchor{}, xerrors.New("anchor: empty id")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Anchor{}, fmt.Errorf("anchor: bad timestamp: %w", err)
	}
	return Anchor{UpdatedAt: t, ID: id}, nil
}
