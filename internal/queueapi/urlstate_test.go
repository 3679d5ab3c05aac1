package queueapi

import (
	"net/url"
	"testing"
)

func state(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestBuildQueueURL_PoolParamResetsAnchorAndPage(t *testing.T) {
	t.Parallel()

	cur := state("lifecycle", "verification", "page", "3", "poolAnchor", "2026-03-10T12:00:00Z|c1")

	got := BuildQueueURL(cur, Set("lifecycle", "processing"))
	if got.Get("lifecycle") != "processing" {
		t.Errorf("lifecycle = %q", got.Get("lifecycle"))
	}
	if got.Has("poolAnchor") || got.Has("page") {
		t.Errorf("got %v, want poolAnchor and page dropped", got)
	}

	// The input is never mutated.
	if cur.Get("page") != "3" || !cur.Has("poolAnchor") {
		t.Errorf("input mutated: %v", cur)
	}
}

func TestBuildQueueURL_EveryPoolParamResets(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"lifecycle", "branch", "assignee", "search"} {
		cur := state("page", "2", "poolAnchor", "a|b")
		got := BuildQueueURL(cur, Set(key, "x"))
		if got.Has("poolAnchor") || got.Has("page") {
			t.Errorf("%s: got %v, want anchor and page dropped", key, got)
		}
	}
}

func TestBuildQueueURL_ClearingPoolParamResets(t *testing.T) {
	t.Parallel()

	cur := state("search", "hail", "page", "2", "poolAnchor", "a|b")
	got := BuildQueueURL(cur, Set("search", ""))
	if got.Has("search") {
		t.Error("search not cleared")
	}
	if got.Has("poolAnchor") || got.Has("page") {
		t.Errorf("got %v, want anchor and page dropped on clear", got)
	}
}

func TestBuildQueueURL_PriorityKeepsAnchorResetsPage(t *testing.T) {
	t.Parallel()

	cur := state("priority", "sla", "page", "4", "poolAnchor", "a|b")
	got := BuildQueueURL(cur, Set("priority", "stuck"))
	if got.Get("poolAnchor") != "a|b" {
		t.Errorf("poolAnchor = %q, want kept", got.Get("poolAnchor"))
	}
	if got.Has("page") {
		t.Errorf("page = %q, want dropped", got.Get("page"))
	}
}

func TestBuildQueueURL_ExplicitPageWins(t *testing.T) {
	t.Parallel()

	cur := state("page", "4", "poolAnchor", "a|b")
	got := BuildQueueURL(cur, Set("priority", "sla"), Set("page", "2"))
	if got.Get("page") != "2" {
		t.Errorf("page = %q, want explicit 2 to survive the reset", got.Get("page"))
	}
	if got.Get("poolAnchor") != "a|b" {
		t.Errorf("poolAnchor = %q, want kept", got.Get("poolAnchor"))
	}
}

func TestBuildQueueURL_SameValueResetsNothing(t *testing.T) {
	t.Parallel()

	cur := state("lifecycle", "legal", "page", "2", "poolAnchor", "a|b")
	got := BuildQueueURL(cur, Set("lifecycle", "legal"))
	if got.Get("page") != "2" || got.Get("poolAnchor") != "a|b" {
		t.Errorf("got %v, want untouched state on no-op change", got)
	}
}

func TestBuildQueueURL_AnchorPassesThrough(t *testing.T) {
	t.Parallel()

	cur := state("page", "2")
	got := BuildQueueURL(cur, Set("poolAnchor", "x|y"))
	if got.Get("poolAnchor") != "x|y" || got.Get("page") != "2" {
		t.Errorf("got %v, want anchor set and page kept", got)
	}
}
