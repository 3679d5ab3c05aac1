// Package triage is the claims operational triage engine: it derives
// per-claim operational state from raw claim rows, ranks claims into a
// priority queue, aggregates deduplicated KPIs and per-assignee workload,
// slices stable pages over a watermark-anchored pool, and recommends the
// next action per claim. Every computation is a pure function over a freshly
// fetched pool; the Service composes them into the console read path.
package triage
