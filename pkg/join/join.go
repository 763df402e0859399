// Package join implements the three binary join strategies of the join
// sub-engine (nested-loop, symmetric-hash, multi-way) plus the cost-based
// mediator that chooses between them.
package join

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// Task is the unit of work published to the join bus: join Left and Right
// on their shared variables.
type Task struct {
	Ctx   context.Context
	Left  *stream.Stream[bindings.Bindings]
	Right *stream.Stream[bindings.Bindings]
}

// sharedVariables returns the variables present in both streams.
func sharedVariables(left, right []string) []string {
	rset := make(map[string]bool, len(right))
	for _, v := range right {
		rset[v] = true
	}
	var shared []string
	for _, v := range left {
		if rset[v] {
			shared = append(shared, v)
		}
	}
	return shared
}

// unionVariables returns the deduplicated union of two variable lists.
func unionVariables(left, right []string) []string {
	seen := make(map[string]bool, len(left)+len(right))
	var out []string
	for _, v := range left {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range right {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// estimatedTotal reads a stream's metadata total, treating unknown as a
// conservative large constant so mediator cost comparisons stay finite.
func estimatedTotal(s *stream.Stream[bindings.Bindings]) int64 {
	t := s.Metadata().TotalItems
	if t < 0 {
		return 1_000_000
	}
	return t
}

// productTotal is the §4.3 join output cardinality law: the product of two
// input totals, or stream.UnknownTotal if either input's real cardinality
// (not the mediator's large-constant cost-estimation fallback) is unknown.
func productTotal(left, right *stream.Stream[bindings.Bindings]) int64 {
	l, r := left.Metadata().TotalItems, right.Metadata().TotalItems
	if l < 0 || r < 0 {
		return stream.UnknownTotal
	}
	return l * r
}
