// Copyright 2026 The SPARQLfed Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memory provides a volatile, in-memory implementation of
// graph.Graph, evaluating BGPs against a fixed triple set held in memory.
// It is grounded on storage/memory's map-backed simplicity in the teacher,
// scaled down to the single Graph interface spec.md §4.2 requires (no
// Store/multi-graph registry — see DESIGN.md).
package memory

import (
	"context"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

// Graph is an in-memory graph.Graph over a fixed set of triples.
type Graph struct {
	triples []triple.Triple
}

// New returns a Graph holding a copy of ts.
func New(ts []triple.Triple) *Graph {
	cp := make([]triple.Triple, len(ts))
	copy(cp, ts)
	return &Graph{triples: cp}
}

// EvalBGP implements graph.Graph. It solves bgp against the in-memory
// triple set with a straightforward backtracking join: each pattern is
// matched against every triple in turn, extending the binding set built so
// far.
func (g *Graph) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	out := make(chan graph.Result)
	go func() {
		defer close(out)
		remaining := limitOf(opts)
		g.solve(ctx, bgp, bindings.Empty(), out, &remaining)
	}()
	return out, nil
}

// EvalUnion implements graph.Graph. It evaluates each BGP in bucket in
// turn and forwards every solution unchanged — each solution already
// carries whichever variable names (rewritten or not) its own BGP used,
// which is exactly the union semantics spec.md §4.2 describes. The
// MaxSolutions cap, if set, is shared across the whole bucket rather than
// reset per member BGP.
func (g *Graph) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	out := make(chan graph.Result)
	go func() {
		defer close(out)
		remaining := limitOf(opts)
		for _, bgp := range bucket {
			if ctx.Err() != nil {
				return
			}
			if done := g.solve(ctx, bgp, bindings.Empty(), out, &remaining); done {
				return
			}
		}
	}()
	return out, nil
}

// limitOf returns the remaining-solutions counter solve expects: -1 for
// unbounded, else opts.MaxSolutions.
func limitOf(opts *graph.Options) int {
	if opts == nil || opts.MaxSolutions <= 0 {
		return -1
	}
	return opts.MaxSolutions
}

// solve recursively joins the patterns of bgp, emitting one graph.Result
// per complete solution. remaining is the shared count of solutions still
// allowed: -1 means unbounded; otherwise it is decremented on every
// emission and solve stops (returning true) once it reaches zero. It also
// returns true on context cancellation.
func (g *Graph) solve(ctx context.Context, bgp triple.BGP, partial bindings.Bindings, out chan<- graph.Result, remaining *int) bool {
	if ctx.Err() != nil {
		return true
	}
	if len(bgp) == 0 {
		select {
		case out <- graph.Result{Bindings: partial}:
		case <-ctx.Done():
			return true
		}
		if *remaining >= 0 {
			*remaining--
			if *remaining <= 0 {
				return true
			}
		}
		return false
	}
	head, rest := bgp[0], bgp[1:]
	bound := partial.Bound(head)
	for _, t := range g.triples {
		ext, ok := matchExtend(bound, t, partial)
		if !ok {
			continue
		}
		if done := g.solve(ctx, rest, ext, out, remaining); done {
			return true
		}
	}
	return false
}

// matchExtend attempts to unify the (possibly partially bound) pattern tp
// with the concrete triple t, extending partial with any newly discovered
// variable bindings. It fails if a variable would need to be bound to two
// different terms.
func matchExtend(tp triple.Triple, t triple.Triple, partial bindings.Bindings) (bindings.Bindings, bool) {
	ext := partial
	var ok bool
	if ext, ok = unifyTerm(tp.Subject, t.Subject, ext); !ok {
		return bindings.Bindings{}, false
	}
	if ext, ok = unifyTerm(tp.Predicate, t.Predicate, ext); !ok {
		return bindings.Bindings{}, false
	}
	if ext, ok = unifyTerm(tp.Object, t.Object, ext); !ok {
		return bindings.Bindings{}, false
	}
	return ext, true
}

func unifyTerm(pattern, concrete rdf.Term, b bindings.Bindings) (bindings.Bindings, bool) {
	if pattern.IsVariable() {
		if existing, ok := b.Get(pattern.Name()); ok {
			return b, existing.Equal(concrete)
		}
		return b.Set(pattern.Name(), concrete), true
	}
	return b, pattern.Equal(concrete)
}

// AddTriples appends ts to the graph's triple set.
func (g *Graph) AddTriples(ts []triple.Triple) {
	g.triples = append(g.triples, ts...)
}

// RemoveTriples removes any triple in ts from the graph's triple set.
func (g *Graph) RemoveTriples(ts []triple.Triple) {
	rm := make(map[triple.Triple]bool, len(ts))
	for _, t := range ts {
		rm[t] = true
	}
	kept := g.triples[:0]
	for _, t := range g.triples {
		if !rm[t] {
			kept = append(kept, t)
		}
	}
	g.triples = kept
}
