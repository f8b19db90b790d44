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

// Package graph describes the abstraction the bound join operator
// consumes to reach a remote RDF graph (spec.md §4.2). It is a dependency
// contract, not an implementation: see graph/memory for a local,
// in-process Graph and federation for one that fans out over HTTP.
package graph

import (
	"context"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/triple"
)

// Options is an opaque, pass-through configuration bag recognized only by
// the Graph implementation. The bound join operator neither reads nor
// mutates it (spec.md §6).
type Options struct {
	// MaxSolutions caps the number of solutions a Graph implementation
	// should produce, 0 meaning unbounded. Left to the implementation to
	// honor; purely advisory at this layer.
	MaxSolutions int
}

// Result is one element of the lazy sequence a Graph produces: either a
// solution Bindings, or a terminal error. A Graph must send at most one
// Result with a non-nil Err, and must not send anything after it.
type Result struct {
	Bindings bindings.Bindings
	Err      error
}

// Graph is the contract the bound join operator consumes. Both methods
// return a channel that the Graph implementation closes when, and only
// when, it has no more Results to send (success or failure alike).
//
// Implementations must propagate remote errors as a single error Result
// and must terminate the returned channel in finite time given finite
// inputs.
type Graph interface {
	// EvalBGP returns every solution mapping for bgp against the graph.
	EvalBGP(ctx context.Context, bgp triple.BGP, opts *Options) (<-chan Result, error)

	// EvalUnion returns the disjoint union of EvalBGP(bgp) over every bgp
	// in bucket, packed by the implementation into a single remote
	// request where possible. Each output Bindings carries the variables
	// of whichever BGP in bucket produced it — including any bound-join
	// rewriting suffix a caller applied, which is how callers demultiplex
	// (spec.md §4.2/§4.3).
	EvalUnion(ctx context.Context, bucket []triple.BGP, opts *Options) (<-chan Result, error)
}
