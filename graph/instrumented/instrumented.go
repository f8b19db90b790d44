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

// Package instrumented wraps a graph.Graph with per-call tracing. It is
// shaped after the teacher's storage/memoization decorator (a Store
// wrapping another Store, forwarding every method while adding
// bookkeeping around it) — but the bookkeeping here is a correlation id
// and trace lines rather than a result cache, since caching remote
// responses is explicitly out of scope for this operator (a stale cache
// entry would silently violate the bijection-per-input invariant the
// bound join depends on).
package instrumented

import (
	"context"
	"fmt"
	"io"

	"github.com/pborman/uuid"

	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/tracer"
	"github.com/sparqlfed/boundjoin/triple"
)

// Graph wraps an underlying graph.Graph, tagging every EvalBGP/EvalUnion
// call with a correlation id and tracing its dispatch and completion.
type Graph struct {
	inner graph.Graph
	out   io.Writer
}

// New returns a Graph that forwards to inner, writing trace lines to out.
// A nil out disables tracing entirely (tracer.MessageTracer.Trace no-ops
// on a nil writer); g still forwards every call.
func New(inner graph.Graph, out io.Writer) *Graph {
	return &Graph{inner: inner, out: out}
}

// EvalBGP forwards to the wrapped Graph, tracing entry and the final
// result count under one correlation id.
func (g *Graph) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	id := uuid.New()
	tracer.V(2).Trace(g.out, func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("instrumented[%s]: EvalBGP %d pattern(s)", id, len(bgp))}}
	})
	results, err := g.inner.EvalBGP(ctx, bgp, opts)
	if err != nil {
		tracer.V(1).Trace(g.out, func() *tracer.Arguments {
			return &tracer.Arguments{Msgs: []string{fmt.Sprintf("instrumented[%s]: EvalBGP failed: %v", id, err)}}
		})
		return nil, err
	}
	return g.tap(ctx, id, "EvalBGP", results), nil
}

// EvalUnion forwards to the wrapped Graph, tracing entry (including the
// bucket size) and the final result count under one correlation id.
func (g *Graph) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	id := uuid.New()
	tracer.V(2).Trace(g.out, func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("instrumented[%s]: EvalUnion bucket of %d BGP(s)", id, len(bucket))}}
	})
	results, err := g.inner.EvalUnion(ctx, bucket, opts)
	if err != nil {
		tracer.V(1).Trace(g.out, func() *tracer.Arguments {
			return &tracer.Arguments{Msgs: []string{fmt.Sprintf("instrumented[%s]: EvalUnion failed: %v", id, err)}}
		})
		return nil, err
	}
	return g.tap(ctx, id, "EvalUnion", results), nil
}

// tap relays results from in to a freshly returned channel, counting them
// and tracing completion once the source closes. It never buffers beyond
// a single Result, so it adds no latency to the underlying stream. The
// send is guarded against ctx cancellation so a downstream consumer that
// stops ranging over the channel (spec.md §5's "downstream unsubscribes")
// does not strand this goroutine blocked forever on out <- r.
func (g *Graph) tap(ctx context.Context, id, op string, in <-chan graph.Result) <-chan graph.Result {
	out := make(chan graph.Result)
	go func() {
		defer close(out)
		var n int
		for r := range in {
			if r.Err == nil {
				n++
			}
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
		tracer.V(3).Trace(g.out, func() *tracer.Arguments {
			return &tracer.Arguments{Msgs: []string{fmt.Sprintf("instrumented[%s]: %s produced %d solution(s)", id, op, n)}}
		})
	}()
	return out
}
