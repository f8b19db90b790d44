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

// Package boundjointest provides a scriptable fake graph.Graph used by the
// boundjoin test suite. It is grounded on
// tools/testutil's role in the teacher (a shared, dependency-free test
// helper exercised directly by the planner tests), adapted from a fake
// storage.Store to a fake graph.Graph.
package boundjointest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

// FakeGraph is a graph.Graph whose EvalBGP/EvalUnion behavior is entirely
// scripted: each call consults EvalBGPFunc or EvalUnionFunc to decide
// what to produce, and an unset func yields an empty, closed channel.
type FakeGraph struct {
	mu sync.Mutex

	// EvalBGPFunc, if set, backs EvalBGP. It must send results on the
	// returned channel and close it itself (or return an error instead
	// of a channel).
	EvalBGPFunc func(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error)

	// EvalUnionFunc, if set, backs EvalUnion the same way.
	EvalUnionFunc func(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error)

	// unionCalls records every EvalUnion bucket received, for assertions.
	unionCalls [][]triple.BGP
}

// EvalBGP implements graph.Graph.
func (f *FakeGraph) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	if f.EvalBGPFunc == nil {
		out := make(chan graph.Result)
		close(out)
		return out, nil
	}
	return f.EvalBGPFunc(ctx, bgp, opts)
}

// EvalUnion implements graph.Graph.
func (f *FakeGraph) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	f.mu.Lock()
	cp := make([]triple.BGP, len(bucket))
	copy(cp, bucket)
	f.unionCalls = append(f.unionCalls, cp)
	f.mu.Unlock()

	if f.EvalUnionFunc == nil {
		out := make(chan graph.Result)
		close(out)
		return out, nil
	}
	return f.EvalUnionFunc(ctx, bucket, opts)
}

// UnionCalls returns every bucket EvalUnion has been invoked with so far,
// in call order.
func (f *FakeGraph) UnionCalls() [][]triple.BGP {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]triple.BGP, len(f.unionCalls))
	copy(out, f.unionCalls)
	return out
}

// StaticBGPResults builds an EvalBGPFunc that ignores its input and
// streams a fixed set of results, then closes.
func StaticBGPResults(rs ...graph.Result) func(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return func(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
		out := make(chan graph.Result, len(rs))
		for _, r := range rs {
			out <- r
		}
		close(out)
		return out, nil
	}
}

// StaticUnionResults builds an EvalUnionFunc that ignores its input and
// streams a fixed set of results, then closes.
func StaticUnionResults(rs ...graph.Result) func(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return func(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
		out := make(chan graph.Result, len(rs))
		for _, r := range rs {
			out <- r
		}
		close(out)
		return out, nil
	}
}

// ErrorAfterUnion returns an EvalUnionFunc that emits ok results then a
// terminal error result.
func ErrorAfterUnion(err error, ok ...graph.Result) func(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return func(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
		out := make(chan graph.Result, len(ok)+1)
		for _, r := range ok {
			out <- r
		}
		out <- graph.Result{Err: err}
		close(out)
		return out, nil
	}
}

// BindingOf is a convenience constructor for a single-variable Bindings.
func BindingOf(v string, t rdf.Term) bindings.Bindings {
	return bindings.Empty().Set(v, t)
}

// MustVar builds a variable term, panicking is impossible by construction
// (NewVariable never fails) — kept for readability at call sites.
func MustVar(name string) rdf.Term {
	return rdf.NewVariable(name)
}

// IRI is a short alias used pervasively across the test suites.
func IRI(v string) rdf.Term { return rdf.NewIRI(v) }

// ResultFor builds a graph.Result for a set of variable/term pairs, given
// as alternating name, term, name, term, ...
func ResultFor(pairs ...interface{}) graph.Result {
	b := bindings.Empty()
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("boundjointest.ResultFor: even args must be strings, got %T", pairs[i]))
		}
		term, ok := pairs[i+1].(rdf.Term)
		if !ok {
			panic(fmt.Sprintf("boundjointest.ResultFor: odd args must be rdf.Term, got %T", pairs[i+1]))
		}
		b = b.Set(name, term)
	}
	return graph.Result{Bindings: b}
}
