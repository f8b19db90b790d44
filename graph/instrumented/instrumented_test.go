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

package instrumented

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/graph/memory"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

func drain(t *testing.T, ch <-chan graph.Result) []graph.Result {
	t.Helper()
	var out []graph.Result
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, r)
		case <-time.After(time.Second):
			t.Fatal("timed out draining results")
		}
	}
}

func TestEvalBGPForwardsResults(t *testing.T) {
	inner := memory.New([]triple.Triple{
		triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewIRI(":Carol")),
	})
	g := New(inner, nil)
	bgp := triple.BGP{triple.New(rdf.NewVariable("s"), rdf.NewIRI(":knows"), rdf.NewVariable("o"))}
	ch, err := g.EvalBGP(context.Background(), bgp, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch)
	if len(got) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(got))
	}
}

func TestEvalUnionForwardsResults(t *testing.T) {
	inner := memory.New([]triple.Triple{
		triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewIRI(":Carol")),
		triple.New(rdf.NewIRI(":Bob"), rdf.NewIRI(":knows"), rdf.NewIRI(":Dan")),
	})
	g := New(inner, nil)
	bucket := []triple.BGP{
		{triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewVariable("o_0"))},
		{triple.New(rdf.NewIRI(":Bob"), rdf.NewIRI(":knows"), rdf.NewVariable("o_1"))},
	}
	ch, err := g.EvalUnion(context.Background(), bucket, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch)
	if len(got) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(got))
	}
}

type erroringGraph struct{}

func (erroringGraph) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return nil, errors.New("boom")
}

func (erroringGraph) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return nil, errors.New("boom")
}

func TestEvalBGPPropagatesImmediateError(t *testing.T) {
	g := New(erroringGraph{}, nil)
	_, err := g.EvalBGP(context.Background(), triple.BGP{}, nil)
	if err == nil {
		t.Fatal("expected the wrapped Graph's immediate error to propagate")
	}
}

func TestEvalUnionPropagatesImmediateError(t *testing.T) {
	g := New(erroringGraph{}, nil)
	_, err := g.EvalUnion(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected the wrapped Graph's immediate error to propagate")
	}
}
