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

package federation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

func drain(t *testing.T, ch <-chan graph.Result, timeout time.Duration) []graph.Result {
	t.Helper()
	var got []graph.Result
	deadline := time.After(timeout)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, r)
		case <-deadline:
			t.Fatal("timed out draining results")
		}
	}
}

func fakeEndpoint(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(body))
	}))
}

func TestMemberEvalBGPDecodesSolutions(t *testing.T) {
	srv := fakeEndpoint(t, `{"head":{"vars":["o"]},"results":{"bindings":[
		{"o":{"type":"uri","value":"http://example.org/Carol"}}
	]}}`)
	defer srv.Close()

	m := NewMember(srv.URL, time.Second)
	bgp := triple.BGP{triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewVariable("o"))}
	ch, err := m.EvalBGP(context.Background(), bgp, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch, time.Second)
	if len(got) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(got))
	}
	o, ok := got[0].Bindings.Get("?o")
	if !ok || o.IRIValue() != "http://example.org/Carol" {
		t.Errorf("unexpected ?o binding: %v, %v", o, ok)
	}
}

func TestMemberEvalUnionPreservesRewrittenVariableNames(t *testing.T) {
	srv := fakeEndpoint(t, `{"head":{"vars":["o_0","o_1"]},"results":{"bindings":[
		{"o_0":{"type":"uri","value":"http://example.org/Carol"}},
		{"o_1":{"type":"uri","value":"http://example.org/Dan"}}
	]}}`)
	defer srv.Close()

	m := NewMember(srv.URL, time.Second)
	bucket := []triple.BGP{
		{triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewVariable("o_0"))},
		{triple.New(rdf.NewIRI(":Bob"), rdf.NewIRI(":knows"), rdf.NewVariable("o_1"))},
	}
	ch, err := m.EvalUnion(context.Background(), bucket, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch, time.Second)
	if len(got) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, r := range got {
		for _, v := range r.Bindings.Variables() {
			seen[v] = true
		}
	}
	if !seen["?o_0"] || !seen["?o_1"] {
		t.Errorf("expected rewritten variable names to survive the wire round-trip, saw %v", seen)
	}
}

func TestMemberEvalBGPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMember(srv.URL, time.Second)
	_, err := m.EvalBGP(context.Background(), triple.BGP{}, nil)
	if err == nil {
		t.Fatal("expected a non-OK status to produce an error")
	}
}

func TestRouterMergesAllMembers(t *testing.T) {
	srv1 := fakeEndpoint(t, `{"head":{"vars":["o"]},"results":{"bindings":[
		{"o":{"type":"uri","value":"http://example.org/Carol"}}
	]}}`)
	defer srv1.Close()
	srv2 := fakeEndpoint(t, `{"head":{"vars":["o"]},"results":{"bindings":[
		{"o":{"type":"uri","value":"http://example.org/Dan"}}
	]}}`)
	defer srv2.Close()

	r := NewRouter(NewMember(srv1.URL, time.Second), NewMember(srv2.URL, time.Second))
	bgp := triple.BGP{triple.New(rdf.NewVariable("s"), rdf.NewIRI(":knows"), rdf.NewVariable("o"))}
	ch, err := r.EvalBGP(context.Background(), bgp, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch, time.Second)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged solutions across both members, got %d", len(got))
	}
}

func TestRouterPropagatesFirstMemberError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := fakeEndpoint(t, `{"head":{"vars":["o"]},"results":{"bindings":[]}}`)
	defer good.Close()

	r := NewRouter(NewMember(bad.URL, time.Second), NewMember(good.URL, time.Second))
	ch, err := r.EvalBGP(context.Background(), triple.BGP{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch, time.Second)
	if len(got) == 0 || got[len(got)-1].Err == nil {
		t.Fatalf("expected the bad member's error to surface, got %+v", got)
	}
}

func TestRouterWithNoMembersCompletesImmediately(t *testing.T) {
	r := NewRouter()
	ch, err := r.EvalBGP(context.Background(), triple.BGP{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, ch, time.Second)
	if len(got) != 0 {
		t.Errorf("expected no results with no members, got %d", len(got))
	}
}
