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

// Package federation supplies a graph.Graph implementation that reaches a
// remote SPARQL endpoint over HTTP: Member talks to one endpoint, Router
// fans a request out across several.
//
// The transport itself is explicitly out of the core operator's scope —
// boundjoin.Join depends only on graph.Graph — but something has to speak
// to an actual "remote graph" for the federated engine this operator
// belongs to to be more than a demux algorithm with nowhere to dispatch.
// The multi-endpoint fan-out is grounded on the teacher's bql/planner
// multi-graph loops (data_access.go's "for _, g := range gs"), replacing
// the teacher's in-process storage.Graph slice with HTTP members reached
// concurrently via errgroup, the same concurrency idiom boundjoin itself
// uses for batch dispatch.
package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

// Member is a graph.Graph backed by a single remote SPARQL HTTP endpoint.
// It speaks the SPARQL 1.1 Protocol's query-via-POST convention and
// decodes the SPARQL 1.1 Query Results JSON Format.
type Member struct {
	// Endpoint is the remote SPARQL query endpoint URL.
	Endpoint string
	// Client is the HTTP client used to reach Endpoint. A nil Client
	// defaults to &http.Client{Timeout: 30 * time.Second}.
	Client *http.Client
}

// NewMember returns a Member for endpoint with a client using the given
// request timeout. A timeout <= 0 defaults to 30s.
func NewMember(endpoint string, timeout time.Duration) *Member {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Member{Endpoint: endpoint, Client: &http.Client{Timeout: timeout}}
}

// EvalBGP asks the remote endpoint to evaluate bgp and streams back its
// solutions.
func (m *Member) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return m.query(ctx, selectQuery(bgp))
}

// EvalUnion packs bucket into a single SPARQL query using UNION, per
// spec.md §4.2's "implementation is expected to pack all BGPs into a
// single remote request," and streams back the decoded solutions. Each
// decoded Bindings carries whatever variable names came back on the
// wire — including any "_<k>" bound-join suffix the caller encoded into
// bucket's patterns, which is exactly what a union query preserves,
// since SPARQL UNION never renames variables.
func (m *Member) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return m.query(ctx, unionQuery(bucket))
}

func (m *Member) query(ctx context.Context, q string) (<-chan graph.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, strings.NewReader(q))
	if err != nil {
		return nil, fmt.Errorf("federation: building request for %q: %w", m.Endpoint, err)
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")

	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("federation: querying %q: %w", m.Endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("federation: %q returned status %d", m.Endpoint, resp.StatusCode)
	}

	var wire sparqlResults
	decodeErr := json.NewDecoder(resp.Body).Decode(&wire)
	resp.Body.Close()

	out := make(chan graph.Result)
	go func() {
		defer close(out)
		if decodeErr != nil {
			send(ctx, out, graph.Result{Err: fmt.Errorf("federation: decoding response from %q: %w", m.Endpoint, decodeErr)})
			return
		}
		for _, row := range wire.Results.Bindings {
			b, err := decodeRow(row)
			if err != nil {
				send(ctx, out, graph.Result{Err: fmt.Errorf("federation: %q: %w", m.Endpoint, err)})
				return
			}
			if !send(ctx, out, graph.Result{Bindings: b}) {
				return
			}
		}
	}()
	return out, nil
}

func send(ctx context.Context, out chan<- graph.Result, r graph.Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// Router composes several Members behind one graph.Graph, fanning each
// call out to every member concurrently and merging their result
// streams. A single federated graph is rarely served by one endpoint;
// Router is the piece that makes EvalBGP/EvalUnion mean "ask everyone,
// merge what comes back" rather than "ask one fixed member."
type Router struct {
	Members []*Member
}

// NewRouter returns a Router over the given members.
func NewRouter(members ...*Member) *Router {
	return &Router{Members: members}
}

// EvalBGP fans bgp out to every member and merges their solutions. The
// first member error cancels the others, per spec.md §4.2's requirement
// that a Graph propagate remote errors as a single error signal.
func (r *Router) EvalBGP(ctx context.Context, bgp triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return r.fanOut(ctx, func(ctx context.Context, m *Member) (<-chan graph.Result, error) {
		return m.EvalBGP(ctx, bgp, opts)
	})
}

// EvalUnion fans bucket out to every member and merges their solutions,
// the same way EvalBGP does.
func (r *Router) EvalUnion(ctx context.Context, bucket []triple.BGP, opts *graph.Options) (<-chan graph.Result, error) {
	return r.fanOut(ctx, func(ctx context.Context, m *Member) (<-chan graph.Result, error) {
		return m.EvalUnion(ctx, bucket, opts)
	})
}

func (r *Router) fanOut(ctx context.Context, call func(context.Context, *Member) (<-chan graph.Result, error)) (<-chan graph.Result, error) {
	if len(r.Members) == 0 {
		out := make(chan graph.Result)
		close(out)
		return out, nil
	}

	grp, gCtx := errgroup.WithContext(ctx)
	merged := make(chan graph.Result)

	for _, m := range r.Members {
		m := m
		grp.Go(func() error {
			results, err := call(gCtx, m)
			if err != nil {
				return err
			}
			for res := range results {
				if res.Err != nil {
					return res.Err
				}
				if !send(gCtx, merged, res) {
					return nil
				}
			}
			return nil
		})
	}

	go func() {
		defer close(merged)
		if err := grp.Wait(); err != nil {
			send(ctx, merged, graph.Result{Err: err})
		}
	}()

	return merged, nil
}

// selectQuery renders bgp as a minimal SPARQL 1.1 SELECT * query. Terms
// already print in SPARQL surface syntax via rdf.Term.String (IRIs as
// <...>, variables as ?name, literals quoted), so whereBody only has to
// join the patterns with " . ", as a SPARQL WHERE block expects.
func selectQuery(bgp triple.BGP) string {
	return fmt.Sprintf("SELECT * WHERE { %s }", whereBody(bgp))
}

// unionQuery renders bucket as a single SPARQL 1.1 SELECT * query whose
// WHERE clause is a UNION of one block per BGP in bucket, preserving each
// BGP's own (already rewritten) variable names verbatim.
func unionQuery(bucket []triple.BGP) string {
	blocks := make([]string, len(bucket))
	for i, bgp := range bucket {
		blocks[i] = fmt.Sprintf("{ %s }", whereBody(bgp))
	}
	return fmt.Sprintf("SELECT * WHERE { %s }", strings.Join(blocks, " UNION "))
}

func whereBody(bgp triple.BGP) string {
	parts := make([]string, len(bgp))
	for i, tp := range bgp {
		parts[i] = fmt.Sprintf("%s %s %s", tp.Subject, tp.Predicate, tp.Object)
	}
	return strings.Join(parts, " . ")
}

// sparqlResults mirrors the SPARQL 1.1 Query Results JSON Format's
// relevant subset: head/vars is informational only, every binding we
// need is already keyed by variable name in results.bindings.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlTerm `json:"bindings"`
	} `json:"results"`
}

type sparqlTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

func decodeRow(row map[string]sparqlTerm) (bindings.Bindings, error) {
	b := bindings.Empty()
	for v, term := range row {
		t, err := decodeTerm(term)
		if err != nil {
			return bindings.Empty(), err
		}
		b = b.Set(rdf.NewVariable(v).Name(), t)
	}
	return b, nil
}

func decodeTerm(term sparqlTerm) (rdf.Term, error) {
	switch term.Type {
	case "uri":
		return rdf.NewIRI(term.Value), nil
	case "bnode":
		return rdf.NewBlankNode(term.Value), nil
	case "literal", "typed-literal":
		switch {
		case term.Datatype != "":
			return rdf.NewLiteralTerm(rdf.NewTypedLiteral(term.Value, term.Datatype)), nil
		case term.Lang != "":
			return rdf.NewLiteralTerm(rdf.NewLangLiteral(term.Value, term.Lang)), nil
		default:
			return rdf.NewLiteralTerm(rdf.NewLiteral(term.Value)), nil
		}
	default:
		return rdf.Term{}, fmt.Errorf("unrecognized SPARQL result term type %q", term.Type)
	}
}
