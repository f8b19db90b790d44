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

// The eval command drives a single triple pattern through the bound join
// operator against either a small built-in in-memory graph or a
// federation of remote SPARQL endpoints.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/boundjoin"
	"github.com/sparqlfed/boundjoin/federation"
	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/graph/instrumented"
	"github.com/sparqlfed/boundjoin/graph/memory"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/tracer"
	"github.com/sparqlfed/boundjoin/triple"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *Command {
	cmd := &Command{
		UsageLine: "eval -s <term> -p <term> -o <term> [-members host1,host2] [-n count] [-trace]",
		Short:     "runs a triple pattern through the bound join operator.",
		Long: `Evaluates one triple pattern against a graph, joining it with -n
buffered empty input bindings through the bound join operator. -n 1
exercises the degenerate fast path; -n > 1 exercises bucket rewriting.
A term starting with ? is a variable; anything else is treated as an IRI.
With -members, the graph is a federation.Router over the given
comma-separated remote SPARQL endpoint URLs; otherwise a small built-in
in-memory graph is used.
`,
	}
	cmd.Run = func(ctx context.Context, args []string) int {
		return evalCommand(ctx, cmd, args)
	}
	return cmd
}

func evalCommand(ctx context.Context, cmd *Command, args []string) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	s := fs.String("s", "?s", "subject term")
	p := fs.String("p", ":knows", "predicate term")
	o := fs.String("o", "?o", "object term")
	members := fs.String("members", "", "comma-separated remote SPARQL endpoint URLs")
	n := fs.Int("n", 1, "number of buffered empty-binding inputs to join")
	trace := fs.Bool("trace", false, "write operator trace lines to stderr")
	if err := fs.Parse(args[2:]); err != nil {
		return 2
	}

	bgp := triple.BGP{triple.New(parseTerm(*s), parseTerm(*p), parseTerm(*o))}

	var g graph.Graph
	if *members != "" {
		var ms []*federation.Member
		for _, u := range strings.Split(*members, ",") {
			ms = append(ms, federation.NewMember(strings.TrimSpace(u), 10*time.Second))
		}
		g = federation.NewRouter(ms...)
	} else {
		g = memory.New(demoTriples())
	}
	if *trace {
		g = instrumented.New(g, os.Stderr)
	}

	items := make(chan boundjoin.Item, *n)
	for i := 0; i < *n; i++ {
		items <- boundjoin.Item{Bindings: bindings.Empty()}
	}
	close(items)

	cfg := &boundjoin.Config{}
	if *trace {
		tracer.SetVerbosity(3)
		cfg.Tracer = os.Stderr
	}
	out, cancel := boundjoin.Join(ctx, items, bgp, g, nil, cfg)
	defer cancel()

	count := 0
	for r := range out {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "eval failed: %v\n", r.Err)
			return 1
		}
		count++
		fmt.Printf("%s\n", describeBindings(r.Bindings))
	}
	fmt.Printf("%d solution(s)\n", count)
	return 0
}

// parseTerm treats a leading '?' as a variable and anything else as an
// IRI; it is a convenience for the CLI only, not a SPARQL surface-syntax
// parser (that remains explicitly out of scope — see spec's Non-goals).
func parseTerm(s string) rdf.Term {
	if strings.HasPrefix(s, "?") {
		return rdf.NewVariable(s)
	}
	return rdf.NewIRI(s)
}

func describeBindings(b bindings.Bindings) string {
	var parts []string
	for _, v := range b.Variables() {
		t, _ := b.Get(v)
		parts = append(parts, fmt.Sprintf("%s=%s", v, t))
	}
	return strings.Join(parts, " ")
}

func demoTriples() []triple.Triple {
	return []triple.Triple{
		triple.New(rdf.NewIRI(":Alice"), rdf.NewIRI(":knows"), rdf.NewIRI(":Carol")),
		triple.New(rdf.NewIRI(":Bob"), rdf.NewIRI(":knows"), rdf.NewIRI(":Dan")),
		triple.New(rdf.NewIRI(":Carol"), rdf.NewIRI(":knows"), rdf.NewIRI(":Alice")),
	}
}
