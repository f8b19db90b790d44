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

// The update command drives a small built-in triple stream through the
// update consumer sink, applying either INSERT or DELETE semantics
// against a built-in in-memory graph.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sparqlfed/boundjoin/consumer"
	"github.com/sparqlfed/boundjoin/graph/memory"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/tracer"
	"github.com/sparqlfed/boundjoin/triple"
)

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *Command {
	cmd := &Command{
		UsageLine: "update -op insert|delete [-trace]",
		Short:     "drives a triple stream through the update consumer sink.",
		Long: `Applies a small built-in sequence of triples to an in-memory graph
via the update consumer sink, using either INSERT or DELETE semantics.
`,
	}
	cmd.Run = func(ctx context.Context, args []string) int {
		return updateCommand(ctx, cmd, args)
	}
	return cmd
}

func updateCommand(ctx context.Context, cmd *Command, args []string) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	op := fs.String("op", "insert", "insert or delete")
	trace := fs.Bool("trace", false, "write write-sink trace lines to stderr")
	if err := fs.Parse(args[2:]); err != nil {
		return 2
	}

	g := memory.New(demoTriples())

	var write consumer.WriteFunc
	switch *op {
	case "insert":
		write = func(ctx context.Context, t triple.Triple) error {
			g.AddTriples([]triple.Triple{t})
			return nil
		}
	case "delete":
		write = func(ctx context.Context, t triple.Triple) error {
			g.RemoveTriples([]triple.Triple{t})
			return nil
		}
	default:
		fmt.Fprintf(os.Stderr, "unrecognized -op %q, want insert or delete\n", *op)
		return 2
	}

	var opts []consumer.Option
	if *trace {
		tracer.SetVerbosity(3)
		opts = append(opts, consumer.WithTracer(os.Stderr))
	}

	src := make(chan consumer.Item, 3)
	for _, iri := range []string{":Eve", ":Frank", ":Grace"} {
		src <- consumer.Item{Triple: triple.New(rdf.NewIRI(iri), rdf.NewIRI(":knows"), rdf.NewIRI(":Alice"))}
	}
	close(src)

	c := consumer.NewUpdateConsumer(src, write, opts...)
	if err := <-c.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "update failed: %v\n", err)
		return 1
	}
	fmt.Println("update complete")
	return 0
}
