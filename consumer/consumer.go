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

// Package consumer implements the Update Consumer sink (spec.md §4.4): a
// terminal stream stage that drains a lazy sequence of triples, applying
// each one to a target graph, and exposes a one-shot completion signal.
//
// The per-triple write loop and its error aggregation are grounded on the
// teacher's bql/planner.update helper (goroutine-per-unit-of-work guarded
// by a mutex-protected error slice); here the unit of work is a single
// triple read off a channel rather than a fixed list of target graphs, so
// the fan-out collapses to a single consuming goroutine with an optional
// bounded-parallelism write pool.
package consumer

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/sparqlfed/boundjoin/tracer"
	"github.com/sparqlfed/boundjoin/triple"
)

// Item is one element of a triple source: a triple to write, or (on the
// final element only) a terminal source error. A source that ends in
// error must close its channel immediately after sending the Item with
// Err set, mirroring boundjoin.Item's contract.
type Item struct {
	Triple triple.Triple
	Err    error
}

// WriteFunc applies one triple to the target graph. INSERT and DELETE
// consumers differ only in which WriteFunc they're built with.
type WriteFunc func(ctx context.Context, t triple.Triple) error

// Consumer is a terminal stream sink with a single one-shot completion
// signal, per spec.md §4.4.
type Consumer interface {
	// Execute drains the sink's source (if any) and returns a channel that
	// receives exactly one value — nil on success, a non-nil error
	// otherwise — and is then closed. Execute may be called at most once;
	// the returned channel always resolves, even if the source has
	// already terminated when Execute is called.
	Execute(ctx context.Context) <-chan error
}

// updateConsumer drains a triple source and applies each triple via write.
// Parallelism controls how many writes may be outstanding at once; a
// Parallelism of 1 serializes writes (one outstanding per sink), the
// simple back-pressure scheme spec.md §4.4 calls out as sufficient.
type updateConsumer struct {
	source      <-chan Item
	write       WriteFunc
	parallelism int
	tracerOut   io.Writer
}

// Option configures a Consumer built by NewUpdateConsumer.
type Option func(*updateConsumer)

// WithParallelism bounds the number of writes the sink keeps outstanding
// at once. n <= 0 is treated as 1 (fully serialized).
func WithParallelism(n int) Option {
	return func(u *updateConsumer) {
		if n > 0 {
			u.parallelism = n
		}
	}
}

// WithTracer attaches a writer that receives a trace line per write.
func WithTracer(w io.Writer) Option {
	return func(u *updateConsumer) {
		u.tracerOut = w
	}
}

// NewUpdateConsumer returns a Consumer that reads triples from source and
// applies each with write (spec.md §4.4: "INSERT: graph.insert(triple);
// DELETE: graph.delete(triple)" — write is the caller-supplied
// specialization of either).
func NewUpdateConsumer(source <-chan Item, write WriteFunc, opts ...Option) Consumer {
	u := &updateConsumer{source: source, write: write, parallelism: 1}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *updateConsumer) Execute(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- u.run(ctx)
		close(done)
	}()
	return done
}

// run is the sink's only suspension point besides reading source: it
// waits for each per-triple write to finish before absorbing more than
// u.parallelism triples at once (spec.md §5 suspension point (c)).
func (u *updateConsumer) run(ctx context.Context) error {
	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(u.parallelism)

	var n int
	for {
		select {
		case item, ok := <-u.source:
			if !ok {
				return grp.Wait()
			}
			if item.Err != nil {
				// A pending write error already cancels gCtx and will
				// surface from grp.Wait(); still record the source's own
				// terminal error so it isn't silently dropped if no write
				// has failed.
				grp.Go(func() error { return item.Err })
				return grp.Wait()
			}
			n++
			seq := n
			t := item.Triple
			grp.Go(func() error {
				u.trace(seq, t)
				return u.write(gCtx, t)
			})
		case <-gCtx.Done():
			return grp.Wait()
		}
	}
}

func (u *updateConsumer) trace(seq int, t triple.Triple) {
	tracer.V(2).Trace(u.tracerOut, func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("consumer: write #%d %s", seq, t.String())}}
	})
}

// errorConsumer is the degenerate sink of spec.md §4.4's "Error-only
// specialization": it fails unconditionally with a fixed reason,
// regardless of ctx, used by callers to surface preparation-time errors
// through the same Consumer interface as a real sink.
type errorConsumer struct {
	reason string
}

// NewErrorConsumer returns a Consumer whose Execute always rejects with
// reason, without reading any source.
func NewErrorConsumer(reason string) Consumer {
	return &errorConsumer{reason: reason}
}

func (e *errorConsumer) Execute(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	done <- fmt.Errorf("%s", e.reason)
	close(done)
	return done
}
