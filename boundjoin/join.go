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

// Package boundjoin implements the Bound Join operator (spec.md §4.3): it
// batches a stream of partial solutions into union-of-BGPs queries against
// a graph.Graph, demultiplexes the answers back to their originating
// inputs, and re-merges solutions, under a streaming, asynchronous,
// out-of-order pipeline contract.
//
// The batching/rewriting/fan-in shape is grounded on bql/planner's
// goroutine-and-channel idiom in the teacher (data_access.go's per-lookup
// wg.Add/go func/wg.Wait fan-out, planner.go's errgroup.WithContext
// per-row concurrency); the rewriting algorithm itself is a direct
// transcription of spec.md §4.3, including its two documented footguns
// (see rewrite.go).
package boundjoin

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/graph"
	"github.com/sparqlfed/boundjoin/tracer"
	"github.com/sparqlfed/boundjoin/triple"
)

// DefaultBufferSize is N from spec.md §4.3/§6: the number of inputs
// accumulated per bucket before a batch is dispatched. It is also the
// exclusive upper bound used by findKey's suffix search (spec.md §9
// requires the two stay linked, hence one constant).
const DefaultBufferSize = 15

// Item is one element of the operator's input sequence: a solution
// Bindings, or (on the final element only) a terminal source error. A
// source that ends in error must close its channel immediately after
// sending the Item with Err set.
type Item struct {
	Bindings bindings.Bindings
	Err      error
}

// Config configures a Join. The zero Config is valid and uses the
// spec-mandated defaults.
type Config struct {
	// BufferSize overrides N. Must default to DefaultBufferSize per
	// spec.md §6; a value <= 0 is treated as the default.
	BufferSize int

	// MaxInFlightBatches caps the number of batches concurrently
	// dispatched to the graph. spec.md §5 warns that with a slow remote,
	// in-flight batches "grow unboundedly unless the implementation adds
	// a ceiling"; a value <= 0 defaults to 4.
	MaxInFlightBatches int

	// Tracer, if non-nil, receives trace lines for batch dispatch and
	// batch completion.
	Tracer io.Writer
}

func (c *Config) bufferSize() int {
	if c == nil || c.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return c.BufferSize
}

func (c *Config) maxInFlight() int {
	if c == nil || c.MaxInFlightBatches <= 0 {
		return 4
	}
	return c.MaxInFlightBatches
}

func (c *Config) tracerOut() io.Writer {
	if c == nil {
		return nil
	}
	return c.Tracer
}

// Join runs the Bound Join operator described in spec.md §4.3: it reads
// source, buffers inputs into buckets of Config.BufferSize, rewrites bgp
// per bucket, dispatches each bucket to g, demultiplexes and re-merges the
// results, and emits them on the returned channel. The channel is closed
// exactly once, after a single terminal error Result (if any) or after
// every dispatched batch has drained with no error.
//
// The returned cancel func implements spec.md §5's "downstream
// unsubscribes": calling it stops source consumption and abandons
// in-flight batches without emitting a further Result or error.
func Join(ctx context.Context, source <-chan Item, bgp triple.BGP, g graph.Graph, opts *graph.Options, cfg *Config) (<-chan graph.Result, func()) {
	innerCtx, cancel := context.WithCancel(ctx)
	j := &joinOp{
		ctx:    innerCtx,
		source: source,
		bgp:    bgp,
		graph:  g,
		opts:   opts,
		cfg:    cfg,
		out:    make(chan graph.Result),
	}
	go j.run()
	return j.out, func() {
		j.markCancelled()
		cancel()
	}
}

// joinOp holds the state of one Join invocation's run. It is owned
// exclusively by the single goroutine started in Join (run, and the
// batch goroutines it spawns via errgroup), per spec.md §5's
// single-scheduler ownership discipline.
type joinOp struct {
	ctx    context.Context
	source <-chan Item
	bgp    triple.BGP
	graph  graph.Graph
	opts   *graph.Options
	cfg    *Config
	out    chan graph.Result

	cancelledMu sync.Mutex
	cancelled   bool
}

func (j *joinOp) markCancelled() {
	j.cancelledMu.Lock()
	j.cancelled = true
	j.cancelledMu.Unlock()
}

func (j *joinOp) wasCancelled() bool {
	j.cancelledMu.Lock()
	defer j.cancelledMu.Unlock()
	return j.cancelled
}

// run is the operator's STREAMING/DRAINING state: it buffers source items
// and dispatches full buckets as batches, bounded to cfg.maxInFlight()
// concurrently in flight via errgroup's limit (spec.md §5 back-pressure).
// When source is exhausted it transitions to DRAINING by waiting for all
// dispatched batches (grp.Wait), then to COMPLETE or FAILED.
func (j *joinOp) run() {
	defer close(j.out)

	grp, gCtx := errgroup.WithContext(j.ctx)
	grp.SetLimit(j.cfg.maxInFlight())

	buf := make([]bindings.Bindings, 0, j.cfg.bufferSize())
	bufSize := j.cfg.bufferSize()

	flush := func() {
		if len(buf) == 0 {
			return
		}
		bucket := buf
		buf = make([]bindings.Bindings, 0, bufSize)
		batchID := uuid.NewString()
		grp.Go(func() error {
			return j.runBatch(gCtx, batchID, bucket)
		})
	}

sourceLoop:
	for {
		select {
		case item, ok := <-j.source:
			if !ok {
				break sourceLoop
			}
			if item.Err != nil {
				// A source error is fatal; stop consuming. Returning it
				// from the group cancels gCtx, so in-flight batches stop
				// early, and grp.Wait reports it.
				grp.Go(func() error { return item.Err })
				break sourceLoop
			}
			buf = append(buf, item.Bindings)
			if len(buf) >= bufSize {
				flush()
			}
		case <-gCtx.Done():
			break sourceLoop
		}
	}
	// Residual buffer (possibly empty — no dispatch in that case), per
	// spec.md §4.3 step 1.
	if gCtx.Err() == nil {
		flush()
	}

	err := grp.Wait()
	if j.wasCancelled() {
		return
	}
	if err != nil {
		select {
		case j.out <- graph.Result{Err: err}:
		case <-j.ctx.Done():
		}
	}
}

// runBatch dispatches one batch: the degenerate fast path for a
// single-empty-binding bucket (spec.md §4.3 step 2), or the general
// rewrite-dispatch-demux-merge path (steps 3-5).
func (j *joinOp) runBatch(ctx context.Context, batchID string, bucket []bindings.Bindings) error {
	tracer.V(2).Trace(j.cfg.tracerOut(), func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("boundjoin: dispatching batch %s (%d inputs)", batchID, len(bucket))}}
	})

	if len(bucket) == 1 && bucket[0].IsEmpty() {
		return j.runFastPath(ctx, batchID)
	}
	return j.runRewritten(ctx, batchID, bucket)
}

// runFastPath implements spec.md §4.3 step 2: a bucket of exactly one
// empty Bindings is forwarded to graph.EvalBGP directly, with no
// rewriting — "the first join in a pipeline starting from the empty
// binding."
func (j *joinOp) runFastPath(ctx context.Context, batchID string) error {
	results, err := j.graph.EvalBGP(ctx, j.bgp, j.opts)
	if err != nil {
		return err
	}
	for res := range results {
		if res.Err != nil {
			return res.Err
		}
		select {
		case j.out <- res:
		case <-ctx.Done():
			return nil
		}
	}
	tracer.V(3).Trace(j.cfg.tracerOut(), func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("boundjoin: batch %s (fast path) drained", batchID)}}
	})
	return nil
}

// runRewritten implements spec.md §4.3 steps 3-5: assign each input a
// rewriting key, build the per-input rewritten BGP, record the
// rewritingTable, dispatch the union, then demultiplex and merge each
// output against its originating input.
func (j *joinOp) runRewritten(ctx context.Context, batchID string, bucket []bindings.Bindings) error {
	maxKey := j.cfg.bufferSize()
	rewritingTable := make(map[int]bindings.Bindings, len(bucket))
	union := make([]triple.BGP, len(bucket))
	for i, b := range bucket {
		rewritingTable[i] = b
		union[i] = rewriteBGP(j.bgp, b, i)
	}

	results, err := j.graph.EvalUnion(ctx, union, j.opts)
	if err != nil {
		return err
	}
	for res := range results {
		if res.Err != nil {
			return res.Err
		}
		debugAssertSingleKey(res.Bindings, maxKey)
		key := findKey(res.Bindings, maxKey)
		y := res.Bindings
		if key >= 0 {
			y = revertBinding(res.Bindings, key)
		}
		merged := y
		if key >= 0 {
			if orig, ok := rewritingTable[key]; ok {
				merged = y.Union(orig)
			}
		}
		select {
		case j.out <- graph.Result{Bindings: merged}:
		case <-ctx.Done():
			return nil
		}
	}
	tracer.V(3).Trace(j.cfg.tracerOut(), func() *tracer.Arguments {
		return &tracer.Arguments{Msgs: []string{fmt.Sprintf("boundjoin: batch %s (%d inputs) drained", batchID, len(bucket))}}
	})
	return nil
}
