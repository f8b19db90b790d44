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

package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

func closedTripleSource(items ...Item) <-chan Item {
	ch := make(chan Item, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}

func awaitExecute(t *testing.T, done <-chan error, timeout time.Duration) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		t.Fatal("Execute did not resolve in time")
		return nil
	}
}

func tripleWithSubject(iri string) triple.Triple {
	return triple.New(rdf.NewIRI(iri), rdf.NewIRI(":p"), rdf.NewIRI(":o"))
}

func TestUpdateConsumerInsertsAllThenResolves(t *testing.T) {
	// spec.md §8 scenario 6: a 3-triple INSERT sequence resolves exactly
	// once, after all three writes complete.
	var mu sync.Mutex
	var written []triple.Triple
	write := func(ctx context.Context, tr triple.Triple) error {
		mu.Lock()
		defer mu.Unlock()
		written = append(written, tr)
		return nil
	}
	src := closedTripleSource(
		Item{Triple: tripleWithSubject(":a")},
		Item{Triple: tripleWithSubject(":b")},
		Item{Triple: tripleWithSubject(":c")},
	)
	c := NewUpdateConsumer(src, write)
	err := awaitExecute(t, c.Execute(context.Background()), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(written) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(written))
	}
}

func TestUpdateConsumerEmptySourceResolvesImmediately(t *testing.T) {
	calls := 0
	write := func(ctx context.Context, tr triple.Triple) error {
		calls++
		return nil
	}
	c := NewUpdateConsumer(closedTripleSource(), write)
	if err := awaitExecute(t, c.Execute(context.Background()), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no writes for an empty source, got %d", calls)
	}
}

func TestUpdateConsumerWriteFailureIsTerminal(t *testing.T) {
	wantErr := errors.New("write boom")
	var calls int32
	var mu sync.Mutex
	write := func(ctx context.Context, tr triple.Triple) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			return wantErr
		}
		<-ctx.Done() // the other writes block until the failure cancels ctx.
		return ctx.Err()
	}
	src := closedTripleSource(
		Item{Triple: tripleWithSubject(":a")},
		Item{Triple: tripleWithSubject(":b")},
		Item{Triple: tripleWithSubject(":c")},
	)
	c := NewUpdateConsumer(src, write, WithParallelism(3))
	err := awaitExecute(t, c.Execute(context.Background()), time.Second)
	if err == nil {
		t.Fatal("expected a terminal error")
	}
}

func TestUpdateConsumerSourceErrorIsTerminal(t *testing.T) {
	wantErr := errors.New("source exploded")
	calls := 0
	write := func(ctx context.Context, tr triple.Triple) error {
		calls++
		return nil
	}
	src := closedTripleSource(Item{Triple: tripleWithSubject(":a")}, Item{Err: wantErr})
	c := NewUpdateConsumer(src, write)
	err := awaitExecute(t, c.Execute(context.Background()), time.Second)
	if err == nil {
		t.Fatal("expected the source error to surface from Execute")
	}
}

func TestUpdateConsumerSerializesByDefault(t *testing.T) {
	var mu sync.Mutex
	inflight := 0
	maxInflight := 0
	write := func(ctx context.Context, tr triple.Triple) error {
		mu.Lock()
		inflight++
		if inflight > maxInflight {
			maxInflight = inflight
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		inflight--
		mu.Unlock()
		return nil
	}
	src := closedTripleSource(
		Item{Triple: tripleWithSubject(":a")},
		Item{Triple: tripleWithSubject(":b")},
		Item{Triple: tripleWithSubject(":c")},
	)
	c := NewUpdateConsumer(src, write)
	if err := awaitExecute(t, c.Execute(context.Background()), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if maxInflight > 1 {
		t.Errorf("expected at most 1 write in flight with default parallelism, saw %d", maxInflight)
	}
}

func TestErrorConsumerAlwaysRejects(t *testing.T) {
	c := NewErrorConsumer("graph unavailable")
	err := awaitExecute(t, c.Execute(context.Background()), time.Second)
	if err == nil {
		t.Fatal("expected the error-only sink to reject")
	}
	if err.Error() != "graph unavailable" {
		t.Errorf("got %q, want %q", err.Error(), "graph unavailable")
	}
}
