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

package bindings

import (
	"testing"

	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

func TestEmptyIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty() should be IsEmpty")
	}
}

func TestSetDoesNotMutateReceiver(t *testing.T) {
	b0 := Empty()
	b1 := b0.Set("?s", rdf.NewIRI(":a"))
	if !b0.IsEmpty() {
		t.Error("Set must not mutate its receiver")
	}
	if b1.IsEmpty() {
		t.Error("Set should produce a non-empty result")
	}
}

func TestGetUnbound(t *testing.T) {
	b := Empty()
	if _, ok := b.Get("?missing"); ok {
		t.Error("Get on an unbound variable should report ok=false")
	}
}

func TestBoundSubstitutesOnlyBoundVariables(t *testing.T) {
	tp := triple.New(rdf.NewVariable("s"), rdf.NewIRI(":knows"), rdf.NewVariable("o"))
	b := Empty().Set("?s", rdf.NewIRI(":Alice"))
	out := b.Bound(tp)
	if !out.Subject.Equal(rdf.NewIRI(":Alice")) {
		t.Errorf("Bound did not substitute ?s: %v", out.Subject)
	}
	if !out.Object.IsVariable() || out.Object.Name() != "?o" {
		t.Errorf("Bound should leave unbound ?o untouched: %v", out.Object)
	}
}

func TestUnionMergesDisjointVariables(t *testing.T) {
	a := Empty().Set("?s", rdf.NewIRI(":Alice"))
	b := Empty().Set("?o", rdf.NewIRI(":Carol"))
	u := a.Union(b)
	if s, ok := u.Get("?s"); !ok || !s.Equal(rdf.NewIRI(":Alice")) {
		t.Errorf("Union lost ?s: %v, %v", s, ok)
	}
	if o, ok := u.Get("?o"); !ok || !o.Equal(rdf.NewIRI(":Carol")) {
		t.Errorf("Union lost ?o: %v, %v", o, ok)
	}
}

func TestUnionAgreeingKeepsSharedTerm(t *testing.T) {
	a := Empty().Set("?s", rdf.NewIRI(":Alice"))
	b := Empty().Set("?s", rdf.NewIRI(":Alice"))
	u := a.Union(b)
	if s, ok := u.Get("?s"); !ok || !s.Equal(rdf.NewIRI(":Alice")) {
		t.Errorf("Union of agreeing bindings changed the value: %v, %v", s, ok)
	}
}

func TestEqual(t *testing.T) {
	a := Empty().Set("?s", rdf.NewIRI(":Alice"))
	b := Empty().Set("?s", rdf.NewIRI(":Alice"))
	c := Empty().Set("?s", rdf.NewIRI(":Bob"))
	if !a.Equal(b) {
		t.Error("a and b should be Equal")
	}
	if a.Equal(c) {
		t.Error("a and c should not be Equal")
	}
}

func TestVariablesStableWithinOneCall(t *testing.T) {
	b := Empty().Set("?z", rdf.NewIRI(":a")).Set("?a", rdf.NewIRI(":b"))
	v1 := b.Variables()
	v2 := b.Variables()
	if len(v1) != len(v2) {
		t.Fatalf("Variables length changed across calls")
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Errorf("Variables ordering not stable within repeated calls: %v vs %v", v1, v2)
		}
	}
}
