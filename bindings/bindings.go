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

// Package bindings implements the Bindings value type: a finite mapping
// from variable name to RDF term, per spec.md §3/§4.1.
package bindings

import (
	"sort"

	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

// Bindings is a finite, immutable-ish variable-to-term mapping. The zero
// value is not ready to use; call Empty() to obtain one.
//
// Bindings produced upstream of the bound join are treated as read-only;
// Set/Union/Bound always build a fresh map rather than aliasing the
// receiver's, so callers never need to defensively copy before handing a
// Bindings to this package.
type Bindings struct {
	m map[string]rdf.Term
}

// Empty returns a fresh, empty Bindings.
func Empty() Bindings {
	return Bindings{m: map[string]rdf.Term{}}
}

// IsEmpty reports whether b has no bound variables.
func (b Bindings) IsEmpty() bool {
	return len(b.m) == 0
}

// Variables returns the bound variable names. Ordering is deterministic
// within one call (lexicographic) but is not meaningful beyond that; the
// spec only requires "stable within one call."
func (b Bindings) Variables() []string {
	vs := make([]string, 0, len(b.m))
	for k := range b.m {
		vs = append(vs, k)
	}
	sort.Strings(vs)
	return vs
}

// Get returns the term bound to v, and whether v is bound at all.
func (b Bindings) Get(v string) (rdf.Term, bool) {
	t, ok := b.m[v]
	return t, ok
}

// Set returns a new Bindings equal to b but with v additionally bound to t.
// b itself is not mutated.
func (b Bindings) Set(v string, t rdf.Term) Bindings {
	nm := make(map[string]rdf.Term, len(b.m)+1)
	for k, val := range b.m {
		nm[k] = val
	}
	nm[v] = t
	return Bindings{m: nm}
}

// Bound applies b to the triple pattern tp: every variable field bound in
// b is substituted with its term; unbound variables, and non-variable
// fields, are left untouched. Bound never introduces new variables.
func (b Bindings) Bound(tp triple.Triple) triple.Triple {
	return triple.Triple{
		Subject:   b.substitute(tp.Subject),
		Predicate: b.substitute(tp.Predicate),
		Object:    b.substitute(tp.Object),
	}
}

// BoundBGP applies Bound to every pattern of bgp.
func (b Bindings) BoundBGP(bgp triple.BGP) triple.BGP {
	out := make(triple.BGP, len(bgp))
	for i, tp := range bgp {
		out[i] = b.Bound(tp)
	}
	return out
}

func (b Bindings) substitute(t rdf.Term) rdf.Term {
	if !t.IsVariable() {
		return t
	}
	if bound, ok := b.m[t.Name()]; ok {
		return bound
	}
	return t
}

// Union returns the pointwise union of b and other: every variable bound
// in either side is bound in the result. When a variable is bound on both
// sides with equal terms, the shared term is kept. When they disagree,
// behavior is unspecified per spec.md §3 ("not expected to occur by
// construction in bound join"); this implementation keeps b's value,
// consistent with b being treated as the "primary" side at every Union
// call site in boundjoin.
func (b Bindings) Union(other Bindings) Bindings {
	nm := make(map[string]rdf.Term, len(b.m)+len(other.m))
	for k, v := range other.m {
		nm[k] = v
	}
	for k, v := range b.m {
		nm[k] = v
	}
	return Bindings{m: nm}
}

// Equal reports whether b and other bind exactly the same variables to
// structurally equal terms.
func (b Bindings) Equal(other Bindings) bool {
	if len(b.m) != len(other.m) {
		return false
	}
	for k, v := range b.m {
		ov, ok := other.m[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
