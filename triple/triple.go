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

// Package triple provides the Triple (pattern) and BGP types shared by the
// rest of the engine. Per spec.md §3, a triple pattern is a triple whose
// fields may hold variables, so one type serves a concrete triple and a
// pattern alike.
package triple

import (
	"fmt"

	"github.com/sparqlfed/boundjoin/rdf"
)

// Triple is a {subject, predicate, object} record. Any field may be a
// rdf.Variable, in which case the Triple is being used as a triple pattern.
type Triple struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
}

// New builds a Triple from its three components.
func New(s, p, o rdf.Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String renders the triple pattern in a SPARQL-ish form.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Variables returns the distinct variable terms appearing in t, subject
// first, then predicate, then object, skipping any position already seen.
func (t Triple) Variables() []rdf.Term {
	var vs []rdf.Term
	seen := make(map[string]bool)
	for _, term := range [...]rdf.Term{t.Subject, t.Predicate, t.Object} {
		if term.IsVariable() && !seen[term.Name()] {
			seen[term.Name()] = true
			vs = append(vs, term)
		}
	}
	return vs
}

// BGP is an ordered sequence of triple patterns (Basic Graph Pattern).
// Order carries no join semantics (set semantics) but is preserved for
// stable rewriting, per spec.md §3.
type BGP []Triple

// Variables returns the distinct variables used across the whole BGP, in
// first-occurrence order.
func (b BGP) Variables() []rdf.Term {
	var vs []rdf.Term
	seen := make(map[string]bool)
	for _, tp := range b {
		for _, v := range tp.Variables() {
			if !seen[v.Name()] {
				seen[v.Name()] = true
				vs = append(vs, v)
			}
		}
	}
	return vs
}

// String renders the BGP as one triple pattern per line.
func (b BGP) String() string {
	s := ""
	for _, tp := range b {
		s += tp.String() + "\n"
	}
	return s
}
