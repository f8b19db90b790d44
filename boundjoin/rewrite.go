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

package boundjoin

import (
	"strconv"
	"strings"

	"github.com/sparqlfed/boundjoin/bindings"
	"github.com/sparqlfed/boundjoin/rdf"
	"github.com/sparqlfed/boundjoin/triple"
)

// suffix returns the wire-format rewriting suffix for key i: "_" followed
// by the decimal key, per spec.md §6.
func suffix(key int) string {
	return "_" + strconv.Itoa(key)
}

// rewrite appends the rewriting suffix for key to every variable field of
// tp, per spec.md §4.3 step 3. Non-variable fields pass through untouched.
func rewrite(tp triple.Triple, key int) triple.Triple {
	s := suffix(key)
	return triple.Triple{
		Subject:   rewriteTerm(tp.Subject, s),
		Predicate: rewriteTerm(tp.Predicate, s),
		Object:    rewriteTerm(tp.Object, s),
	}
}

func rewriteTerm(t rdf.Term, s string) rdf.Term {
	if !t.IsVariable() {
		return t
	}
	return t.WithVariableSuffix(s)
}

// rewriteBGP rewrites every pattern of bgp under the bindings for input i,
// per spec.md §4.3 step 3: boundedBGP_i = [rewrite(b_i.bound(tp), i) for
// tp in bgp].
func rewriteBGP(bgp triple.BGP, b bindings.Bindings, key int) triple.BGP {
	out := make(triple.BGP, len(bgp))
	for i, tp := range bgp {
		out[i] = rewrite(b.Bound(tp), key)
	}
	return out
}

// findKey scans x's variables for the first one whose name ends with a
// rewriting suffix "_j", j in [0, maxKey), and returns j. It returns -1 if
// none match.
//
// This preserves a deliberate footgun from the source system (spec.md §9):
// it is the *first* matching variable in Bindings.Variables() order, not
// necessarily a canonical one, and a variable name that legitimately ends
// in "_<digit>" before rewriting is indistinguishable from a rewritten
// one. The batching invariant (buckets never exceed maxKey) is what keeps
// this usable in practice; see spec.md §4.3 "Rewriting collision".
func findKey(x bindings.Bindings, maxKey int) int {
	for _, v := range x.Variables() {
		if j, ok := parseSuffixKey(v, maxKey); ok {
			return j
		}
	}
	return -1
}

// parseSuffixKey reports whether name ends with "_j" for some integer j in
// [0, maxKey), returning j.
func parseSuffixKey(name string, maxKey int) (int, bool) {
	for j := 0; j < maxKey; j++ {
		if strings.HasSuffix(name, suffix(j)) {
			return j, true
		}
	}
	return 0, false
}

// revertBinding reverts the rewriting applied for rewriting key, building
// a fresh Bindings where every "_<key>"-suffixed variable name has that
// suffix stripped and every other variable passes through unchanged, per
// spec.md §4.3 step 5 "Revert".
//
// It deliberately uses the *first* occurrence of "_<key>" in each variable
// name (strings.Index, not a trailing-suffix search) to decide where to
// truncate — a second preserved footgun (spec.md §9): a variable whose
// name legitimately contains that substring earlier on would be truncated
// at the wrong point. Do not "fix" this; it is bit-compatible with the
// source system by design.
func revertBinding(x bindings.Bindings, key int) bindings.Bindings {
	y := bindings.Empty()
	tok := suffix(key)
	for _, v := range x.Variables() {
		t, _ := x.Get(v)
		if idx := strings.Index(v, tok); idx >= 0 {
			y = y.Set(v[:idx], t)
			continue
		}
		y = y.Set(v, t)
	}
	return y
}
