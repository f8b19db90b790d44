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

//go:build boundjoin_debug

package boundjoin

import (
	"fmt"

	"github.com/sparqlfed/boundjoin/bindings"
)

// debugAssertSingleKey implements spec.md §9's recommendation for the
// findKey ambiguity it otherwise leaves unresolved at runtime: "assert
// one key per output in debug builds." It panics if x's variables carry
// more than one distinct rewriting suffix, a state findKey's
// first-match behavior papers over silently in a normal build.
//
// Only compiled with -tags boundjoin_debug; the hot demux path pays
// nothing for this check otherwise.
func debugAssertSingleKey(x bindings.Bindings, maxKey int) {
	seen := -1
	for _, v := range x.Variables() {
		j, ok := parseSuffixKey(v, maxKey)
		if !ok {
			continue
		}
		if seen == -1 {
			seen = j
			continue
		}
		if seen != j {
			panic(fmt.Sprintf("boundjoin: output carries more than one rewriting key (%d and %d): %v", seen, j, x.Variables()))
		}
	}
}
