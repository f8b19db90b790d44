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

//go:build !boundjoin_debug

package boundjoin

import "github.com/sparqlfed/boundjoin/bindings"

// debugAssertSingleKey is a no-op outside -tags boundjoin_debug builds;
// see debug_assert.go.
func debugAssertSingleKey(x bindings.Bindings, maxKey int) {}
