// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scriptpurity

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeReportsCalls(t *testing.T) {
	src := `
		var n = 0;
		function bump(){ n++; }
		function idle(){}
		bump();
		idle();`
	result, err := Analyze(src, Options{})
	require.NoError(t, err)

	byCallee := map[string]CallSite{}
	for _, c := range result.Calls {
		byCallee[c.Callee] = c
	}
	require.Contains(t, byCallee, "bump")
	require.Contains(t, byCallee, "idle")
	assert.False(t, byCallee["bump"].Pure)
	assert.Contains(t, byCallee["bump"].Flags, "global")
	assert.True(t, byCallee["idle"].Pure)
	assert.Equal(t, "pure", byCallee["idle"].Flags)
}

func TestAnalyzeWithExterns(t *testing.T) {
	externs := `
		/**
		 * @nosideeffects
		 * @return {number}
		 */
		function now() {}`
	result, err := Analyze(`function t(){ return now(); } t();`, Options{Externs: externs})
	require.NoError(t, err)
	for _, c := range result.Calls {
		if c.Callee == "now" {
			assert.True(t, c.Pure)
			return
		}
	}
	t.Fatal("no call to now reported")
}

func TestAnalyzeGraphDOT(t *testing.T) {
	result, err := Analyze(`function f(){} function g(){ f(); } g();`, Options{RenderGraph: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.GraphDOT, "digraph {"))
	assert.Contains(t, result.GraphDOT, "f")
}

func TestAnalyzeParseError(t *testing.T) {
	_, err := Analyze(`function {`, Options{})
	require.Error(t, err)
}

func TestAnalyzeDeterministic(t *testing.T) {
	src := `
		var n = 0;
		function f(o){ o.x = 1; }
		function g(){ n++; f({}); }
		g(); f(n);`
	run := func() *Result {
		r, err := Analyze(src, Options{})
		require.NoError(t, err)
		return r
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("results differ between runs (-first +second):\n%s", diff)
	}
}
