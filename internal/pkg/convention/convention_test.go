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

package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/parser"
)

func invocation(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	var call *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if call == nil && ast.IsInvocation(n) {
			call = n
		}
		return call == nil
	}, nil)
	require.NotNil(t, call)
	return call
}

func TestDescribeCachingCall(t *testing.T) {
	call := invocation(t, `lib.reflect.cache(obj, key, function(){ return 1; });`)
	c := Default{}.DescribeCachingCall(call)
	require.NotNil(t, c)
	assert.Equal(t, ast.Function, c.ValueFn.Token)
	assert.Nil(t, c.KeyFn)
}

func TestDescribeCachingCallWithKeyFn(t *testing.T) {
	call := invocation(t, `goog.reflect.cache(obj, key, valueFn, keyFn);`)
	c := Default{}.DescribeCachingCall(call)
	require.NotNil(t, c)
	assert.Equal(t, "valueFn", c.ValueFn.Value)
	assert.Equal(t, "keyFn", c.KeyFn.Value)
}

func TestDescribeCachingCallRejectsOtherShapes(t *testing.T) {
	for _, src := range []string{
		`reflect.cache(obj);`,          // too few args
		`lib.reflect.other(a, b, c);`,  // wrong method
		`cache(a, b, c);`,              // bare call
		`new lib.reflect.cache(a, b);`, // constructor
	} {
		assert.Nil(t, Default{}.DescribeCachingCall(invocation(t, src)), src)
	}
}

func TestNoneMatchesNothing(t *testing.T) {
	call := invocation(t, `lib.reflect.cache(obj, key, valueFn);`)
	assert.Nil(t, None{}.DescribeCachingCall(call))
}
