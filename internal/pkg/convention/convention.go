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

// Package convention recognizes library-specific coding idioms the
// analysis treats specially.
package convention

import "github.com/google/go-script-purity/internal/pkg/ast"

// Cache describes a recognized memoization-cache call: the value is
// produced by ValueFn, optionally keyed by KeyFn.
type Cache struct {
	CacheObj *ast.Node
	Key      *ast.Node
	ValueFn  *ast.Node
	KeyFn    *ast.Node
}

// Convention is the pluggable coding-convention query.
type Convention interface {
	// DescribeCachingCall returns a Cache when the invocation is a
	// recognized memoization idiom, else nil.
	DescribeCachingCall(invocation *ast.Node) *Cache
}

// Default recognizes the standard library's reflect.cache idiom:
// `lib.reflect.cache(cacheObj, key, valueFn, opt_keyFn)`.
type Default struct{}

// DescribeCachingCall implements Convention.
func (Default) DescribeCachingCall(invocation *ast.Node) *Cache {
	if invocation.Token != ast.Call {
		return nil
	}
	callee := invocation.FirstChild()
	if callee.Token != ast.GetProp || callee.Value != "cache" {
		return nil
	}
	obj := callee.FirstChild()
	if obj.Token != ast.GetProp || obj.Value != "reflect" {
		return nil
	}
	args := invocation.Children[1:]
	if len(args) != 3 && len(args) != 4 {
		return nil
	}
	c := &Cache{CacheObj: args[0], Key: args[1], ValueFn: args[2]}
	if len(args) == 4 {
		c.KeyFn = args[3]
	}
	return c
}

// None matches no idioms.
type None struct{}

// DescribeCachingCall implements Convention.
func (None) DescribeCachingCall(*ast.Node) *Cache { return nil }
