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

package parser

import (
	"strings"

	"github.com/google/go-script-purity/internal/pkg/ast"
)

// parseJSDoc extracts the annotations the analysis reads from a doc
// block's raw text (between the comment fences, leading `*` included).
func parseJSDoc(text string) *ast.JSDocInfo {
	info := &ast.JSDocInfo{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		at := strings.IndexByte(line, '@')
		if at < 0 {
			continue
		}
		tag := line[at+1:]
		switch {
		case strings.HasPrefix(tag, "nosideeffects"):
			info.NoSideEffects = true
		case strings.HasPrefix(tag, "modifies"):
			arg := braceArg(tag[len("modifies"):])
			switch arg {
			case "this":
				info.ModifiesThis = true
			case "arguments":
				info.ModifiesArguments = true
			}
		case strings.HasPrefix(tag, "throws"):
			t := braceArg(tag[len("throws"):])
			if t == "" {
				t = "?"
			}
			info.ThrownTypes = append(info.ThrownTypes, t)
		case strings.HasPrefix(tag, "returns"):
			info.ReturnType = braceArg(tag[len("returns"):])
			info.HasReturnType = info.ReturnType != ""
		case strings.HasPrefix(tag, "return"):
			info.ReturnType = braceArg(tag[len("return"):])
			info.HasReturnType = info.ReturnType != ""
		}
	}
	return info
}

// braceArg returns the contents of a leading {...} group, or "".
func braceArg(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return ""
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(s[1:end])
}
