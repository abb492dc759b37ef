// Copyright 2026 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package obsidized

import (
	"fmt"
	"strings"
	"unicode"
)

// inlineParser converts regions of a source string into inline expressions.
type inlineParser struct {
	source    string
	autolinks bool
}

// parseInline parses source[start:end],
// treating anything that does not begin a directive as plain text.
// The returned expressions cover the whole region,
// except for whitespace trimmed from the front of text runs.
func (p *inlineParser) parseInline(start, end int) ([]*Expression, error) {
	output := make([]*Expression, 0, 4)
	pos := start
	for pos < end {
		found := false
		for i := range p.source[pos:end] {
			e, next, err := p.directive(pos+i, end)
			if err != nil {
				return nil, err
			}
			if e == nil {
				continue
			}
			output = p.appendText(output, pos, pos+i)
			output = append(output, e)
			pos = next
			found = true
			break
		}
		if !found {
			output = p.appendText(output, pos, end)
			break
		}
	}
	return output, nil
}

// appendText appends source[start:end] as a text expression
// with leading whitespace removed.
// Runs that are empty after trimming are dropped.
func (p *inlineParser) appendText(dst []*Expression, start, end int) []*Expression {
	text := strings.TrimLeftFunc(p.source[start:end], unicode.IsSpace)
	if text == "" {
		return dst
	}
	return append(dst, &Expression{
		Kind: TextKind,
		Span: Span{Start: end - len(text), End: end},
		Text: text,
	})
}

func (p *inlineParser) errorf(span Span, format string, args ...any) error {
	return &ParseError{
		Line: lineNumber(p.source, span.Start),
		Span: span,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// lineNumber returns the 1-based line number of the given offset.
func lineNumber(source string, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return 1 + strings.Count(source[:offset], "\n")
}
