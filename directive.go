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
	"strings"
	"unicode"
)

// A recognizer attempts to match a single directive
// that starts at pos and does not extend past end.
// If the directive is not present, it returns a nil expression and a nil error.
// A non-nil error indicates malformed input and stops parsing.
type recognizer func(p *inlineParser, pos, end int) (e *Expression, next int, err error)

// directives is the list of recognizers in priority order.
// Earlier entries win where prefixes overlap:
// "![[" is an image before it is a link,
// "```" is a code block before it is inline code,
// and "**" is bold before it is italic.
//
// The styled recognizers scan their interiors with the directive list,
// so the list is filled in by init.
var directives []recognizer

func init() {
	directives = []recognizer{
		inlineMath,
		internalLink,
		externalImage,
		codeBlock,
		inlineCode,
		internalImage,
		bold,
		italic,
		strikethrough,
		highlight,
	}
}

// directive returns the first directive that matches at pos.
func (p *inlineParser) directive(pos, end int) (*Expression, int, error) {
	for _, match := range directives {
		e, next, err := match(p, pos, end)
		if err != nil || e != nil {
			return e, next, err
		}
	}
	if p.autolinks {
		return rawHyperLink(p, pos, end)
	}
	return nil, pos, nil
}

// fenced matches a literal open delimiter at pos
// followed by the first occurrence of the close delimiter before end.
// It returns the span strictly between the delimiters
// and the position after the close delimiter.
func (p *inlineParser) fenced(pos, end int, open, close string) (inner Span, next int, ok bool) {
	if !strings.HasPrefix(p.source[pos:end], open) {
		return NullSpan(), pos, false
	}
	start := pos + len(open)
	i := strings.Index(p.source[start:end], close)
	if i < 0 {
		return NullSpan(), pos, false
	}
	inner = Span{Start: start, End: start + i}
	return inner, inner.End + len(close), true
}

// fencedChar is the single-character version of fenced.
// It stops at the first close character after the open character.
func (p *inlineParser) fencedChar(pos, end int, open, close byte) (inner Span, next int, ok bool) {
	if pos >= end || p.source[pos] != open {
		return NullSpan(), pos, false
	}
	start := pos + 1
	i := strings.IndexByte(p.source[start:end], close)
	if i < 0 {
		return NullSpan(), pos, false
	}
	inner = Span{Start: start, End: start + i}
	return inner, inner.End + 1, true
}

// styled matches the first of the given delimiters that fences a span at pos
// and parses the span's interior as inline content.
func (p *inlineParser) styled(kind ExpressionKind, pos, end int, delims ...string) (*Expression, int, error) {
	for _, delim := range delims {
		var inner Span
		var next int
		var ok bool
		if len(delim) == 1 {
			inner, next, ok = p.fencedChar(pos, end, delim[0], delim[0])
		} else {
			inner, next, ok = p.fenced(pos, end, delim, delim)
		}
		if !ok {
			continue
		}
		children, err := p.parseInline(inner.Start, inner.End)
		if err != nil {
			return nil, pos, err
		}
		return &Expression{
			Kind:     kind,
			Span:     Span{Start: pos, End: next},
			Children: children,
		}, next, nil
	}
	return nil, pos, nil
}

func inlineMath(p *inlineParser, pos, end int) (*Expression, int, error) {
	inner, next, ok := p.fencedChar(pos, end, '$', '$')
	if !ok {
		return nil, pos, nil
	}
	return p.leaf(InlineMathKind, pos, next, inner), next, nil
}

func internalLink(p *inlineParser, pos, end int) (*Expression, int, error) {
	inner, next, ok := p.fenced(pos, end, "[[", "]]")
	if !ok {
		return nil, pos, nil
	}
	return p.leaf(InternalLinkKind, pos, next, inner), next, nil
}

// externalImage matches ![alt](url).
func externalImage(p *inlineParser, pos, end int) (*Expression, int, error) {
	if pos >= end || p.source[pos] != '!' {
		return nil, pos, nil
	}
	alt, url, next, ok := p.markdownLink(pos+1, end)
	if !ok {
		return nil, pos, nil
	}
	return &Expression{
		Kind:  ExternalImageKind,
		Span:  Span{Start: pos, End: next},
		Label: p.source[alt.Start:alt.End],
		Text:  p.source[url.Start:url.End],
	}, next, nil
}

// markdownLink matches [text](destination).
func (p *inlineParser) markdownLink(pos, end int) (text, dest Span, next int, ok bool) {
	text, next, ok = p.fencedChar(pos, end, '[', ']')
	if !ok {
		return NullSpan(), NullSpan(), pos, false
	}
	dest, next, ok = p.fencedChar(next, end, '(', ')')
	if !ok {
		return NullSpan(), NullSpan(), pos, false
	}
	return text, dest, next, true
}

// codeBlock matches a triple-backtick fence.
// The first line of the interior is the language tag.
func codeBlock(p *inlineParser, pos, end int) (*Expression, int, error) {
	const fence = "```"
	inner, next, ok := p.fenced(pos, end, fence, fence)
	if !ok {
		if strings.HasPrefix(p.source[pos:end], fence) {
			return nil, pos, p.errorf(Span{Start: pos, End: end}, "unterminated %s fence", fence)
		}
		return nil, pos, nil
	}
	langEnd := inner.End
	if i := strings.IndexByte(p.source[inner.Start:inner.End], '\n'); i >= 0 {
		langEnd = inner.Start + i
	}
	return &Expression{
		Kind:  CodeBlockKind,
		Span:  Span{Start: pos, End: next},
		Label: strings.TrimRight(p.source[inner.Start:langEnd], "\r"),
		Text:  strings.TrimRightFunc(p.source[langEnd:inner.End], unicode.IsSpace),
	}, next, nil
}

func inlineCode(p *inlineParser, pos, end int) (*Expression, int, error) {
	inner, next, ok := p.fencedChar(pos, end, '`', '`')
	if !ok {
		if pos < end && p.source[pos] == '`' {
			return nil, pos, p.errorf(Span{Start: pos, End: end}, "unterminated ` fence")
		}
		return nil, pos, nil
	}
	return p.leaf(InlineCodeKind, pos, next, inner), next, nil
}

// internalImage matches ![[target]].
func internalImage(p *inlineParser, pos, end int) (*Expression, int, error) {
	if pos >= end || p.source[pos] != '!' {
		return nil, pos, nil
	}
	inner, next, ok := p.fenced(pos+1, end, "[[", "]]")
	if !ok {
		return nil, pos, nil
	}
	return p.leaf(InternalImageKind, pos, next, inner), next, nil
}

func bold(p *inlineParser, pos, end int) (*Expression, int, error) {
	return p.styled(BoldKind, pos, end, "**", "__")
}

func italic(p *inlineParser, pos, end int) (*Expression, int, error) {
	return p.styled(ItalicKind, pos, end, "*", "_")
}

func strikethrough(p *inlineParser, pos, end int) (*Expression, int, error) {
	return p.styled(StrikeThroughKind, pos, end, "~~")
}

func highlight(p *inlineParser, pos, end int) (*Expression, int, error) {
	return p.styled(HighlightKind, pos, end, "==")
}

// rawHyperLink matches a bare http or https URL.
// The URL ends at the first whitespace character,
// not counting trailing sentence punctuation.
func rawHyperLink(p *inlineParser, pos, end int) (*Expression, int, error) {
	rest := p.source[pos:end]
	var scheme string
	switch {
	case strings.HasPrefix(rest, "https://"):
		scheme = "https://"
	case strings.HasPrefix(rest, "http://"):
		scheme = "http://"
	default:
		return nil, pos, nil
	}
	n := strings.IndexFunc(rest, unicode.IsSpace)
	if n < 0 {
		n = len(rest)
	}
	n = len(strings.TrimRight(rest[:n], ".,;:!?)"))
	if n <= len(scheme) {
		return nil, pos, nil
	}
	next := pos + n
	return p.leaf(RawHyperLinkKind, pos, next, Span{Start: pos, End: next}), next, nil
}

func (p *inlineParser) leaf(kind ExpressionKind, start, end int, payload Span) *Expression {
	return &Expression{
		Kind: kind,
		Span: Span{Start: start, End: end},
		Text: p.source[payload.Start:payload.End],
	}
}
