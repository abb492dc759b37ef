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

// Package normhtml provides functions for comparing rendered HTML
// while ignoring insignificant differences
// such as whitespace around block elements and attribute order.
package normhtml

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// NormalizeHTML strips insignificant output differences from HTML.
// Runs of whitespace in text are collapsed to a single space,
// whitespace next to block tags is removed,
// and attributes are sorted by name.
func NormalizeHTML(b []byte) []byte {
	type htmlAttribute struct {
		key   string
		value string
	}

	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	last := html.StartTagToken
	var lastTag string
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return bytes.TrimRightFunc(output, unicode.IsSpace)
		case html.TextToken:
			data := whitespaceRE.ReplaceAll(tok.Text(), []byte(" "))
			if isBlockTag(lastTag) {
				switch last {
				case html.StartTagToken:
					data = bytes.TrimLeftFunc(data, unicode.IsSpace)
				case html.EndTagToken:
					data = bytes.TrimSpace(data)
				}
			}
			output = append(output, htmlEscaper.Replace(data)...)
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)
			if isBlockTag(tag) {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "</"...)
			output = append(output, tag...)
			output = append(output, ">"...)
			lastTag = tag
		case html.StartTagToken, html.SelfClosingTagToken:
			tagBytes, hasAttr := tok.TagName()
			tag := string(tagBytes)
			if isBlockTag(tag) {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "<"...)
			output = append(output, tag...)
			if hasAttr {
				var attrs []htmlAttribute
				for {
					k, v, more := tok.TagAttr()
					attrs = append(attrs, htmlAttribute{string(k), string(v)})
					if !more {
						break
					}
				}
				sort.Slice(attrs, func(i, j int) bool {
					return attrs[i].key < attrs[j].key
				})
				for _, attr := range attrs {
					output = append(output, " "...)
					output = append(output, attr.key...)
					if attr.value != "" {
						output = append(output, `="`...)
						output = append(output, html.EscapeString(attr.value)...)
						output = append(output, `"`...)
					}
				}
			}
			output = append(output, ">"...)
			lastTag = tag
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}

		last = tt
		if tt == html.SelfClosingTagToken {
			last = html.EndTagToken
		}
	}
}

// CheckBalanced returns an error if a start tag in b
// is not matched by an end tag of the same name
// or if an end tag appears without a matching start tag.
// Void elements such as <img> need no end tag.
func CheckBalanced(b []byte) error {
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var open []string
	for {
		switch tok.Next() {
		case html.ErrorToken:
			if len(open) > 0 {
				return fmt.Errorf("unclosed <%s>", open[len(open)-1])
			}
			return nil
		case html.StartTagToken:
			tagBytes, _ := tok.TagName()
			if tag := string(tagBytes); !isVoidTag(tag) {
				open = append(open, tag)
			}
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)
			if len(open) == 0 {
				return fmt.Errorf("unexpected </%s>", tag)
			}
			if top := open[len(open)-1]; top != tag {
				return fmt.Errorf("</%s> closes <%s>", tag, top)
			}
			open = open[:len(open)-1]
		}
	}
}

func isVoidTag(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Img, atom.Br, atom.Hr, atom.Input, atom.Meta, atom.Link:
		return true
	default:
		return false
	}
}

// blockTags is the set of elements the renderer places on their own lines.
// "quote" is not a standard element, so it has no atom.
var blockTags = map[string]struct{}{
	"quote":                  {},
	atom.Blockquote.String(): {},
	atom.Hr.String():         {},
	atom.Li.String():         {},
	atom.Ol.String():         {},
	atom.Ul.String():         {},
	atom.P.String():          {},
	atom.Pre.String():        {},
	atom.Div.String():        {},
	atom.Table.String():      {},
	atom.Tr.String():         {},
	atom.Td.String():         {},
	atom.Th.String():         {},
	atom.H1.String():         {},
	atom.H2.String():         {},
	atom.H3.String():         {},
	atom.H4.String():         {},
	atom.H5.String():         {},
	atom.H6.String():         {},
}

func isBlockTag(tag string) bool {
	_, ok := blockTags[tag]
	return ok
}
