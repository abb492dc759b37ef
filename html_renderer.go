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
	"io"
	"strconv"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts a parsed [Document] into HTML.
//
// The zero value produces the reference output byte for byte,
// including two known quirks:
// raw hyperlinks are written with a malformed href attribute,
// and headings are closed with a </div> tag.
// Internal links are also left unclosed.
// Set FixMarkup to produce well-formed markup instead.
//
// Code blocks, task lists, tasks, callouts, tables, and list elements
// are not rendered.
//
// # Security considerations
//
// Text is copied to the output verbatim unless EscapeHTML is set,
// so untrusted input can inject arbitrary markup.
type HTMLRenderer struct {
	// If FixMarkup is true, the renderer emits well-formed links and headings.
	FixMarkup bool
	// If EscapeHTML is true, the renderer escapes text and attribute values.
	EscapeHTML bool
}

// RenderHTML writes the given document to the given writer as HTML
// using the default options for [HTMLRenderer].
func RenderHTML(w io.Writer, doc *Document) error {
	return new(HTMLRenderer).Render(w, doc)
}

// Render writes the given document to the given writer as HTML.
// Each top-level block is written with a single call to w.Write.
// If a write fails, Render returns a [*ConversionError]
// and any blocks already written remain written.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	var buf []byte
	for _, b := range doc.Contents {
		buf = r.AppendBlock(buf[:0], b)
		if _, err := w.Write(buf); err != nil {
			return &ConversionError{Err: err}
		}
	}
	return nil
}

// AppendBlock appends the rendered HTML of a top-level block to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendBlock(dst []byte, block *Expression) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.openTag(atom.P, "block")
	state.dst = append(state.dst, '\n')
	if block.Kind == BlockKind {
		state.children(block)
	} else {
		state.expression(block)
	}
	state.dst = append(state.dst, '\n')
	state.closeTag(atom.P.String())
	state.dst = append(state.dst, '\n')
	return state.dst
}

// quoteTag is the element used for block quotes.
// It is not a standard HTML element, so it has no atom.
const quoteTag = "quote"

type renderState struct {
	*HTMLRenderer
	dst []byte
}

func (r *renderState) openTag(name atom.Atom, class string) {
	r.openTagName(name.String(), class)
}

func (r *renderState) openTagName(name string, class string) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, ` class="`...)
	r.dst = append(r.dst, class...)
	r.dst = append(r.dst, `">`...)
}

func (r *renderState) closeTag(name string) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) children(parent *Expression) {
	for _, c := range parent.Children {
		r.expression(c)
	}
}

// container renders a styled span.
// The tags are written on their own lines.
func (r *renderState) container(name string, class string, e *Expression) {
	r.openTagName(name, class)
	r.dst = append(r.dst, '\n')
	r.children(e)
	r.closeTag(name)
	r.dst = append(r.dst, '\n')
}

func (r *renderState) expression(e *Expression) {
	switch e.Kind {
	case TextKind:
		r.text(e.Text)
	case RawHyperLinkKind:
		r.dst = append(r.dst, `<a class="link" href`...)
		if r.FixMarkup {
			r.dst = append(r.dst, '=')
		}
		r.dst = append(r.dst, '"')
		r.text(e.Text)
		r.dst = append(r.dst, `">`...)
		r.text(e.Text)
		r.closeTag(atom.A.String())
	case InternalLinkKind:
		// TODO(soon): Resolve the link target and display its name instead of its path.
		r.dst = append(r.dst, `<a class="link internal-link" href="`...)
		r.text(e.Text)
		if r.FixMarkup {
			r.dst = append(r.dst, `">`...)
			r.text(e.Text)
			r.closeTag(atom.A.String())
		} else {
			r.dst = append(r.dst, `"> `...)
			r.text(e.Text)
		}
	case InlineCodeKind:
		r.openTag(atom.Span, "inline-code")
		r.text(e.Text)
		r.closeTag(atom.Span.String())
	case InlineMathKind:
		r.dst = append(r.dst, '$')
		r.text(e.Text)
		r.dst = append(r.dst, '$')
	case BlockMathKind:
		r.dst = append(r.dst, "$$"...)
		r.text(e.Text)
		r.dst = append(r.dst, "$$"...)
	case HeadingKind:
		var tagName atom.Atom
		switch e.Level {
		case 1:
			tagName = atom.H1
		case 2:
			tagName = atom.H2
		case 3:
			tagName = atom.H3
		case 4:
			tagName = atom.H4
		default:
			tagName = atom.Div
		}
		class := "heading header-" + strconv.Itoa(e.Level)
		r.openTag(tagName, class)
		r.text(e.Text)
		if r.FixMarkup {
			r.closeTag(tagName.String())
		} else {
			r.closeTag(atom.Div.String())
		}
	case ExternalImageKind:
		r.image(e.Label, e.Text)
	case InternalImageKind:
		r.image(e.Text, e.Text)
	case ItalicKind:
		r.container(atom.Span.String(), "italic", e)
	case BoldKind:
		r.container(atom.Span.String(), "bold", e)
	case StrikeThroughKind:
		r.container(atom.Span.String(), "strikethrough", e)
	case HighlightKind:
		r.container(atom.Span.String(), "highlight", e)
	case BlockQuoteKind:
		r.container(quoteTag, "blockquote", e)
	case HorizontalBarKind:
		r.openTag(atom.Div, "horizontal-bar")
		r.dst = append(r.dst, ' ')
		r.closeTag(atom.Div.String())
		r.dst = append(r.dst, '\n')
	case BlockKind:
		r.children(e)
	case CodeBlockKind, TaskListKind, TaskKind, CalloutKind, TablesKind, ListElementKind:
		// Not rendered.
	}
}

func (r *renderState) image(alt, src string) {
	r.dst = append(r.dst, `<img class="external-image" alt="`...)
	r.text(alt)
	r.dst = append(r.dst, `" src="`...)
	r.text(src)
	r.dst = append(r.dst, `"/>`...)
}

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&#39;", // "&#39;" is shorter than "&apos;" and apos was not in HTML until HTML5.
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

func (r *renderState) text(s string) {
	if !r.EscapeHTML {
		r.dst = append(r.dst, s...)
		return
	}
	r.dst = append(r.dst, htmlEscaper.Replace([]byte(s))...)
}
