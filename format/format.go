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

// Package format provides a function to format a parsed document
// as Obsidian-flavored Markdown that parses back to the same expressions.
package format

import (
	"io"
	"strings"

	"zombiezen.com/go/obsidized"
)

// Format writes the given document as Markdown to the given writer.
// Line breaks inside a block are taken from [obsidized.Document.Source];
// expressions without valid spans are joined on a single line.
func Format(w io.Writer, doc *obsidized.Document) error {
	ww := &errWriter{w: w}
	f := &formatter{w: ww, source: doc.Source}
	if doc.Frontmatter != "" {
		ww.WriteString("---\n")
		ww.WriteString(doc.Frontmatter)
		if !strings.HasSuffix(doc.Frontmatter, "\n") {
			ww.WriteString("\n")
		}
		ww.WriteString("---\n")
	}
	for i, block := range doc.Contents {
		if i > 0 {
			ww.WriteString("\n")
		}
		if block.Kind == obsidized.BlockKind {
			f.sequence(block.Children, "")
		} else {
			f.expression(block, "")
		}
		if ww.hasWritten {
			ww.WriteString("\n")
		}
	}
	return ww.err
}

type formatter struct {
	w      *errWriter
	source string
}

// sequence writes sibling expressions.
// Whitespace between siblings is copied from the source,
// and a source line break is written as a newline followed by linePrefix.
func (f *formatter) sequence(exprs []*obsidized.Expression, linePrefix string) {
	for i, e := range exprs {
		if i > 0 {
			gap := f.gap(exprs[i-1], e)
			if strings.Contains(gap, "\n") {
				f.w.WriteString("\n")
				f.w.WriteString(linePrefix)
			} else {
				f.w.WriteString(gap)
			}
		}
		f.expression(e, linePrefix)
	}
}

// gap returns the source text between two sibling expressions
// or the empty string if their spans do not describe such a region.
func (f *formatter) gap(prev, next *obsidized.Expression) string {
	if !prev.Span.IsValid() || !next.Span.IsValid() ||
		prev.Span.End > next.Span.Start || next.Span.Start > len(f.source) {
		return ""
	}
	return f.source[prev.Span.End:next.Span.Start]
}

// delimiter returns the delimiter that opened e in the source
// if it is one of the accepted ones, or the first accepted delimiter otherwise.
func (f *formatter) delimiter(e *obsidized.Expression, accepted ...string) string {
	for _, d := range accepted {
		if e.Span.IsValid() && e.Span.Start+len(d) <= len(f.source) &&
			strings.HasPrefix(f.source[e.Span.Start:], d) {
			return d
		}
	}
	return accepted[0]
}

func (f *formatter) styled(e *obsidized.Expression, delim string, linePrefix string) {
	f.w.WriteString(delim)
	f.sequence(e.Children, linePrefix)
	f.w.WriteString(delim)
}

func (f *formatter) expression(e *obsidized.Expression, linePrefix string) {
	w := f.w
	switch e.Kind {
	case obsidized.TextKind, obsidized.RawHyperLinkKind:
		w.WriteString(e.Text)
	case obsidized.InternalLinkKind:
		w.WriteString("[[")
		w.WriteString(e.Text)
		w.WriteString("]]")
	case obsidized.InternalImageKind:
		w.WriteString("![[")
		w.WriteString(e.Text)
		w.WriteString("]]")
	case obsidized.ExternalImageKind:
		w.WriteString("![")
		w.WriteString(e.Label)
		w.WriteString("](")
		w.WriteString(e.Text)
		w.WriteString(")")
	case obsidized.InlineCodeKind:
		w.WriteString("`")
		w.WriteString(e.Text)
		w.WriteString("`")
	case obsidized.InlineMathKind:
		w.WriteString("$")
		w.WriteString(e.Text)
		w.WriteString("$")
	case obsidized.BlockMathKind:
		w.WriteString("$$")
		w.WriteString(e.Text)
		w.WriteString("$$")
	case obsidized.CodeBlockKind:
		w.WriteString("```")
		w.WriteString(e.Label)
		if e.Text != "" {
			indentedWrite(w, linePrefix, e.Text)
			w.WriteString("\n")
			w.WriteString(linePrefix)
		}
		w.WriteString("```")
	case obsidized.HeadingKind:
		w.WriteString(strings.Repeat("#", e.Level))
		w.WriteString(" ")
		w.WriteString(e.Text)
	case obsidized.HorizontalBarKind:
		w.WriteString("---")
	case obsidized.BoldKind:
		f.styled(e, f.delimiter(e, "**", "__"), linePrefix)
	case obsidized.ItalicKind:
		f.styled(e, f.delimiter(e, "*", "_"), linePrefix)
	case obsidized.StrikeThroughKind:
		f.styled(e, "~~", linePrefix)
	case obsidized.HighlightKind:
		f.styled(e, "==", linePrefix)
	case obsidized.BlockQuoteKind:
		w.WriteString("> ")
		f.sequence(e.Children, linePrefix+"> ")
	case obsidized.CalloutKind:
		w.WriteString("> [!")
		w.WriteString(e.Label)
		w.WriteString("]")
		if len(e.Children) > 0 {
			if f.startsNextLine(e, e.Children[0]) {
				w.WriteString("\n")
				w.WriteString(linePrefix)
				w.WriteString("> ")
			} else {
				w.WriteString(" ")
			}
		}
		f.sequence(e.Children, linePrefix+"> ")
	case obsidized.ListElementKind:
		w.WriteString(e.Label)
		w.WriteString(" ")
		f.sequence(e.Children, linePrefix)
	case obsidized.TaskListKind:
		f.sequence(e.Children, linePrefix)
	case obsidized.TaskKind:
		w.WriteString(f.delimiter(e, "-", "*", "+"))
		if e.Completed {
			w.WriteString(" [x] ")
		} else {
			w.WriteString(" [ ] ")
		}
		f.sequence(e.Children, linePrefix)
	case obsidized.TablesKind:
		for i, row := range e.Rows {
			if i > 0 {
				w.WriteString("\n")
				w.WriteString(linePrefix)
			}
			f.tableRow(row)
			if i == 0 {
				w.WriteString("\n")
				w.WriteString(linePrefix)
				f.delimiterRow(len(row))
			}
		}
	case obsidized.BlockKind:
		f.sequence(e.Children, linePrefix)
	}
}

// startsNextLine reports whether child begins on a later source line
// than the start of parent.
func (f *formatter) startsNextLine(parent, child *obsidized.Expression) bool {
	if !parent.Span.IsValid() || !child.Span.IsValid() ||
		parent.Span.Start > child.Span.Start || child.Span.Start > len(f.source) {
		return false
	}
	return strings.Contains(f.source[parent.Span.Start:child.Span.Start], "\n")
}

func (f *formatter) tableRow(row []*obsidized.Expression) {
	f.w.WriteString("|")
	for _, cell := range row {
		f.w.WriteString(" ")
		f.sequence(cell.Children, "")
		f.w.WriteString(" |")
	}
}

func (f *formatter) delimiterRow(n int) {
	f.w.WriteString("|")
	for i := 0; i < n; i++ {
		f.w.WriteString(" --- |")
	}
}

// indentedWrite writes s, following each newline with indent.
func indentedWrite(w *errWriter, indent string, s string) {
	for {
		i := strings.IndexByte(s, '\n')
		if i == -1 {
			break
		}
		w.WriteString(s[:i+1])
		w.WriteString(indent)
		s = s[i+1:]
	}
	w.WriteString(s)
}

type errWriter struct {
	w          io.Writer
	hasWritten bool
	err        error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	w.hasWritten = w.hasWritten || n > 0
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	w.hasWritten = w.hasWritten || n > 0
	return n, w.err
}
