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

	"gopkg.in/yaml.v3"
)

// Document is the root of a parsed Markdown file.
type Document struct {
	// Frontmatter is the raw text between the leading "---" lines,
	// or empty if front matter extraction was not requested.
	Frontmatter string
	// Contents holds one [BlockKind] expression per block.
	Contents []*Expression
	// Source is the text that Contents was parsed from.
	// All string payloads and spans in Contents refer to it.
	Source string
}

// NewDocument wraps a list of parsed blocks into a [Document]
// with empty front matter.
func NewDocument(source string, blocks []*Expression) *Document {
	return &Document{
		Contents: blocks,
		Source:   source,
	}
}

// Metadata decodes the document's front matter as YAML.
// It returns an empty map if there is no front matter.
func (doc *Document) Metadata() (map[string]any, error) {
	m := make(map[string]any)
	if doc == nil || doc.Frontmatter == "" {
		return m, nil
	}
	if err := yaml.Unmarshal([]byte(doc.Frontmatter), &m); err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	return m, nil
}

// Expression is a single node of block or inline content.
// Which fields are meaningful depends on Kind:
//
//   - [TextKind], [RawHyperLinkKind], [InternalLinkKind], [InlineCodeKind],
//     [InlineMathKind], [BlockMathKind], [InternalImageKind]: Text.
//   - [HeadingKind]: Level and Text.
//   - [CodeBlockKind]: Label is the language (possibly empty), Text is the code.
//   - [ExternalImageKind]: Label is the alt text, Text is the URL.
//   - [CalloutKind]: Label is the callout type, Children is the content.
//   - [ListElementKind]: Label is the list marker, Loose and Children.
//   - [TaskKind]: Completed and Children.
//   - [TablesKind]: Rows.
//   - [BlockKind], [BlockQuoteKind], [TaskListKind], [ItalicKind],
//     [BoldKind], [StrikeThroughKind], [HighlightKind]: Children.
//
// String fields are always substrings of the source the expression
// was parsed from.
type Expression struct {
	Kind      ExpressionKind
	Span      Span
	Text      string
	Label     string
	Level     int
	Completed bool
	Loose     bool
	Children  []*Expression
	Rows      [][]*Expression
}

// ChildCount returns the number of children the expression has.
// Table cells are counted in row-major order.
// Calling ChildCount on nil returns 0.
func (e *Expression) ChildCount() int {
	if e == nil {
		return 0
	}
	if e.Kind == TablesKind {
		n := 0
		for _, row := range e.Rows {
			n += len(row)
		}
		return n
	}
	return len(e.Children)
}

// Child returns the i'th child of the expression.
func (e *Expression) Child(i int) *Expression {
	if e.Kind == TablesKind {
		for _, row := range e.Rows {
			if i < len(row) {
				return row[i]
			}
			i -= len(row)
		}
		panic("table cell index out of range")
	}
	return e.Children[i]
}

// IsContainer reports whether the expression's content
// is made up of other expressions.
func (e *Expression) IsContainer() bool {
	switch e.Kind {
	case BlockKind, BlockQuoteKind, CalloutKind, TaskListKind, TaskKind,
		ListElementKind, TablesKind,
		ItalicKind, BoldKind, StrikeThroughKind, HighlightKind:
		return true
	default:
		return false
	}
}

// ExpressionKind is an enumeration of values returned by [*Expression.Kind].
type ExpressionKind uint16

const (
	TextKind ExpressionKind = 1 + iota
	RawHyperLinkKind
	InternalLinkKind
	InlineCodeKind
	InlineMathKind
	BlockMathKind
	HeadingKind
	CodeBlockKind
	TaskListKind
	TaskKind
	BlockQuoteKind
	CalloutKind
	ExternalImageKind
	InternalImageKind
	TablesKind
	ItalicKind
	BoldKind
	StrikeThroughKind
	HighlightKind
	HorizontalBarKind
	ListElementKind

	// BlockKind groups the content of one block of consecutive non-blank lines.
	BlockKind
)

var kindNames = [...]string{
	TextKind:          "Text",
	RawHyperLinkKind:  "RawHyperLink",
	InternalLinkKind:  "InternalLink",
	InlineCodeKind:    "InlineCode",
	InlineMathKind:    "InlineMath",
	BlockMathKind:     "BlockMath",
	HeadingKind:       "Heading",
	CodeBlockKind:     "CodeBlock",
	TaskListKind:      "TaskList",
	TaskKind:          "Task",
	BlockQuoteKind:    "BlockQuote",
	CalloutKind:       "Callout",
	ExternalImageKind: "ExternalImage",
	InternalImageKind: "InternalImage",
	TablesKind:        "Tables",
	ItalicKind:        "Italic",
	BoldKind:          "Bold",
	StrikeThroughKind: "StrikeThrough",
	HighlightKind:     "Highlight",
	HorizontalBarKind: "HorizontalBar",
	ListElementKind:   "ListElement",
	BlockKind:         "Block",
}

func (kind ExpressionKind) String() string {
	if int(kind) < len(kindNames) && kindNames[kind] != "" {
		return kindNames[kind]
	}
	return fmt.Sprintf("ExpressionKind(%d)", uint16(kind))
}

// Span is a contiguous region of a source string.
// Start is inclusive and End is exclusive.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{Start: -1, End: -1}
}

// Len returns the length of the span or zero if the span is invalid.
func (span Span) Len() int {
	if !span.IsValid() {
		return 0
	}
	return span.End - span.Start
}

// IsValid reports whether the span has a non-negative start
// and an end no earlier than its start.
func (span Span) IsValid() bool {
	return span.Start >= 0 && span.End >= span.Start
}

func (span Span) String() string {
	if !span.IsValid() {
		return "-"
	}
	return fmt.Sprintf("[%d,%d)", span.Start, span.End)
}

// ParseError is returned when the source cannot be parsed,
// for example when a code fence is opened but never closed.
type ParseError struct {
	// Line is the 1-based line number where the problem starts.
	Line int
	// Span is the unmatched region of the source.
	Span Span
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ConversionError is returned when the rendered output
// could not be written.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return "render markdown to html: " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
