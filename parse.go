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

// Package obsidized converts Obsidian-flavored Markdown into HTML.
//
// Parsing happens in two stages.
// The source is first split into blocks at blank lines,
// then each line of a block is scanned for inline directives
// such as **bold**, ==highlights==, [[internal links]], and $math$.
// The resulting [Document] can be rendered with an [HTMLRenderer].
package obsidized

import (
	"strings"
	"unicode"
)

// horizontalBar is the only line that is not scanned for directives
// in the default configuration.
const horizontalBar = "---"

// Parser holds options for parsing Markdown.
// The zero value parses the core dialect:
// blank-line separated blocks of inline directives
// with horizontal bars and fenced code blocks.
// The remaining fields enable additional line forms.
type Parser struct {
	// Headings parses lines starting with one to six '#' characters
	// followed by a space as [HeadingKind] expressions.
	Headings bool
	// BlockQuotes parses lines starting with '>'
	// as [BlockQuoteKind] or [CalloutKind] expressions.
	BlockQuotes bool
	// Lists parses bullet and numbered list items as [ListElementKind]
	// and "- [ ]" items as [TaskKind] grouped in a [TaskListKind].
	Lists bool
	// Tables parses lines starting with '|' as [TablesKind] rows.
	Tables bool
	// BlockMath parses "$$" fenced regions as [BlockMathKind].
	BlockMath bool
	// Frontmatter extracts a leading "---" delimited section
	// into [Document.Frontmatter].
	Frontmatter bool
	// Autolinks parses bare http and https URLs as [RawHyperLinkKind].
	Autolinks bool
}

// Parse parses source with the default options
// and returns one [BlockKind] expression per block.
func Parse(source string) ([]*Expression, error) {
	return new(Parser).Parse(source)
}

// ParseDocument parses source with the default options into a [Document].
func ParseDocument(source string) (*Document, error) {
	return new(Parser).ParseDocument(source)
}

// Parse parses source and returns one [BlockKind] expression per block.
// A source without any non-blank lines yields a single empty block.
// If front matter extraction is enabled, the front matter is skipped.
func (p *Parser) Parse(source string) ([]*Expression, error) {
	_, blocks, err := p.parse(source)
	return blocks, err
}

// ParseDocument parses source into a [Document].
func (p *Parser) ParseDocument(source string) (*Document, error) {
	frontmatter, blocks, err := p.parse(source)
	if err != nil {
		return nil, err
	}
	doc := NewDocument(source, blocks)
	doc.Frontmatter = frontmatter
	return doc, nil
}

func (p *Parser) parse(source string) (frontmatter string, blocks []*Expression, err error) {
	bp := &blockParser{
		Parser: p,
		inline: inlineParser{
			source:    source,
			autolinks: p.Autolinks,
		},
		source: source,
	}
	if p.Frontmatter {
		var body int
		frontmatter, body = splitFrontmatter(source)
		bp.pos = body
	}
	for {
		line, ok := bp.readline()
		if !ok {
			break
		}
		if isBlankLine(source[line.Start:line.End]) {
			bp.closeBlock()
			continue
		}
		if err := bp.addLine(line); err != nil {
			return "", nil, err
		}
	}
	bp.closeBlock()
	if len(bp.blocks) == 0 {
		bp.blocks = append(bp.blocks, &Expression{
			Kind: BlockKind,
			Span: Span{Start: bp.pos, End: bp.pos},
		})
	}
	return frontmatter, bp.blocks, nil
}

type lineForm int8

const (
	plainLine lineForm = iota
	quoteLine
	taskLine
	tableLine
)

// blockParser accumulates lines into blocks.
type blockParser struct {
	*Parser
	inline inlineParser
	source string
	pos    int // start of the next line

	blocks   []*Expression
	current  *Expression // nil if no block is open
	lastForm lineForm

	// lastListItem is the final list element of the previous block, if any.
	lastListItem *Expression
}

// readline returns the span of the next line without its line ending.
func (bp *blockParser) readline() (line Span, ok bool) {
	if bp.pos >= len(bp.source) {
		return NullSpan(), false
	}
	line.Start = bp.pos
	if i := strings.IndexByte(bp.source[bp.pos:], '\n'); i >= 0 {
		line.End = bp.pos + i
		bp.pos = line.End + 1
	} else {
		line.End = len(bp.source)
		bp.pos = line.End
	}
	if line.End > line.Start && bp.source[line.End-1] == '\r' {
		line.End--
	}
	return line, true
}

// closeBlock finishes the open block, if any.
func (bp *blockParser) closeBlock() {
	if bp.current == nil {
		return
	}
	bp.lastListItem = nil
	if n := len(bp.current.Children); n > 0 && bp.current.Children[n-1].Kind == ListElementKind {
		bp.lastListItem = bp.current.Children[n-1]
	}
	bp.blocks = append(bp.blocks, bp.current)
	bp.current = nil
	bp.lastForm = plainLine
}

func (bp *blockParser) add(form lineForm, end int, exprs ...*Expression) {
	bp.current.Children = append(bp.current.Children, exprs...)
	bp.current.Span.End = end
	bp.lastForm = form
}

// lastChild returns the last expression of the open block
// if it was added by a line of the given form.
func (bp *blockParser) lastChild(form lineForm) *Expression {
	if bp.lastForm != form || len(bp.current.Children) == 0 {
		return nil
	}
	return bp.current.Children[len(bp.current.Children)-1]
}

func (bp *blockParser) addLine(line Span) error {
	if bp.current == nil {
		bp.current = &Expression{
			Kind: BlockKind,
			Span: Span{Start: line.Start, End: line.End},
		}
	}
	text := bp.source[line.Start:line.End]
	indented := strings.TrimLeft(text, " \t")
	contentStart := line.End - len(indented)
	switch {
	case text == horizontalBar:
		bp.add(plainLine, line.End, &Expression{
			Kind: HorizontalBarKind,
			Span: line,
		})
		return nil
	case strings.HasPrefix(indented, codeFence):
		return bp.addFencedRegion(line, contentStart, codeFence, nil)
	case bp.BlockMath && strings.HasPrefix(indented, mathFence):
		return bp.addFencedRegion(line, contentStart, mathFence, bp.blockMath)
	case bp.Headings && isHeading(indented):
		bp.add(plainLine, line.End, heading(bp.source, contentStart, line.End))
		return nil
	case bp.BlockQuotes && strings.HasPrefix(indented, ">"):
		return bp.addQuote(contentStart, line.End)
	case bp.Tables && strings.HasPrefix(indented, "|"):
		return bp.addTableRow(contentStart, line.End)
	case bp.Lists:
		if marker := listMarker(indented); marker != "" {
			return bp.addListItem(contentStart, line.End, marker)
		}
	}
	exprs, err := bp.inline.parseInline(line.Start, line.End)
	if err != nil {
		return err
	}
	bp.add(plainLine, line.End, exprs...)
	return nil
}

const (
	codeFence = "```"
	mathFence = "$$"
)

// addFencedRegion scans the lines from the fence opening at contentStart
// through the line holding the closing fence as a single region,
// so that the fence may span multiple lines, including blank ones.
// If opening is not nil, it is used to match the fence at contentStart
// instead of the directive list.
func (bp *blockParser) addFencedRegion(line Span, contentStart int, fence string, opening recognizer) error {
	openEnd := contentStart + len(fence)
	i := strings.Index(bp.source[openEnd:], fence)
	if i < 0 {
		return bp.inline.errorf(Span{Start: contentStart, End: len(bp.source)}, "unterminated %s fence", fence)
	}
	closeEnd := openEnd + i + len(fence)
	regionEnd := closeEnd
	if j := strings.IndexByte(bp.source[closeEnd:], '\n'); j >= 0 {
		regionEnd = closeEnd + j
		bp.pos = regionEnd + 1
	} else {
		regionEnd = len(bp.source)
		bp.pos = regionEnd
	}
	if regionEnd > closeEnd && bp.source[regionEnd-1] == '\r' {
		regionEnd--
	}

	var exprs []*Expression
	start := line.Start
	if opening != nil {
		e, next, err := opening(&bp.inline, contentStart, regionEnd)
		if err != nil {
			return err
		}
		exprs = append(exprs, e)
		start = next
	}
	rest, err := bp.inline.parseInline(start, regionEnd)
	if err != nil {
		return err
	}
	bp.add(plainLine, regionEnd, append(exprs, rest...)...)
	return nil
}

// blockMath matches a "$$" fenced region.
// The caller guarantees that the fence is closed.
func (bp *blockParser) blockMath(p *inlineParser, pos, end int) (*Expression, int, error) {
	inner, next, ok := p.fenced(pos, end, mathFence, mathFence)
	if !ok {
		return nil, pos, p.errorf(Span{Start: pos, End: end}, "unterminated %s fence", mathFence)
	}
	return p.leaf(BlockMathKind, pos, next, inner), next, nil
}

// isHeading reports whether line starts with
// one to six '#' characters followed by a space or the end of the line.
func isHeading(line string) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return 1 <= n && n <= 6 && (n == len(line) || line[n] == ' ' || line[n] == '\t')
}

func heading(source string, start, end int) *Expression {
	level := 0
	for start+level < end && source[start+level] == '#' {
		level++
	}
	text := trimSpan(source, Span{Start: start + level, End: end})
	return &Expression{
		Kind:  HeadingKind,
		Span:  Span{Start: start, End: end},
		Level: level,
		Text:  source[text.Start:text.End],
	}
}

// addQuote adds a '>' line.
// Consecutive quote lines in a block share one expression.
// A first line of the form "> [!type] title" starts a callout.
func (bp *blockParser) addQuote(start, end int) error {
	contentStart := start + len(">")
	if contentStart < end && bp.source[contentStart] == ' ' {
		contentStart++
	}
	if prev := bp.lastChild(quoteLine); prev != nil {
		exprs, err := bp.inline.parseInline(contentStart, end)
		if err != nil {
			return err
		}
		prev.Children = append(prev.Children, exprs...)
		prev.Span.End = end
		bp.add(quoteLine, end)
		return nil
	}

	quote := &Expression{
		Kind: BlockQuoteKind,
		Span: Span{Start: start, End: end},
	}
	if calloutType, next, ok := parseCalloutHeader(bp.source, contentStart, end); ok {
		quote.Kind = CalloutKind
		quote.Label = calloutType
		contentStart = next
	}
	exprs, err := bp.inline.parseInline(contentStart, end)
	if err != nil {
		return err
	}
	quote.Children = exprs
	bp.add(quoteLine, end, quote)
	return nil
}

// parseCalloutHeader matches "[!type]" at pos,
// along with an optional '+' or '-' fold marker.
func parseCalloutHeader(source string, pos, end int) (calloutType string, next int, ok bool) {
	const open = "[!"
	if !strings.HasPrefix(source[pos:end], open) {
		return "", pos, false
	}
	typeStart := pos + len(open)
	i := strings.IndexByte(source[typeStart:end], ']')
	if i <= 0 {
		return "", pos, false
	}
	calloutType = source[typeStart : typeStart+i]
	if strings.IndexFunc(calloutType, unicode.IsSpace) >= 0 {
		return "", pos, false
	}
	next = typeStart + i + len("]")
	if next < end && (source[next] == '+' || source[next] == '-') {
		next++
	}
	return calloutType, next, true
}

// listMarker returns the bullet or number marker that starts line
// or the empty string if line is not a list item.
func listMarker(line string) string {
	if len(line) >= 2 && strings.IndexByte("-*+", line[0]) >= 0 && line[1] == ' ' {
		return line[:1]
	}
	n := 0
	for n < len(line) && n < 9 && '0' <= line[n] && line[n] <= '9' {
		n++
	}
	if n > 0 && n+1 < len(line) && (line[n] == '.' || line[n] == ')') && line[n+1] == ' ' {
		return line[:n+1]
	}
	return ""
}

// addListItem adds a list item line.
// Task items ("- [ ] text", "- [x] text") are grouped into a task list.
func (bp *blockParser) addListItem(start, end int, marker string) error {
	contentStart := start + len(marker) + len(" ")
	if len(marker) == 1 {
		if completed, next, ok := parseTaskBox(bp.source, contentStart, end); ok {
			return bp.addTask(start, end, completed, next)
		}
	}
	exprs, err := bp.inline.parseInline(contentStart, end)
	if err != nil {
		return err
	}
	item := &Expression{
		Kind:     ListElementKind,
		Span:     Span{Start: start, End: end},
		Label:    bp.source[start : start+len(marker)],
		Children: exprs,
	}
	if len(bp.current.Children) == 0 && bp.lastListItem != nil {
		// Separated from the previous item by a blank line.
		bp.lastListItem.Loose = true
		item.Loose = true
	}
	bp.add(plainLine, end, item)
	return nil
}

// parseTaskBox matches "[ ]", "[x]", or "[X]" at pos
// followed by a space or the end of the line.
func parseTaskBox(source string, pos, end int) (completed bool, next int, ok bool) {
	if end-pos < 3 || source[pos] != '[' || source[pos+2] != ']' {
		return false, pos, false
	}
	switch source[pos+1] {
	case ' ':
	case 'x', 'X':
		completed = true
	default:
		return false, pos, false
	}
	next = pos + 3
	if next < end {
		if source[next] != ' ' {
			return false, pos, false
		}
		next++
	}
	return completed, next, true
}

func (bp *blockParser) addTask(start, end int, completed bool, contentStart int) error {
	exprs, err := bp.inline.parseInline(contentStart, end)
	if err != nil {
		return err
	}
	task := &Expression{
		Kind:      TaskKind,
		Span:      Span{Start: start, End: end},
		Completed: completed,
		Children:  exprs,
	}
	if list := bp.lastChild(taskLine); list != nil {
		list.Children = append(list.Children, task)
		list.Span.End = end
		bp.add(taskLine, end)
		return nil
	}
	bp.add(taskLine, end, &Expression{
		Kind:     TaskListKind,
		Span:     task.Span,
		Children: []*Expression{task},
	})
	return nil
}

// addTableRow adds a '|' line as a row of the block's current table.
// Delimiter rows such as "|---|:--:|" are dropped.
func (bp *blockParser) addTableRow(start, end int) error {
	table := bp.lastChild(tableLine)
	if table == nil {
		table = &Expression{
			Kind: TablesKind,
			Span: Span{Start: start, End: end},
		}
		bp.add(tableLine, end, table)
	}
	table.Span.End = end
	bp.current.Span.End = end

	cells := splitTableRow(bp.source, start, end)
	if isDelimiterRow(bp.source, cells) {
		return nil
	}
	row := make([]*Expression, 0, len(cells))
	for _, cell := range cells {
		exprs, err := bp.inline.parseInline(cell.Start, cell.End)
		if err != nil {
			return err
		}
		row = append(row, &Expression{
			Kind:     BlockKind,
			Span:     cell,
			Children: exprs,
		})
	}
	table.Rows = append(table.Rows, row)
	return nil
}

// splitTableRow returns the spans of the cells in a table row,
// with surrounding whitespace removed.
func splitTableRow(source string, start, end int) []Span {
	if start < end && source[start] == '|' {
		start++
	}
	trimmedEnd := start + len(strings.TrimRightFunc(source[start:end], unicode.IsSpace))
	if trimmedEnd > start && source[trimmedEnd-1] == '|' {
		end = trimmedEnd - 1
	}
	var cells []Span
	for cellStart := start; ; {
		cellEnd := end
		if i := strings.IndexByte(source[cellStart:end], '|'); i >= 0 {
			cellEnd = cellStart + i
		}
		cells = append(cells, trimSpan(source, Span{Start: cellStart, End: cellEnd}))
		if cellEnd == end {
			return cells
		}
		cellStart = cellEnd + 1
	}
}

func isDelimiterRow(source string, cells []Span) bool {
	for _, cell := range cells {
		text := strings.TrimSuffix(strings.TrimPrefix(source[cell.Start:cell.End], ":"), ":")
		if text == "" || strings.Trim(text, "-") != "" {
			return false
		}
	}
	return true
}

func trimSpan(source string, span Span) Span {
	s := source[span.Start:span.End]
	trimmedLeft := strings.TrimLeftFunc(s, unicode.IsSpace)
	span.Start = span.End - len(trimmedLeft)
	span.End = span.Start + len(strings.TrimRightFunc(trimmedLeft, unicode.IsSpace))
	return span
}

// splitFrontmatter returns the text between a leading "---" line
// and the next "---" line, and the offset of the line after the closing one.
// If source has no front matter, splitFrontmatter returns ("", 0).
func splitFrontmatter(source string) (frontmatter string, body int) {
	first, _, ok := strings.Cut(source, "\n")
	if !ok || strings.TrimSuffix(first, "\r") != horizontalBar {
		return "", 0
	}
	start := len(first) + 1
	for pos := start; pos < len(source); {
		lineEnd := len(source)
		next := len(source)
		if i := strings.IndexByte(source[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
			next = lineEnd + 1
		}
		if strings.TrimSuffix(source[pos:lineEnd], "\r") == horizontalBar {
			return source[start:pos], next
		}
		pos = next
	}
	return "", 0
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
