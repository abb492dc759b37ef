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
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/obsidized/internal/examples"
	"zombiezen.com/go/obsidized/internal/normhtml"
)

func TestExamples(t *testing.T) {
	exampleList, err := examples.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range exampleList {
		t.Run(test.Name, func(t *testing.T) {
			doc, err := ParseDocument(test.Markdown)
			if err != nil {
				t.Fatal("ParseDocument:", err)
			}
			buf := new(bytes.Buffer)
			if err := RenderHTML(buf, doc); err != nil {
				t.Error("RenderHTML:", err)
			}
			if diff := cmp.Diff(test.HTML, buf.String()); diff != "" {
				t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", test.Markdown, diff)
			}
		})
	}
}

func TestHTMLRenderer(t *testing.T) {
	allFeatures := Parser{
		Headings:    true,
		BlockQuotes: true,
		Lists:       true,
		Tables:      true,
		BlockMath:   true,
		Autolinks:   true,
	}
	tests := []struct {
		name     string
		renderer HTMLRenderer
		input    string
		want     string
	}{
		{
			name:  "RawHyperLink",
			input: "https://example.com",
			want:  "<p class=\"block\">\n<a class=\"link\" href\"https://example.com\">https://example.com</a>\n</p>\n",
		},
		{
			name:     "RawHyperLink/FixMarkup",
			renderer: HTMLRenderer{FixMarkup: true},
			input:    "https://example.com",
			want:     "<p class=\"block\">\n<a class=\"link\" href=\"https://example.com\">https://example.com</a>\n</p>\n",
		},
		{
			name:  "InternalLink",
			input: "[[Note]]",
			want:  "<p class=\"block\">\n<a class=\"link internal-link\" href=\"Note\"> Note\n</p>\n",
		},
		{
			name:     "InternalLink/FixMarkup",
			renderer: HTMLRenderer{FixMarkup: true},
			input:    "[[Note]]",
			want:     "<p class=\"block\">\n<a class=\"link internal-link\" href=\"Note\">Note</a>\n</p>\n",
		},
		{
			name:  "Heading",
			input: "# Title",
			want:  "<p class=\"block\">\n<h1 class=\"heading header-1\">Title</div>\n</p>\n",
		},
		{
			name:     "Heading/FixMarkup",
			renderer: HTMLRenderer{FixMarkup: true},
			input:    "### Title",
			want:     "<p class=\"block\">\n<h3 class=\"heading header-3\">Title</h3>\n</p>\n",
		},
		{
			name:  "DeepHeading",
			input: "##### Deep",
			want:  "<p class=\"block\">\n<div class=\"heading header-5\">Deep</div>\n</p>\n",
		},
		{
			name:     "DeepHeading/FixMarkup",
			renderer: HTMLRenderer{FixMarkup: true},
			input:    "###### Deep",
			want:     "<p class=\"block\">\n<div class=\"heading header-6\">Deep</div>\n</p>\n",
		},
		{
			name:  "BlockQuote",
			input: "> a",
			want:  "<p class=\"block\">\n<quote class=\"blockquote\">\na</quote>\n\n</p>\n",
		},
		{
			name:  "HorizontalBar",
			input: "---",
			want:  "<p class=\"block\">\n<div class=\"horizontal-bar\"> </div>\n\n</p>\n",
		},
		{
			name:  "Images",
			input: "![a](b.png)![[c.png]]",
			want: "<p class=\"block\">\n" +
				"<img class=\"external-image\" alt=\"a\" src=\"b.png\"/>" +
				"<img class=\"external-image\" alt=\"c.png\" src=\"c.png\"/>" +
				"\n</p>\n",
		},
		{
			name:  "Code",
			input: "`x`",
			want:  "<p class=\"block\">\n<span class=\"inline-code\">x</span>\n</p>\n",
		},
		{
			name:  "Math",
			input: "$x$\n$$\ny\n$$",
			want:  "<p class=\"block\">\n$x$$$\ny\n$$\n</p>\n",
		},
		{
			name:  "CodeBlockNotRendered",
			input: "```go\nx\n```",
			want:  "<p class=\"block\">\n\n</p>\n",
		},
		{
			name:  "TasksNotRendered",
			input: "- [ ] a\n- [x] b",
			want:  "<p class=\"block\">\n\n</p>\n",
		},
		{
			name:  "ListNotRendered",
			input: "- a",
			want:  "<p class=\"block\">\n\n</p>\n",
		},
		{
			name:  "CalloutNotRendered",
			input: "> [!note] a",
			want:  "<p class=\"block\">\n\n</p>\n",
		},
		{
			name:  "TableNotRendered",
			input: "| a |",
			want:  "<p class=\"block\">\n\n</p>\n",
		},
		{
			name:  "RawText",
			input: "a < b & c",
			want:  "<p class=\"block\">\na < b & c\n</p>\n",
		},
		{
			name:     "EscapeHTML",
			renderer: HTMLRenderer{EscapeHTML: true},
			input:    "a < b & c [[x\"y]]",
			want:     "<p class=\"block\">\na &lt; b &amp; c <a class=\"link internal-link\" href=\"x&quot;y\"> x&quot;y\n</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := allFeatures.ParseDocument(test.input)
			if err != nil {
				t.Fatal("ParseDocument:", err)
			}
			buf := new(bytes.Buffer)
			if err := test.renderer.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestFixMarkupIsBalanced(t *testing.T) {
	const input = "# Heading\n" +
		"Some **bold** and ==marked== text with [[Link]].\n" +
		"Go to https://example.com for ![more](more.png).\n" +
		"\n" +
		"> quoted *words*"
	p := &Parser{
		Headings:    true,
		BlockQuotes: true,
		Autolinks:   true,
	}
	doc, err := p.ParseDocument(input)
	if err != nil {
		t.Fatal(err)
	}

	fixed := new(bytes.Buffer)
	if err := (&HTMLRenderer{FixMarkup: true}).Render(fixed, doc); err != nil {
		t.Fatal(err)
	}
	if err := normhtml.CheckBalanced(fixed.Bytes()); err != nil {
		t.Errorf("FixMarkup output is not balanced: %v\n%s", err, fixed)
	}
	const wantStructure = `<p class="block">` +
		`<h1 class="heading header-1">Heading</h1>` +
		`Some<span class="bold"> bold</span>` +
		` and <span class="highlight"> marked</span>` +
		` text with <a class="link internal-link" href="Link">Link</a>.` +
		`Go to <a class="link" href="https://example.com">https://example.com</a>` +
		`for <img alt="more" class="external-image" src="more.png">.` +
		`</p>` +
		`<p class="block">` +
		`<quote class="blockquote">quoted <span class="italic"> words</span></quote>` +
		`</p>`
	if diff := cmp.Diff(wantStructure, string(normhtml.NormalizeHTML(fixed.Bytes()))); diff != "" {
		t.Errorf("normalized FixMarkup output (-want +got):\n%s", diff)
	}

	quirky := new(bytes.Buffer)
	if err := RenderHTML(quirky, doc); err != nil {
		t.Fatal(err)
	}
	if err := normhtml.CheckBalanced(quirky.Bytes()); err == nil {
		t.Errorf("default output is balanced; want mismatched tags\n%s", quirky)
	}

	sel, err := goquery.NewDocumentFromReader(fixed)
	if err != nil {
		t.Fatal(err)
	}
	if got := sel.Find("p.block").Length(); got != 2 {
		t.Errorf("number of p.block elements = %d; want 2", got)
	}
	if got := strings.TrimSpace(sel.Find("span.bold").Text()); got != "bold" {
		t.Errorf("span.bold text = %q; want %q", got, "bold")
	}
	if got := strings.TrimSpace(sel.Find("span.highlight").Text()); got != "marked" {
		t.Errorf("span.highlight text = %q; want %q", got, "marked")
	}
	if got, _ := sel.Find("a.internal-link").Attr("href"); got != "Link" {
		t.Errorf("a.internal-link href = %q; want %q", got, "Link")
	}
	if got, _ := sel.Find("a.link").Not(".internal-link").Attr("href"); got != "https://example.com" {
		t.Errorf("a.link href = %q; want %q", got, "https://example.com")
	}
	if got, _ := sel.Find("img.external-image").Attr("src"); got != "more.png" {
		t.Errorf("img.external-image src = %q; want %q", got, "more.png")
	}
	if got := strings.TrimSpace(sel.Find("h1.header-1").Text()); got != "Heading" {
		t.Errorf("h1 text = %q; want %q", got, "Heading")
	}
	if got := strings.TrimSpace(sel.Find("quote.blockquote span.italic").Text()); got != "words" {
		t.Errorf("quote italic text = %q; want %q", got, "words")
	}
}

func TestRenderWritesPerBlock(t *testing.T) {
	doc, err := ParseDocument("A\n\nB\n\nC")
	if err != nil {
		t.Fatal(err)
	}
	w := new(countingWriter)
	if err := RenderHTML(w, doc); err != nil {
		t.Fatal(err)
	}
	if w.n != 3 {
		t.Errorf("Render called Write %d times; want 3", w.n)
	}
}

func TestRenderWriteError(t *testing.T) {
	doc, err := ParseDocument("A\n\nB")
	if err != nil {
		t.Fatal(err)
	}
	errDiskFull := errors.New("disk full")
	w := &failingWriter{remaining: 1, err: errDiskFull}
	err = RenderHTML(w, doc)
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("RenderHTML(...) = %v; want *ConversionError", err)
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("RenderHTML(...) = %v; want to wrap %v", err, errDiskFull)
	}
	if want := "<p class=\"block\">\nA\n</p>\n"; w.buf.String() != want {
		t.Errorf("written before failure = %q; want %q", w.buf.String(), want)
	}
}

func TestAppendBlock(t *testing.T) {
	blocks, err := Parse("*x*")
	if err != nil {
		t.Fatal(err)
	}
	prefix := []byte("<!-- -->")
	got := new(HTMLRenderer).AppendBlock(prefix, blocks[0])
	want := "<!-- --><p class=\"block\">\n<span class=\"italic\">\nx</span>\n\n</p>\n"
	if string(got) != want {
		t.Errorf("AppendBlock(%q, ...) = %q; want %q", prefix, got, want)
	}
}

type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n++
	return len(p), nil
}

type failingWriter struct {
	buf       bytes.Buffer
	remaining int
	err       error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.remaining <= 0 {
		return 0, w.err
	}
	w.remaining--
	return w.buf.Write(p)
}

func BenchmarkRenderHTML(b *testing.B) {
	exampleList, err := examples.Load()
	if err != nil {
		b.Fatal(err)
	}
	input := new(strings.Builder)
	for i, ex := range exampleList {
		if i > 0 {
			input.WriteString("\n\n")
		}
		input.WriteString(ex.Markdown)
	}
	doc, err := ParseDocument(input.String())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.SetBytes(int64(input.Len()))
	b.ReportMetric(float64(len(exampleList)), "examples/op")

	for i := 0; i < b.N; i++ {
		RenderHTML(io.Discard, doc)
	}
}
