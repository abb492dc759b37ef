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

// obsidized converts Obsidian-flavored Markdown files to HTML.
//
// Usage:
//
//	obsidized compile-one [flags] PATH
//	obsidized version
//	obsidized help
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp"
	"golang.org/x/text/unicode/norm"
	"zombiezen.com/go/obsidized"
	"zombiezen.com/go/obsidized/internal/config"
)

const usage = `usage: obsidized <command> [arguments]

commands:
  compile-one [flags] PATH   convert a Markdown file to HTML
  version                    print the version
  help                       print this message

Run "obsidized compile-one -h" for the flags of compile-one.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "compile-one":
		os.Exit(compileOneCommand(os.Args[2:]))
	case "version":
		fmt.Println("obsidized", version())
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "obsidized: unknown command %q\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

// compileOptions is the set of parameters to [compileOne].
type compileOptions struct {
	input     string
	output    string
	overwrite bool
	normalize bool
	dumpAST   io.Writer

	parser   *obsidized.Parser
	renderer *obsidized.HTMLRenderer
}

func compileOneCommand(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		newLogger(os.Stderr, log.InfoLevel).Error("config", "error", err)
		return 1
	}
	parser := cfg.Parser.NewParser()
	renderer := cfg.Renderer.NewRenderer()

	fset := flag.NewFlagSet("compile-one", flag.ContinueOnError)
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: obsidized compile-one [flags] PATH")
		fset.PrintDefaults()
	}
	output := fset.String("o", cfg.Output, "output `file`")
	overwrite := fset.Bool("O", false, "overwrite the output file if it exists")
	fset.BoolVar(&renderer.FixMarkup, "fix-markup", renderer.FixMarkup, "emit well-formed links and headings")
	fset.BoolVar(&renderer.EscapeHTML, "escape", renderer.EscapeHTML, "escape text and attribute values")
	fset.BoolVar(&parser.Headings, "headings", parser.Headings, "parse # headings")
	fset.BoolVar(&parser.BlockQuotes, "quotes", parser.BlockQuotes, "parse > block quotes and callouts")
	fset.BoolVar(&parser.Lists, "lists", parser.Lists, "parse list items and tasks")
	fset.BoolVar(&parser.Tables, "tables", parser.Tables, "parse | tables")
	fset.BoolVar(&parser.BlockMath, "block-math", parser.BlockMath, "parse $$ math blocks")
	fset.BoolVar(&parser.Frontmatter, "frontmatter", parser.Frontmatter, "skip leading --- front matter")
	fset.BoolVar(&parser.Autolinks, "autolinks", parser.Autolinks, "link bare http and https URLs")
	dumpAST := fset.Bool("dump-ast", false, "print the parse tree to stderr")
	verbose := fset.Bool("v", false, "log debug messages")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return 2
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if *verbose {
		level = log.DebugLevel
	}
	l := newLogger(os.Stderr, level)
	l.configLoaded(config.ConfigPath(), cfg.Normalize)

	opts := &compileOptions{
		input:     fset.Arg(0),
		output:    *output,
		overwrite: *overwrite,
		normalize: cfg.Normalize,
		parser:    parser,
		renderer:  renderer,
	}
	if *dumpAST {
		opts.dumpAST = os.Stderr
	}
	if err := compileOne(l, opts); err != nil {
		l.compileFailed(opts.input, err)
		return 1
	}
	return 0
}

// compileOne converts a single Markdown file to HTML.
// Unless opts.overwrite is set, compileOne fails without writing anything
// if the output file already exists.
func compileOne(l *logger, opts *compileOptions) error {
	start := time.Now()
	l.compileStarted(opts.input, opts.output)

	source, err := readSource(opts.input, opts.normalize)
	if err != nil {
		return err
	}
	doc, err := opts.parser.ParseDocument(source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.input, err)
	}
	l.documentParsed(opts.input, len(doc.Contents), obsidized.Links(doc))
	if opts.dumpAST != nil {
		pp.Fprintln(opts.dumpAST, doc.Contents)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(opts.output, flags, 0o666)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists (use -O to overwrite)", opts.output)
	}
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	w := &countingWriter{w: bw}
	err = opts.renderer.Render(w, doc)
	if flushErr := bw.Flush(); err == nil && flushErr != nil {
		err = &obsidized.ConversionError{Err: flushErr}
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	l.compileFinished(opts.input, opts.output, int64(len(source)), w.n, time.Since(start))
	return nil
}

func readSource(path string, normalize bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	var r io.Reader = f
	if normalize {
		r = norm.NFC.Reader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
