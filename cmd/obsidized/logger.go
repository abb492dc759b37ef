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

package main

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// logger wraps charm/log with helpers for the events the command reports.
type logger struct {
	*log.Logger
}

func newLogger(w io.Writer, level log.Level) *logger {
	return &logger{log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "obsidized",
	})}
}

func (l *logger) configLoaded(path string, normalize bool) {
	l.Debug("config loaded",
		"path", path,
		"normalize", normalize)
}

func (l *logger) compileStarted(input, output string) {
	l.Debug("compile started",
		"input", input,
		"output", output)
}

func (l *logger) documentParsed(input string, blocks int, links []string) {
	l.Debug("document parsed",
		"input", input,
		"blocks", blocks,
		"links", len(links))
}

func (l *logger) compileFinished(input, output string, inputSize, outputSize int64, duration time.Duration) {
	l.Info("compiled",
		"input", input,
		"output", output,
		"read", humanize.Bytes(uint64(inputSize)),
		"wrote", humanize.Bytes(uint64(outputSize)),
		"duration", duration.Round(time.Millisecond))
}

func (l *logger) compileFailed(input string, err error) {
	l.Error("compile failed",
		"input", input,
		"error", err)
}
