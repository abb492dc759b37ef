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

// Package config loads the obsidized command's configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/obsidized"
)

// Config is the contents of the configuration file.
// Command-line flags take precedence over it.
type Config struct {
	// Output is the default output path for compile-one.
	Output string `yaml:"output"`
	// Normalize converts input to Unicode Normalization Form C before parsing.
	Normalize bool `yaml:"normalize"`
	// LogLevel is one of "debug", "info", "warn", or "error".
	LogLevel string         `yaml:"log_level"`
	Parser   ParserConfig   `yaml:"parser"`
	Renderer RendererConfig `yaml:"renderer"`
}

// ParserConfig mirrors the options of [obsidized.Parser].
type ParserConfig struct {
	Headings    bool `yaml:"headings"`
	BlockQuotes bool `yaml:"block_quotes"`
	Lists       bool `yaml:"lists"`
	Tables      bool `yaml:"tables"`
	BlockMath   bool `yaml:"block_math"`
	Frontmatter bool `yaml:"frontmatter"`
	Autolinks   bool `yaml:"autolinks"`
}

// RendererConfig mirrors the options of [obsidized.HTMLRenderer].
type RendererConfig struct {
	FixMarkup  bool `yaml:"fix_markup"`
	EscapeHTML bool `yaml:"escape_html"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output:    "output.html",
		Normalize: true,
		LogLevel:  "info",
	}
}

// ConfigPath returns the path to the configuration file.
// Tests may replace it.
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "obsidized", "config.yaml")
}

// Load reads the configuration file.
// Fields absent from the file keep their default values.
// If the file does not exist, Load returns [Default].
func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration file's contents on top of [Default].
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks whether the configuration is usable.
func (c *Config) Validate() error {
	if c.Output == "" {
		return errors.New("output cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// NewParser returns a parser with the configured options.
func (pc ParserConfig) NewParser() *obsidized.Parser {
	return &obsidized.Parser{
		Headings:    pc.Headings,
		BlockQuotes: pc.BlockQuotes,
		Lists:       pc.Lists,
		Tables:      pc.Tables,
		BlockMath:   pc.BlockMath,
		Frontmatter: pc.Frontmatter,
		Autolinks:   pc.Autolinks,
	}
}

// NewRenderer returns a renderer with the configured options.
func (rc RendererConfig) NewRenderer() *obsidized.HTMLRenderer {
	return &obsidized.HTMLRenderer{
		FixMarkup:  rc.FixMarkup,
		EscapeHTML: rc.EscapeHTML,
	}
}
