// Copyright (c) 2025, The mkagent Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package file

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser splits content into entries and key/value pairs.
type Parser struct {
	delimiter       string
	maxSize         int
	skipComments    bool
	kvDelimiter     string
	vDefault        string
	vTrimChars      string
	skipEmptyValues bool
}

// WithDelimiter sets the entry delimiter. Default is newline.
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum accepted file size in bytes. Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments drops entries starting with '#'. Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key/value separator used by Map. Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVDefault sets the value of keys without a separator.
func WithVDefault(vDefault string) Option {
	return func(p *Parser) {
		p.vDefault = vDefault
	}
}

// WithVTrimChars sets characters trimmed from both ends of values.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// WithSkipEmptyValues drops keys whose value ends up empty.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// NewParser returns a Parser with the given options applied over the defaults.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:    "\n",
		maxSize:      1 << 20,
		skipComments: true,
		kvDelimiter:  "=",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lines splits content into trimmed, non-empty entries.
func (p *Parser) Lines(content string) []string {
	parts := strings.Split(content, p.delimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(part, "#") {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Map splits every entry of content at the first key/value separator.
// Later keys overwrite earlier ones.
func (p *Parser) Map(content string) map[string]string {
	out := make(map[string]string)
	for _, line := range p.Lines(content) {
		key, value, found := strings.Cut(line, p.kvDelimiter)
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !found {
			value = p.vDefault
		} else {
			value = strings.TrimSpace(value)
			if p.vTrimChars != "" {
				value = strings.Trim(value, p.vTrimChars)
			}
		}
		if p.skipEmptyValues && value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// Read returns the content of path after size and encoding checks.
func (p *Parser) Read(path string) (string, error) {
	if path == "" {
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest, "file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		code := cnserrors.ErrCodeInternal
		if os.IsNotExist(err) {
			code = cnserrors.ErrCodeNotFound
		}
		return "", cnserrors.WrapWithContext(code, "failed to read file", err, map[string]any{"path": path})
	}
	if len(b) > p.maxSize {
		return "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("file exceeds maximum size of %d bytes", p.maxSize),
			map[string]any{"path": path, "size": len(b)})
	}
	if !utf8.Valid(b) {
		return "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"file content is not valid UTF-8", map[string]any{"path": path})
	}
	return string(b), nil
}

// GetLines reads path and returns its entries.
func (p *Parser) GetLines(path string) ([]string, error) {
	content, err := p.Read(path)
	if err != nil {
		return nil, err
	}
	return p.Lines(content), nil
}

// GetMap reads path and returns its key/value pairs.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	content, err := p.Read(path)
	if err != nil {
		return nil, err
	}
	return p.Map(content), nil
}
