// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package mdconv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Engine is the document-to-markdown conversion engine. It owns the converter
// registry, sniffs incoming streams into ranked StreamInfo candidates, and
// dispatches each conversion to the first accepting converter.
type Engine struct {
	registry   converterRegistry
	logger     *slog.Logger
	classifier TypeClassifier
	charsets   CharsetDetector

	keepDataURIs bool
	styleMap     string
	llmClient    CaptionClient
	llmModel     string
	llmPrompt    string
	transcriber  TranscriptionClient
	exifToolPath string
	skipBuiltins bool
}

// New creates a new Engine with the given options and the built-in converters
// registered (unless WithoutBuiltins is passed).
func New(opts ...Option) *Engine {
	m := &Engine{
		logger:     slog.New(slog.DiscardHandler),
		classifier: mimetypeClassifier{},
		charsets:   chardetDetector{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.skipBuiltins {
		m.enableBuiltins()
	}
	return m
}

// RegisterConverter adds a converter with the given priority. Lower priority
// values are tried first; among equal priorities the most recently registered
// converter is tried first, so callers can shadow built-ins.
func (m *Engine) RegisterConverter(name string, c DocumentConverter, priority float64) {
	m.registry.register(name, c, priority)
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (m *Engine) Convert(source string) (*DocumentConverterResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return m.ConvertURL(source)
	}
	return m.ConvertFile(source)
}

// ConvertFile converts a local file to markdown.
func (m *Engine) ConvertFile(path string) (*DocumentConverterResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info := StreamInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	return m.ConvertReader(f, info)
}

// ConvertURL fetches a URL and converts the response to markdown.
func (m *Engine) ConvertURL(url string) (*DocumentConverterResult, error) {
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	info := StreamInfo{URL: url}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		parts := strings.Split(ct, ";")
		info.MIMEType = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "charset=") {
				info.Charset = strings.Trim(strings.TrimPrefix(p, "charset="), `"'`)
			}
		}
	}

	urlPath := strings.Split(url, "?")[0]
	info.Extension = strings.ToLower(filepath.Ext(urlPath))
	if info.Extension != "" {
		info.Filename = filepath.Base(urlPath)
	}

	return m.ConvertReader(bytes.NewReader(data), info)
}

// ConvertStream converts a non-seekable stream by buffering it fully into
// memory first. Dispatch needs a repositionable cursor.
func (m *Engine) ConvertStream(r io.Reader, info StreamInfo) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return m.ConvertReader(bytes.NewReader(data), info)
}

// ConvertReader converts a seekable stream to markdown using the provided
// StreamInfo as the prior hint.
func (m *Engine) ConvertReader(r io.ReadSeeker, info StreamInfo) (*DocumentConverterResult, error) {
	candidates := m.guessStreamInfo(r, info)
	return m.dispatch(r, candidates, m.newOptions())
}

// convertNested runs a full sniff-and-dispatch for an inner entry of a
// container format, on behalf of parent. The inner result is returned without
// output normalization; only the outermost dispatch normalizes. Refuses to
// recurse when parent is already on the dispatch stack.
func (m *Engine) convertNested(r io.ReadSeeker, info StreamInfo, opts *ConversionOptions, parent DocumentConverter) (*DocumentConverterResult, error) {
	if opts == nil {
		opts = m.newOptions()
	}
	if opts.HasAncestor(parent) {
		return nil, fmt.Errorf("conversion cycle: converter already processing an enclosing stream")
	}
	child := *opts
	child.ancestors = append(append([]DocumentConverter{}, opts.ancestors...), parent)

	candidates := m.guessStreamInfo(r, info)
	return m.dispatch(r, candidates, &child)
}

// dispatch probes converters in registry order (outer loop) against the
// sniffed candidates in confidence order (inner loop). The stream position is
// saved before and restored after every predicate call, and restored again
// before each conversion. First successful conversion wins. Failed
// conversions are recorded and probing continues.
func (m *Engine) dispatch(r io.ReadSeeker, candidates []StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	var attempts []FailedConversionAttempt

	for _, rc := range m.registry.ordered() {
		for _, info := range candidates {
			pos, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, fmt.Errorf("seek: %w", err)
			}

			ok, aerr := rc.converter.Accepts(r, info, opts)
			if _, err := r.Seek(pos, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek: %w", err)
			}
			if aerr != nil {
				if errors.Is(aerr, ErrNotImplemented) {
					continue
				}
				// A failing predicate is a programming defect, not a
				// format mismatch.
				return nil, fmt.Errorf("converter %s: accepts: %w", rc.name, aerr)
			}
			if !ok {
				continue
			}

			if _, err := r.Seek(pos, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek: %w", err)
			}
			m.logger.Debug("converter accepted",
				"converter", rc.name, "mime", info.MIMEType, "extension", info.Extension)

			result, cerr := rc.converter.Convert(r, info, opts)
			if cerr != nil {
				if _, err := r.Seek(pos, io.SeekStart); err != nil {
					return nil, fmt.Errorf("seek: %w", err)
				}
				if errors.Is(cerr, ErrNotImplemented) {
					continue
				}
				m.logger.Debug("conversion failed", "converter", rc.name, "error", cerr)
				attempts = append(attempts, FailedConversionAttempt{
					Converter: rc.name,
					Err:       cerr,
				})
				continue
			}

			if len(opts.Ancestors()) == 0 {
				result.Markdown = normalizeOutput(result.Markdown)
			}
			return result, nil
		}
	}

	if len(attempts) > 0 {
		return nil, &ConversionError{Attempts: attempts}
	}

	uf := &UnsupportedFormatError{}
	if len(candidates) > 0 {
		uf.Extension = candidates[0].Extension
		uf.MIMEType = candidates[0].MIMEType
	}
	return nil, uf
}

// newOptions builds the per-call shared options from the engine configuration.
func (m *Engine) newOptions() *ConversionOptions {
	return &ConversionOptions{
		LLMClient:    m.llmClient,
		LLMModel:     m.llmModel,
		LLMPrompt:    m.llmPrompt,
		Transcriber:  m.transcriber,
		ExifToolPath: m.exifToolPath,
		StyleMap:     m.styleMap,
		KeepDataURIs: m.keepDataURIs,
	}
}

// enableBuiltins registers all built-in converters.
func (m *Engine) enableBuiltins() {
	// Specific format converters (priority 0.0 - tried first)
	m.RegisterConverter("csv", NewCsvConverter(), PrioritySpecific)
	m.RegisterConverter("rss", NewRSSConverter(), PrioritySpecific)
	m.RegisterConverter("ipynb", NewIpynbConverter(), PrioritySpecific)
	m.RegisterConverter("docx", NewDocxConverter(m), PrioritySpecific)
	m.RegisterConverter("xlsx", NewXlsxConverter(), PrioritySpecific)
	m.RegisterConverter("xls", NewXlsConverter(), PrioritySpecific)
	m.RegisterConverter("pptx", NewPptxConverter(m), PrioritySpecific)
	m.RegisterConverter("msg", NewMsgConverter(), PrioritySpecific)
	m.RegisterConverter("pdf", NewPdfConverter(), PrioritySpecific)
	m.RegisterConverter("epub", NewEpubConverter(m), PrioritySpecific)
	m.RegisterConverter("image", NewImageConverter(), PrioritySpecific)
	m.RegisterConverter("audio", NewAudioConverter(), PrioritySpecific)

	// URL-keyed HTML specializations. Same priority band; both outrank the
	// generic HTML fallback.
	m.RegisterConverter("youtube", NewYouTubeConverter(), PrioritySpecific)
	m.RegisterConverter("bing-serp", NewBingSerpConverter(), PrioritySpecific)

	// Generic format converters (priority 10.0 - tried last as fallbacks)
	m.RegisterConverter("html", NewHTMLConverter(m), PriorityGeneric)
	m.RegisterConverter("zip", NewZipConverter(m), PriorityGeneric)
	m.RegisterConverter("plaintext", NewPlainTextConverter(), PriorityGeneric)
}
