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
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ZipConverter handles ZIP files by recursively dispatching their entries
// through the engine. Inner results are stitched together unnormalized; the
// outermost dispatch normalizes the final document once.
type ZipConverter struct {
	engine *Engine
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(m *Engine) *ZipConverter {
	return &ZipConverter{engine: m}
}

func (c *ZipConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	// Refuse archives nested inside an archive this converter is already
	// processing; recursing would never terminate.
	if opts.HasAncestor(c) {
		return false, nil
	}
	if info.Extension == ".zip" {
		return true, nil
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/zip"), nil
}

func (c *ZipConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read ZIP: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}

	var md strings.Builder
	filename := info.Filename
	if filename == "" {
		filename = "archive"
	}
	md.WriteString(fmt.Sprintf("Content from the zip file `%s`:\n\n", filename))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			continue
		}

		fileData, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		fileInfo := StreamInfo{
			Extension: strings.ToLower(filepath.Ext(f.Name)),
			Filename:  filepath.Base(f.Name),
		}

		// Skip entries nothing can convert.
		result, err := c.engine.convertNested(bytes.NewReader(fileData), fileInfo, opts, c)
		if err != nil {
			continue
		}

		if strings.TrimSpace(result.Markdown) != "" {
			md.WriteString(fmt.Sprintf("## File: %s\n", f.Name))
			md.WriteString(result.Markdown)
			md.WriteString("\n\n")
		}
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
	}, nil
}
