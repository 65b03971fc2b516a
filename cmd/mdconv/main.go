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

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conductor-oss/mdconv"
)

var version = "dev"

func main() {
	var (
		output       string
		extension    string
		mimeType     string
		charset      string
		exifTool     string
		styleMap     string
		showVersion  bool
		keepDataURIs bool
		verbose      bool
	)

	flag.StringVar(&output, "o", "", "Output file (default: stdout)")
	flag.StringVar(&output, "output", "", "Output file (default: stdout)")
	flag.StringVar(&extension, "x", "", "File extension hint (for stdin input)")
	flag.StringVar(&extension, "extension", "", "File extension hint (for stdin input)")
	flag.StringVar(&mimeType, "m", "", "MIME type hint")
	flag.StringVar(&mimeType, "mime-type", "", "MIME type hint")
	flag.StringVar(&charset, "c", "", "Charset hint")
	flag.StringVar(&charset, "charset", "", "Charset hint")
	flag.StringVar(&exifTool, "exiftool", "", "Path to the exiftool executable (image/audio metadata)")
	flag.StringVar(&styleMap, "style-map", "", "Style mapping rules for DOCX conversion")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&keepDataURIs, "keep-data-uris", false, "Keep full base64-encoded data URIs")
	flag.BoolVar(&verbose, "verbose", false, "Log dispatch decisions to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdconv [flags] [source]\n\n")
		fmt.Fprintf(os.Stderr, "Convert documents to Markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  source    File path or URL to convert (reads stdin if omitted)\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("mdconv %s\n", version)
		os.Exit(0)
	}

	// Normalize extension
	if extension != "" {
		extension = strings.ToLower(extension)
		if !strings.HasPrefix(extension, ".") {
			extension = "." + extension
		}
	}

	var opts []mdconv.Option
	if keepDataURIs {
		opts = append(opts, mdconv.WithKeepDataURIs(true))
	}
	if exifTool != "" {
		opts = append(opts, mdconv.WithExifToolPath(exifTool))
	}
	if styleMap != "" {
		opts = append(opts, mdconv.WithStyleMap(styleMap))
	}
	if verbose {
		opts = append(opts, mdconv.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	m := mdconv.New(opts...)

	var result *mdconv.DocumentConverterResult
	var err error

	args := flag.Args()

	if len(args) == 0 {
		// Read from stdin
		info := mdconv.StreamInfo{
			Extension: extension,
			MIMEType:  mimeType,
			Charset:   charset,
		}
		result, err = m.ConvertStream(os.Stdin, info)
	} else {
		result, err = m.Convert(args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Write output
	if output != "" {
		dir := filepath.Dir(output)
		if dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		if writeErr := os.WriteFile(output, []byte(result.Markdown+"\n"), 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
			os.Exit(1)
		}
	} else {
		fmt.Print(result.Markdown)
		fmt.Println()
	}
}
