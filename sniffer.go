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
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// sniffPeekSize bounds how much of the stream the sniffer inspects.
const sniffPeekSize = 8 * 1024

// charsetConfidenceFloor is the minimum detector confidence at which a
// sniffed charset is written into a candidate.
const charsetConfidenceFloor = 50

// Classification is the output of a content-type classifier.
type Classification struct {
	Label      string
	MIMEType   string
	Extensions []string
	IsText     bool
}

// TypeClassifier identifies the content type of a byte prefix. Classifier
// errors are treated by the sniffer as "no signal" and never propagate.
type TypeClassifier interface {
	Identify(content []byte) (Classification, error)
}

// CharsetDetector statistically detects the text encoding of a byte prefix.
type CharsetDetector interface {
	Detect(content []byte) (charset string, confidence int, err error)
}

// mimetypeClassifier is the default TypeClassifier, backed by
// gabriel-vasile/mimetype's magic-number tree.
type mimetypeClassifier struct{}

func (mimetypeClassifier) Identify(content []byte) (Classification, error) {
	mt := mimetype.Detect(content)
	mime := normalizeMIME(mt.String())
	cls := Classification{Label: mime, MIMEType: mime}
	if ext := mt.Extension(); ext != "" {
		cls.Extensions = []string{ext}
	}
	for p := mt; p != nil; p = p.Parent() {
		s := normalizeMIME(p.String())
		if s == "text/plain" || strings.HasPrefix(s, "text/") {
			cls.IsText = true
			break
		}
	}
	return cls, nil
}

// chardetDetector is the default CharsetDetector, backed by saintfish/chardet.
type chardetDetector struct{}

func (chardetDetector) Detect(content []byte) (string, int, error) {
	res, err := chardet.NewTextDetector().DetectBest(content)
	if err != nil {
		return "", 0, err
	}
	return res.Charset, res.Confidence, nil
}

// guessStreamInfo expands a caller-provided StreamInfo into an ordered,
// deduplicated list of candidates, most confident first. The stream position
// is preserved. It always returns at least one element: with no usable
// classifier signal the prior is passed through, cross-enhanced from the
// extension/MIME tables.
//
// When the classifier and the prior agree (a field pair is compatible unless
// both sides are present and disagree), one combined candidate is emitted.
// When they conflict, the classifier-derived candidate comes first and the
// prior-based one second.
func (m *Engine) guessStreamInfo(r io.ReadSeeker, prior StreamInfo) []StreamInfo {
	prior.MIMEType = normalizeMIME(prior.MIMEType)
	prior.Extension = normalizeExtension(prior.Extension)

	peek, perr := peekBytes(r, sniffPeekSize)

	var cls Classification
	usable := false
	if perr == nil && m.classifier != nil {
		if c, err := m.classifier.Identify(peek); err == nil && classificationUsable(c) {
			cls, usable = c, true
		}
	}

	var raw []StreamInfo
	if usable {
		guess := StreamInfo{MIMEType: normalizeMIME(cls.MIMEType)}
		if len(cls.Extensions) > 0 {
			guess.Extension = normalizeExtension(cls.Extensions[0])
		}
		if compatibleInfo(prior, guess) {
			combined := guess
			if combined.MIMEType == "" {
				combined.MIMEType = prior.MIMEType
			}
			if combined.Extension == "" {
				combined.Extension = prior.Extension
			}
			raw = append(raw, combined)
		} else {
			raw = append(raw, guess, prior)
		}
	} else {
		raw = append(raw, prior)
	}

	identity := StreamInfo{
		Charset:   prior.Charset,
		Filename:  prior.Filename,
		LocalPath: prior.LocalPath,
		URL:       prior.URL,
	}

	out := make([]StreamInfo, 0, len(raw))
	seen := make(map[StreamInfo]bool, len(raw))
	for i, c := range raw {
		c = crossEnhance(c)
		c = c.Update(identity)
		// The classifier's text flag speaks only for the candidate derived
		// from the classifier; other candidates qualify on their own MIME.
		fromClassifier := usable && i == 0
		if c.Charset == "" && (isTextMIME(c.MIMEType) || fromClassifier && cls.IsText) {
			c.Charset = m.detectCharset(peek)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, prior)
	}
	return out
}

// detectCharset returns a confidently detected charset name, or "".
func (m *Engine) detectCharset(content []byte) string {
	if m.charsets == nil || len(content) == 0 {
		return ""
	}
	cs, confidence, err := m.charsets.Detect(content)
	if err != nil || confidence < charsetConfidenceFloor {
		return ""
	}
	return cs
}

// peekBytes reads up to n bytes and restores the stream position.
func peekBytes(r io.ReadSeeker, n int) ([]byte, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, rerr := io.ReadFull(r, buf)
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
		return nil, rerr
	}
	return buf[:read], nil
}

func classificationUsable(c Classification) bool {
	if c.Label == "unknown" {
		return false
	}
	mime := normalizeMIME(c.MIMEType)
	return mime != "" && mime != "application/octet-stream"
}

// compatibleInfo reports whether two candidates agree. A field pair is
// compatible unless both sides are present and differ.
func compatibleInfo(a, b StreamInfo) bool {
	am, bm := normalizeMIME(a.MIMEType), normalizeMIME(b.MIMEType)
	if am != "" && bm != "" && am != bm {
		return false
	}
	ae, be := normalizeExtension(a.Extension), normalizeExtension(b.Extension)
	if ae != "" && be != "" && ae != be {
		return false
	}
	return true
}

// crossEnhance fills a missing extension from the MIME type, or a missing
// MIME type from the extension. Best effort; unknown values stay empty.
func crossEnhance(info StreamInfo) StreamInfo {
	if info.MIMEType != "" && info.Extension == "" {
		info.Extension = extensionForMIME(info.MIMEType)
	}
	if info.Extension != "" && info.MIMEType == "" {
		info.MIMEType = mimeForExtension(info.Extension)
	}
	return info
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(strings.ToLower(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func isTextMIME(mime string) bool {
	mime = normalizeMIME(mime)
	return strings.HasPrefix(mime, "text/") ||
		strings.HasPrefix(mime, "application/json") ||
		strings.HasPrefix(mime, "application/xml")
}

// extToMIME maps known extensions to MIME types. The reverse table is derived
// from it at init.
var extToMIME = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":      "application/vnd.ms-excel",
	".msg":      "application/vnd.ms-outlook",
	".html":     "text/html",
	".htm":      "text/html",
	".csv":      "text/csv",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".json":     "application/json",
	".jsonl":    "application/jsonl",
	".xml":      "text/xml",
	".rss":      "application/rss+xml",
	".atom":     "application/atom+xml",
	".epub":     "application/epub+zip",
	".zip":      "application/zip",
	".ipynb":    "application/x-ipynb+json",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".png":      "image/png",
	".mp3":      "audio/mpeg",
	".wav":      "audio/x-wav",
	".m4a":      "audio/mp4",
	".mp4":      "video/mp4",
}

var mimeToExt = func() map[string]string {
	rev := make(map[string]string, len(extToMIME))
	for ext, mime := range extToMIME {
		if _, ok := rev[mime]; !ok {
			rev[mime] = ext
		}
	}
	// Prefer canonical extensions where several map to one type.
	rev["text/html"] = ".html"
	rev["text/plain"] = ".txt"
	rev["text/markdown"] = ".md"
	rev["image/jpeg"] = ".jpg"
	return rev
}()

// mimeForExtension returns a MIME type for a known extension, or "".
func mimeForExtension(ext string) string {
	return extToMIME[normalizeExtension(ext)]
}

// extensionForMIME returns a plausible extension for a known MIME type, or "".
func extensionForMIME(mime string) string {
	return mimeToExt[normalizeMIME(mime)]
}
