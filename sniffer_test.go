package mdconv

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// fixedClassifier always returns the same classification.
type fixedClassifier struct {
	cls Classification
	err error
}

func (c fixedClassifier) Identify([]byte) (Classification, error) { return c.cls, c.err }

// fixedDetector always detects the same charset.
type fixedDetector struct {
	charset    string
	confidence int
}

func (d fixedDetector) Detect([]byte) (string, int, error) { return d.charset, d.confidence, nil }

func TestGuessStreamInfoCompatiblePrior(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{cls: Classification{
			Label: "txt", MIMEType: "text/plain", Extensions: []string{"txt"}, IsText: true,
		}}),
		WithCharsetDetector(silentDetector{}))

	prior := StreamInfo{MIMEType: "text/plain", Extension: ".txt"}
	got := m.guessStreamInfo(strings.NewReader("hello"), prior)
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
	if got[0].MIMEType != "text/plain" || got[0].Extension != ".txt" {
		t.Errorf("candidate = %+v", got[0])
	}
}

func TestGuessStreamInfoConflictingPrior(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{cls: Classification{
			Label: "pdf", MIMEType: "application/pdf", Extensions: []string{"pdf"},
		}}),
		WithCharsetDetector(silentDetector{}))

	prior := StreamInfo{MIMEType: "text/plain", Filename: "report", URL: "http://example.com/report"}
	got := m.guessStreamInfo(strings.NewReader("%PDF-"), prior)
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2: %+v", len(got), got)
	}
	// Classifier-derived candidate first.
	if got[0].MIMEType != "application/pdf" || got[0].Extension != ".pdf" {
		t.Errorf("first candidate = %+v", got[0])
	}
	// Prior-based candidate second, cross-enhanced with an extension.
	if got[1].MIMEType != "text/plain" || got[1].Extension != ".txt" {
		t.Errorf("second candidate = %+v", got[1])
	}
	// Identity fields propagate into every candidate.
	for i, c := range got {
		if c.Filename != "report" || c.URL != "http://example.com/report" {
			t.Errorf("candidate %d lost identity fields: %+v", i, c)
		}
	}
}

func TestGuessStreamInfoNoSignal(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{err: errors.New("classifier down")}),
		WithCharsetDetector(silentDetector{}))

	prior := StreamInfo{Extension: ".csv"}
	got := m.guessStreamInfo(strings.NewReader("a,b\n1,2\n"), prior)
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
	if got[0].MIMEType != "text/csv" {
		t.Errorf("cross-enhanced MIME = %q, want text/csv", got[0].MIMEType)
	}
}

func TestGuessStreamInfoCrossEnhanceFromMIME(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{err: errors.New("no signal")}),
		WithCharsetDetector(silentDetector{}))

	got := m.guessStreamInfo(strings.NewReader(""), StreamInfo{MIMEType: "application/pdf"})
	if len(got) != 1 || got[0].Extension != ".pdf" {
		t.Fatalf("candidates = %+v, want one with .pdf", got)
	}
}

func TestGuessStreamInfoCharsetDetection(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{cls: Classification{
			Label: "txt", MIMEType: "text/plain", Extensions: []string{"txt"}, IsText: true,
		}}),
		WithCharsetDetector(fixedDetector{charset: "Shift_JIS", confidence: 90}))

	got := m.guessStreamInfo(strings.NewReader("text"), StreamInfo{})
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
	if got[0].Charset != "Shift_JIS" {
		t.Errorf("Charset = %q, want Shift_JIS", got[0].Charset)
	}

	// A caller-provided charset is never overwritten by detection.
	got = m.guessStreamInfo(strings.NewReader("text"), StreamInfo{Charset: "utf-8"})
	if got[0].Charset != "utf-8" {
		t.Errorf("Charset = %q, want utf-8", got[0].Charset)
	}
}

func TestGuessStreamInfoCharsetStaysOffBinaryCandidate(t *testing.T) {
	// Conflicting prior: the classifier sees text, the caller claims PDF.
	// Only the classifier-derived candidate may carry the detected charset;
	// the binary prior-based candidate must not.
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{cls: Classification{
			Label: "txt", MIMEType: "text/plain", Extensions: []string{"txt"}, IsText: true,
		}}),
		WithCharsetDetector(fixedDetector{charset: "windows-1252", confidence: 90}))

	got := m.guessStreamInfo(strings.NewReader("plain looking bytes"), StreamInfo{MIMEType: "application/pdf"})
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2: %+v", len(got), got)
	}
	if got[0].Charset != "windows-1252" {
		t.Errorf("text candidate charset = %q, want windows-1252", got[0].Charset)
	}
	if got[1].Charset != "" {
		t.Errorf("binary candidate charset = %q, want empty", got[1].Charset)
	}
}

func TestGuessStreamInfoLowConfidenceCharsetIgnored(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{cls: Classification{
			Label: "txt", MIMEType: "text/plain", Extensions: []string{"txt"}, IsText: true,
		}}),
		WithCharsetDetector(fixedDetector{charset: "ISO-8859-1", confidence: 10}))

	got := m.guessStreamInfo(strings.NewReader("text"), StreamInfo{})
	if got[0].Charset != "" {
		t.Errorf("Charset = %q, want empty for low confidence", got[0].Charset)
	}
}

func TestGuessStreamInfoPreservesPosition(t *testing.T) {
	m := New(WithoutBuiltins())
	r := strings.NewReader("some content to sniff")
	if _, err := r.Seek(5, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	m.guessStreamInfo(r, StreamInfo{})
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Errorf("position = %d, want 5", pos)
	}
}

func TestGuessStreamInfoNormalizesPrior(t *testing.T) {
	m := New(WithoutBuiltins(),
		WithClassifier(fixedClassifier{err: errors.New("no signal")}),
		WithCharsetDetector(silentDetector{}))

	got := m.guessStreamInfo(strings.NewReader(""), StreamInfo{MIMEType: "Text/HTML; charset=utf-8", Extension: "HTML"})
	if got[0].MIMEType != "text/html" {
		t.Errorf("MIMEType = %q, want text/html", got[0].MIMEType)
	}
	if got[0].Extension != ".html" {
		t.Errorf("Extension = %q, want .html", got[0].Extension)
	}
}

func TestCompatibleInfo(t *testing.T) {
	tests := []struct {
		name string
		a, b StreamInfo
		want bool
	}{
		{"both empty", StreamInfo{}, StreamInfo{}, true},
		{"one side missing mime", StreamInfo{Extension: ".txt"}, StreamInfo{MIMEType: "text/plain"}, true},
		{"agreeing", StreamInfo{MIMEType: "text/plain", Extension: ".txt"}, StreamInfo{MIMEType: "text/plain", Extension: ".txt"}, true},
		{"mime conflict", StreamInfo{MIMEType: "text/plain"}, StreamInfo{MIMEType: "application/pdf"}, false},
		{"extension conflict", StreamInfo{Extension: ".txt"}, StreamInfo{Extension: ".pdf"}, false},
		{"mime agrees, ext conflicts", StreamInfo{MIMEType: "text/plain", Extension: ".txt"}, StreamInfo{MIMEType: "text/plain", Extension: ".md"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compatibleInfo(tt.a, tt.b); got != tt.want {
				t.Errorf("compatibleInfo = %v, want %v", got, tt.want)
			}
		})
	}
}
