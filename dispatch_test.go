package mdconv

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// stubConverter is a scriptable converter for dispatch tests.
type stubConverter struct {
	id         string
	acceptExt  string // accept only this extension; "" accepts everything
	acceptsErr error
	convertErr error
	markdown   string
	consume    bool // predicate reads the stream without restoring it
	probeLog   *[]string
}

func (c *stubConverter) Accepts(r io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	if c.probeLog != nil {
		*c.probeLog = append(*c.probeLog, c.id+info.Extension)
	}
	if c.acceptsErr != nil {
		return false, c.acceptsErr
	}
	if c.consume {
		io.Copy(io.Discard, r)
	}
	if c.acceptExt != "" && info.Extension != c.acceptExt {
		return false, nil
	}
	return true, nil
}

func (c *stubConverter) Convert(r io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	if c.convertErr != nil {
		return nil, c.convertErr
	}
	md := c.markdown
	if md == "" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		md = string(data)
	}
	return &DocumentConverterResult{Markdown: md}, nil
}

// unusableClassifier yields no content-type signal, so the sniffer passes the
// prior hint through unchanged (modulo cross-enhancement).
type unusableClassifier struct{}

func (unusableClassifier) Identify([]byte) (Classification, error) {
	return Classification{MIMEType: "application/octet-stream"}, nil
}

// silentDetector never detects a charset.
type silentDetector struct{}

func (silentDetector) Detect([]byte) (string, int, error) { return "", 0, nil }

func newTestEngine() *Engine {
	return New(WithoutBuiltins(), WithClassifier(unusableClassifier{}), WithCharsetDetector(silentDetector{}))
}

func TestDispatchPriorityOrder(t *testing.T) {
	var log []string
	m := newTestEngine()
	// Low priority value probes first, across every candidate hint, before
	// the higher value sees any.
	m.RegisterConverter("specific", &stubConverter{id: "A", acceptExt: ".never", probeLog: &log}, PrioritySpecific)
	m.RegisterConverter("generic", &stubConverter{id: "B", markdown: "ok", probeLog: &log}, PriorityGeneric)

	_, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	want := []string{"A.md", "B.md"}
	if strings.Join(log, " ") != strings.Join(want, " ") {
		t.Errorf("probe order = %v, want %v", log, want)
	}
}

func TestDispatchRecencyTieBreak(t *testing.T) {
	var log []string
	m := newTestEngine()
	m.RegisterConverter("first", &stubConverter{id: "A", markdown: "from A", probeLog: &log}, PrioritySpecific)
	m.RegisterConverter("second", &stubConverter{id: "B", markdown: "from B", probeLog: &log}, PrioritySpecific)

	result, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	// B registered later at equal priority, so B is probed first and wins.
	if result.Markdown != "from B" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "from B")
	}
	if len(log) == 0 || !strings.HasPrefix(log[0], "B") {
		t.Errorf("first probe = %v, want B first", log)
	}
}

func TestDispatchHintOrderWithinConverter(t *testing.T) {
	// Adapter A accepts only .txt; adapter B (registered later, equal
	// priority) accepts everything. With candidates [.md, .txt], B wins on
	// the very first candidate and A is never reached.
	m := newTestEngine()
	a := &stubConverter{id: "A", acceptExt: ".txt", markdown: "from A"}
	b := &stubConverter{id: "B", markdown: "from B"}
	m.RegisterConverter("a", a, PrioritySpecific)
	m.RegisterConverter("b", b, PrioritySpecific)

	candidates := []StreamInfo{{Extension: ".md"}, {Extension: ".txt"}}
	result, err := m.dispatch(strings.NewReader("x"), candidates, m.newOptions())
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if result.Markdown != "from B" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "from B")
	}

	// Without B, A rejects .md but accepts .txt on the second candidate.
	m2 := newTestEngine()
	m2.RegisterConverter("a", a, PrioritySpecific)
	result, err = m2.dispatch(strings.NewReader("x"), candidates, m2.newOptions())
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if result.Markdown != "from A" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "from A")
	}
}

func TestDispatchNotImplementedPredicate(t *testing.T) {
	m := newTestEngine()
	m.RegisterConverter("stub", &stubConverter{id: "A", acceptsErr: ErrNotImplemented}, PrioritySpecific)
	m.RegisterConverter("real", &stubConverter{id: "B", markdown: "ok"}, PriorityGeneric)

	result, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	if result.Markdown != "ok" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "ok")
	}
}

func TestDispatchPredicateDefectPropagates(t *testing.T) {
	defect := errors.New("boom")
	m := newTestEngine()
	m.RegisterConverter("broken", &stubConverter{id: "A", acceptsErr: defect}, PrioritySpecific)
	m.RegisterConverter("real", &stubConverter{id: "B", markdown: "ok"}, PriorityGeneric)

	_, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	if !errors.Is(err, defect) {
		t.Fatalf("error = %v, want wrapped %v", err, defect)
	}
	if IsUnsupportedFormat(err) {
		t.Error("predicate defect must not surface as UnsupportedFormatError")
	}
}

func TestDispatchStubConvertRecordsNothing(t *testing.T) {
	m := newTestEngine()
	m.RegisterConverter("stub", &stubConverter{id: "A", convertErr: ErrNotImplemented}, PrioritySpecific)

	_, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	if !IsUnsupportedFormat(err) {
		t.Fatalf("error = %v, want UnsupportedFormatError", err)
	}
}

func TestDispatchAggregatesFailures(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	m := newTestEngine()
	m.RegisterConverter("a", &stubConverter{id: "A", convertErr: errA}, PrioritySpecific)
	m.RegisterConverter("b", &stubConverter{id: "B", convertErr: errB}, PrioritySpecific)

	_, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".md"})
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want ConversionError", err)
	}
	if len(convErr.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(convErr.Attempts))
	}
	// B registered later at equal priority, so its failure is recorded first.
	if convErr.Attempts[0].Converter != "b" || convErr.Attempts[1].Converter != "a" {
		t.Errorf("attempt order = %s, %s; want b, a", convErr.Attempts[0].Converter, convErr.Attempts[1].Converter)
	}
	msg := convErr.Error()
	if !strings.HasPrefix(msg, "File conversion failed after 2 attempts:") {
		t.Errorf("message = %q, missing prefix", msg)
	}
	if !strings.Contains(msg, "b threw errorString with message: b failed") {
		t.Errorf("message = %q, missing attempt line", msg)
	}
}

func TestDispatchEmptyRegistry(t *testing.T) {
	m := newTestEngine()
	_, err := m.ConvertReader(strings.NewReader("x"), StreamInfo{Extension: ".xyz"})
	if !IsUnsupportedFormat(err) {
		t.Fatalf("error = %v, want UnsupportedFormatError", err)
	}
}

func TestDispatchRestoresPositionAfterProbes(t *testing.T) {
	// The first converter's predicate consumes the stream and rejects; the
	// second converter must still see the full content.
	m := newTestEngine()
	m.RegisterConverter("greedy", &stubConverter{id: "A", acceptExt: ".never", consume: true}, PrioritySpecific)
	m.RegisterConverter("reader", &stubConverter{id: "B"}, PriorityGeneric)

	result, err := m.ConvertReader(strings.NewReader("full content"), StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	if result.Markdown != "full content" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "full content")
	}
}

func TestDispatchPositionRestoredAfterFailedConvert(t *testing.T) {
	failing := &stubConverter{id: "A", convertErr: errors.New("nope")}
	m := newTestEngine()
	m.RegisterConverter("failing", failing, PrioritySpecific)
	m.RegisterConverter("reader", &stubConverter{id: "B"}, PriorityGeneric)

	result, err := m.ConvertReader(strings.NewReader("full content"), StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	if result.Markdown != "full content" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "full content")
	}
}

func TestConvertStreamBuffersNonSeekable(t *testing.T) {
	m := newTestEngine()
	m.RegisterConverter("any", &stubConverter{id: "A"}, PriorityGeneric)

	// iotest-style non-seekable reader.
	r := io.MultiReader(strings.NewReader("part one "), strings.NewReader("part two"))
	result, err := m.ConvertStream(r, StreamInfo{Extension: ".md"})
	if err != nil {
		t.Fatalf("ConvertStream error: %v", err)
	}
	if result.Markdown != "part one part two" {
		t.Errorf("Markdown = %q", result.Markdown)
	}
}

func TestConversionErrorMessageWithoutInfo(t *testing.T) {
	err := &ConversionError{Attempts: []FailedConversionAttempt{{Converter: "pdf"}}}
	want := "File conversion failed after 1 attempts:\npdf provided no execution info."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConversionErrorMessageWithTypedError(t *testing.T) {
	err := &ConversionError{Attempts: []FailedConversionAttempt{{
		Converter: "audio",
		Err:       &MissingDependencyError{Converter: "audio", Dependency: "exiftool"},
	}}}
	msg := err.Error()
	if !strings.Contains(msg, "audio threw MissingDependencyError with message:") {
		t.Errorf("Error() = %q", msg)
	}
}
