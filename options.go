package mdconv

import "log/slog"

// CaptionClient generates a textual description of an image. It is the
// boundary to whatever language-model backend the caller wires in; the engine
// never constructs one itself.
type CaptionClient interface {
	Caption(image []byte, mimeType, model, prompt string) (string, error)
}

// TranscriptionClient produces a transcript for an audio payload.
type TranscriptionClient interface {
	Transcribe(audio []byte, mimeType string) (string, error)
}

// ConversionOptions carries cross-cutting parameters handed to every
// converter on each dispatch. Converters read only the fields relevant to
// them and ignore the rest.
type ConversionOptions struct {
	// LLM captioning (image converter).
	LLMClient CaptionClient
	LLMModel  string
	LLMPrompt string

	// Audio transcription (audio converter).
	Transcriber TranscriptionClient

	// Path to the exiftool executable (image and audio metadata).
	ExifToolPath string

	// Style mapping for office document converters.
	StyleMap string

	// Keep full base64 data URIs in HTML-derived output.
	KeepDataURIs bool

	// Converters already on the dispatch call stack. Container converters
	// recursing into inner entries must go through Engine.convertNested,
	// which maintains this chain and refuses identity cycles.
	ancestors []DocumentConverter
}

// Ancestors returns the converters currently above this conversion on the
// dispatch stack, outermost first.
func (o *ConversionOptions) Ancestors() []DocumentConverter {
	if o == nil {
		return nil
	}
	return o.ancestors
}

// HasAncestor reports whether c is already on the dispatch stack.
func (o *ConversionOptions) HasAncestor(c DocumentConverter) bool {
	if o == nil {
		return false
	}
	for _, a := range o.ancestors {
		if a == c {
			return true
		}
	}
	return false
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(m *Engine) {
		m.keepDataURIs = keep
	}
}

// WithStyleMap sets custom style mapping for DOCX conversion.
func WithStyleMap(styleMap string) Option {
	return func(m *Engine) {
		m.styleMap = styleMap
	}
}

// WithLLMClient sets the captioning backend used by the image converter.
func WithLLMClient(client CaptionClient, model string) Option {
	return func(m *Engine) {
		m.llmClient = client
		m.llmModel = model
	}
}

// WithLLMPrompt overrides the captioning prompt.
func WithLLMPrompt(prompt string) Option {
	return func(m *Engine) {
		m.llmPrompt = prompt
	}
}

// WithTranscriber sets the transcription backend used by the audio converter.
func WithTranscriber(t TranscriptionClient) Option {
	return func(m *Engine) {
		m.transcriber = t
	}
}

// WithExifToolPath sets the exiftool executable used for media metadata.
func WithExifToolPath(path string) Option {
	return func(m *Engine) {
		m.exifToolPath = path
	}
}

// WithLogger sets the structured logger. Dispatch decisions are logged at
// debug level. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Engine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClassifier replaces the content-type classifier used by stream sniffing.
func WithClassifier(c TypeClassifier) Option {
	return func(m *Engine) {
		if c != nil {
			m.classifier = c
		}
	}
}

// WithCharsetDetector replaces the statistical charset detector used by
// stream sniffing.
func WithCharsetDetector(d CharsetDetector) Option {
	return func(m *Engine) {
		if d != nil {
			m.charsets = d
		}
	}
}

// WithoutBuiltins skips registration of the built-in converters, leaving an
// empty registry for the caller to populate.
func WithoutBuiltins() Option {
	return func(m *Engine) {
		m.skipBuiltins = true
	}
}
