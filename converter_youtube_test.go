package mdconv

import (
	"strings"
	"testing"
)

func TestYouTubeConverterAcceptsURLForms(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"plain watch url", "https://www.youtube.com/watch?v=abc123", true},
		{"shell escaped", `https://www.youtube.com/watch\?v\=abc123`, true},
		{"percent encoded", "https://www.youtube.com/watch%3Fv%3Dabc123", true},
		{"channel page", "https://www.youtube.com/@somechannel", false},
		{"other host", "https://example.com/watch?v=abc123", false},
		{"empty", "", false},
	}

	conv := NewYouTubeConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := StreamInfo{Extension: ".html", URL: tt.url}
			got, err := conv.Accepts(strings.NewReader(""), info, nil)
			if err != nil {
				t.Fatalf("Accepts() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestYouTubeConverterConvert(t *testing.T) {
	page := `<html><head>
<title>Test Video - YouTube</title>
<meta name="title" content="Test Video">
<meta itemprop="interactionCount" content="12345">
<meta name="keywords" content="go,testing">
<meta itemprop="duration" content="PT4M13S">
<meta name="description" content="A short description.">
</head><body></body></html>`

	conv := NewYouTubeConverter()
	info := StreamInfo{Extension: ".html", URL: "https://www.youtube.com/watch?v=abc123"}
	result, err := conv.Convert(strings.NewReader(page), info, nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	for _, expected := range []string{
		"# YouTube",
		"## Test Video",
		"### Video Metadata",
		"- **Views:** 12345",
		"- **Keywords:** go,testing",
		"- **Runtime:** PT4M13S",
		"### Description",
		"A short description.",
	} {
		if !strings.Contains(result.Markdown, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, result.Markdown)
		}
	}
	if result.Title != "Test Video - YouTube" {
		t.Errorf("Title = %q, want page title", result.Title)
	}
}

func TestYouTubeConverterDescriptionFromPlayerData(t *testing.T) {
	page := `<html><head><title>Clip - YouTube</title></head><body>
<script>var ytInitialData = {"contents":{"items":[{"attributedDescriptionBodyText":{"content":"Full description from player data."}}]}};</script>
</body></html>`

	conv := NewYouTubeConverter()
	info := StreamInfo{Extension: ".html", URL: "https://www.youtube.com/watch?v=abc123"}
	result, err := conv.Convert(strings.NewReader(page), info, nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !strings.Contains(result.Markdown, "Full description from player data.") {
		t.Errorf("expected player-data description, got:\n%s", result.Markdown)
	}
}

func TestYouTubeConverterMalformedPlayerData(t *testing.T) {
	page := `<html><head><title>Clip - YouTube</title>
<meta name="title" content="Clip"></head><body>
<script>var ytInitialData = {"contents": not valid json}</script>
</body></html>`

	conv := NewYouTubeConverter()
	info := StreamInfo{Extension: ".html", URL: "https://www.youtube.com/watch?v=abc123"}
	result, err := conv.Convert(strings.NewReader(page), info, nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !strings.Contains(result.Markdown, "## Clip") {
		t.Errorf("expected heading despite malformed player data, got:\n%s", result.Markdown)
	}
	if strings.Contains(result.Markdown, "### Description") {
		t.Errorf("expected no description section, got:\n%s", result.Markdown)
	}
}
