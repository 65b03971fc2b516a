package mdconv

import (
	"strings"
	"testing"
)

func TestBingSerpConverterAccepts(t *testing.T) {
	tests := []struct {
		name string
		info StreamInfo
		want bool
	}{
		{"search url html ext", StreamInfo{Extension: ".html", URL: "https://www.bing.com/search?q=go"}, true},
		{"search url xhtml mime", StreamInfo{Extension: ".docx", MIMEType: "application/xhtml", URL: "https://www.bing.com/search?q=go"}, true},
		{"search url foreign mime", StreamInfo{Extension: ".docx", MIMEType: "docx", URL: "https://www.bing.com/search?q=go"}, false},
		{"non-search url", StreamInfo{Extension: ".html", URL: "https://www.bing.com/images?q=go"}, false},
		{"no url", StreamInfo{Extension: ".html"}, false},
	}

	conv := NewBingSerpConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Accepts(strings.NewReader(""), tt.info, nil)
			if err != nil {
				t.Fatalf("Accepts() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Accepts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBingSerpConverterConvert(t *testing.T) {
	// u carries "a1" plus the unpadded base64url of https://example.com/
	page := `<html><head><title>go - Search</title></head><body>
<ol>
<li class="b_algo">
<h2><a href="https://www.bing.com/ck/a?!&amp;p=tracking&amp;u=a1aHR0cHM6Ly9leGFtcGxlLmNvbS8">Example Domain</a></h2>
<span class="algoSlug_icon">decoration</span>
<p>An illustrative example page.</p>
</li>
</ol>
</body></html>`

	conv := NewBingSerpConverter()
	info := StreamInfo{Extension: ".html", URL: "https://www.bing.com/search?q=go+testing"}
	result, err := conv.Convert(strings.NewReader(page), info, nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	if !strings.Contains(result.Markdown, "## A Bing search for 'go testing' found the following results:") {
		t.Errorf("missing search header, got:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "https://example.com/") {
		t.Errorf("redirect link not decoded, got:\n%s", result.Markdown)
	}
	if strings.Contains(result.Markdown, "/ck/a") {
		t.Errorf("tracking link survived, got:\n%s", result.Markdown)
	}
	if strings.Contains(result.Markdown, "decoration") {
		t.Errorf("icon decoration survived, got:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "An illustrative example page.") {
		t.Errorf("result body missing, got:\n%s", result.Markdown)
	}
	if result.Title != "go - Search" {
		t.Errorf("Title = %q", result.Title)
	}
}

func TestBingRedirectTarget(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"redirect", "https://www.bing.com/ck/a?!&p=x&u=a1aHR0cHM6Ly9leGFtcGxlLmNvbS8", "https://example.com/"},
		{"missing a1 prefix", "https://www.bing.com/ck/a?u=aHR0cHM6Ly9leGFtcGxlLmNvbS8", ""},
		{"not a redirect path", "https://example.com/ck?u=a1aHR0cHM6Ly9leGFtcGxlLmNvbS8", ""},
		{"garbage payload", "https://www.bing.com/ck/a?u=a1%%%", ""},
		{"direct link", "https://example.com/page", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bingRedirectTarget(tt.href); got != tt.want {
				t.Errorf("bingRedirectTarget(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
