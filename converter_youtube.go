package mdconv

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// YouTubeConverter handles YouTube watch pages fetched over HTTP. Instead of
// converting the raw page chrome it extracts the video title, metadata, and
// description from the page's meta tags and embedded player data.
type YouTubeConverter struct{}

// NewYouTubeConverter creates a new YouTubeConverter.
func NewYouTubeConverter() *YouTubeConverter {
	return &YouTubeConverter{}
}

const youtubeWatchPrefix = "https://www.youtube.com/watch?"

func (c *YouTubeConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	if !isHTMLStream(info) {
		return false, nil
	}
	return isYouTubeWatchURL(info.URL), nil
}

// isYouTubeWatchURL matches watch URLs, tolerating shell-escaped and
// percent-encoded forms.
func isYouTubeWatchURL(raw string) bool {
	if raw == "" {
		return false
	}
	raw = strings.ReplaceAll(raw, `\`, "")
	if unescaped, err := url.QueryUnescape(raw); err == nil {
		raw = unescaped
	}
	return strings.HasPrefix(raw, youtubeWatchPrefix)
}

func (c *YouTubeConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read YouTube page: %w", err)
	}

	text := string(data)
	if info.Charset != "" {
		if enc := lookupEncoding(info.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				text = string(decoded)
			}
		}
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse YouTube page: %w", err)
	}

	pageTitle := extractHTMLTitle(text)
	meta := collectMetaContent(doc)

	var md strings.Builder
	md.WriteString("# YouTube\n")

	heading := firstMetaValue(meta, "title", "og:title")
	if heading == "" {
		heading = pageTitle
	}
	if heading != "" {
		fmt.Fprintf(&md, "## %s\n", heading)
	}

	var stats []string
	if v := meta["interactionCount"]; v != "" {
		stats = append(stats, fmt.Sprintf("- **Views:** %s", v))
	}
	if v := meta["keywords"]; v != "" {
		stats = append(stats, fmt.Sprintf("- **Keywords:** %s", v))
	}
	if v := meta["duration"]; v != "" {
		stats = append(stats, fmt.Sprintf("- **Runtime:** %s", v))
	}
	if len(stats) > 0 {
		md.WriteString("\n### Video Metadata\n")
		md.WriteString(strings.Join(stats, "\n"))
		md.WriteString("\n")
	}

	description := firstMetaValue(meta, "description", "og:description")
	if description == "" {
		description = initialDataDescription(doc)
	}
	if description != "" {
		md.WriteString("\n### Description\n")
		md.WriteString(description)
		md.WriteString("\n")
	}

	title := pageTitle
	if title == "" {
		title = heading
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
		Title:    title,
	}, nil
}

// collectMetaContent gathers meta tag contents keyed by property, name, or
// itemprop. Empty contents are skipped.
func collectMetaContent(doc *html.Node) map[string]string {
	meta := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name", "itemprop":
					if key == "" {
						key = attr.Val
					}
				case "content":
					content = attr.Val
				}
			}
			if key != "" && content != "" {
				meta[key] = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func firstMetaValue(meta map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}

// initialDataDescription digs the video description out of the embedded
// ytInitialData player JSON. Malformed player data is treated as absent.
func initialDataDescription(doc *html.Node) string {
	var desc string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if desc != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			desc = descriptionFromScript(n.FirstChild.Data)
		}
		for c := n.FirstChild; c != nil && desc == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return desc
}

func descriptionFromScript(js string) string {
	i := strings.Index(js, "ytInitialData")
	if i < 0 {
		return ""
	}
	start := strings.Index(js[i:], "{")
	if start < 0 {
		return ""
	}
	start += i
	end := strings.LastIndex(js, "}")
	if end < start {
		return ""
	}

	var data any
	if err := json.Unmarshal([]byte(js[start:end+1]), &data); err != nil {
		return ""
	}
	body := findJSONKey(data, "attributedDescriptionBodyText")
	if m, ok := body.(map[string]any); ok {
		if s, ok := m["content"].(string); ok {
			return s
		}
	}
	return ""
}

// findJSONKey returns the first value for key anywhere in a decoded JSON tree.
func findJSONKey(v any, key string) any {
	switch t := v.(type) {
	case map[string]any:
		if val, ok := t[key]; ok {
			return val
		}
		for _, child := range t {
			if found := findJSONKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range t {
			if found := findJSONKey(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}
