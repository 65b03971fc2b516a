package mdconv

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// BingSerpConverter handles Bing search result pages. It rewrites Bing's
// tracking redirect links back to their target URLs, strips result icon
// decorations, and renders each organic result block as markdown.
type BingSerpConverter struct{}

// NewBingSerpConverter creates a new BingSerpConverter.
func NewBingSerpConverter() *BingSerpConverter {
	return &BingSerpConverter{}
}

const bingSearchPrefix = "https://www.bing.com/search?"

func (c *BingSerpConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	if !isHTMLStream(info) {
		return false, nil
	}
	return strings.HasPrefix(info.URL, bingSearchPrefix), nil
}

func (c *BingSerpConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read Bing page: %w", err)
	}

	query := ""
	if u, err := url.Parse(info.URL); err == nil {
		query = u.Query().Get("q")
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse Bing page: %w", err)
	}

	decodeBingRedirects(doc)
	removeNodesByClass(doc, "algoSlug_icon")

	var md strings.Builder
	fmt.Fprintf(&md, "## A Bing search for '%s' found the following results:\n\n", query)

	for _, result := range findNodesByClass(doc, "b_algo") {
		var buf bytes.Buffer
		if err := html.Render(&buf, result); err != nil {
			continue
		}
		entry, err := convertHTMLToMarkdown(buf.String())
		if err != nil {
			continue
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		md.WriteString(entry)
		md.WriteString("\n\n")
	}

	return &DocumentConverterResult{
		Markdown: strings.TrimRight(md.String(), "\n") + "\n",
		Title:    extractHTMLTitle(string(data)),
	}, nil
}

// decodeBingRedirects replaces /ck/a tracking hrefs with the destination URL
// carried in the link's u parameter. Links that do not decode are left alone.
func decodeBingRedirects(doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for i, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if target := bingRedirectTarget(attr.Val); target != "" {
					n.Attr[i].Val = target
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// bingRedirectTarget extracts the destination of a Bing /ck/a redirect link,
// or "" when href is not one. The u parameter is "a1" followed by the
// base64url-encoded target, transmitted without padding.
func bingRedirectTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Path != "/ck/a" {
		return ""
	}
	param := u.Query().Get("u")
	if !strings.HasPrefix(param, "a1") {
		return ""
	}
	payload := param[2:]
	if pad := len(payload) % 4; pad != 0 {
		payload += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// hasClass reports whether an element node carries the given class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findNodesByClass collects elements carrying class, in document order.
// Matching nodes are not descended into.
func findNodesByClass(doc *html.Node, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, class) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// removeNodesByClass detaches every element carrying class from the tree.
func removeNodesByClass(doc *html.Node, class string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if hasClass(c, class) {
				n.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(doc)
}
