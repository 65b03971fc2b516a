package ooxml

import (
	"fmt"
	"regexp"
	"strings"
)

// StyleHeadings maps lowercased style names (and IDs) to heading levels.
// A nil map is valid and resolves by naming convention only.
type StyleHeadings map[string]int

var reStyleHeadingRule = regexp.MustCompile(`p\[style-name='([^']+)'\]\s*=>\s*h([1-6])`)

// ParseStyleHeadings reads mammoth-style mapping rules, one per line
// (p[style-name='X'] => hN). Lines that are not heading rules are ignored.
func ParseStyleHeadings(rules string) StyleHeadings {
	var h StyleHeadings
	for _, line := range strings.Split(rules, "\n") {
		m := reStyleHeadingRule.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if h == nil {
			h = StyleHeadings{}
		}
		h[strings.ToLower(m[1])] = int(m[2][0] - '0')
	}
	return h
}

// Level resolves the heading level (1-6) for a paragraph style, or 0 when the
// style is not a heading. Mapping rules win over naming conventions; the
// style's display name is consulted before its ID.
func (h StyleHeadings) Level(styleID, styleName string) int {
	if styleID == "" && styleName == "" {
		return 0
	}
	name := strings.ToLower(styleName)
	id := strings.ToLower(styleID)
	if name != "" {
		if lvl, ok := h[name]; ok {
			return lvl
		}
	}
	if id != "" {
		if lvl, ok := h[id]; ok {
			return lvl
		}
	}

	// Conventional Word styles: IDs like "Heading1", names like "heading 2".
	for i := 1; i <= 6; i++ {
		compact := fmt.Sprintf("heading%d", i)
		spaced := fmt.Sprintf("heading %d", i)
		if id == compact || id == spaced || name == spaced {
			return i
		}
	}
	return 0
}
