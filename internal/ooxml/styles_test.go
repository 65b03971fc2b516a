package ooxml

import "testing"

func TestParseStyleHeadings(t *testing.T) {
	h := ParseStyleHeadings("p[style-name='Section Title'] => h1\n" +
		"p[style-name='Subsection Title'] => h2\n" +
		"r[style-name='Emphasis'] => em\n" +
		"not a rule at all")

	if len(h) != 2 {
		t.Fatalf("rules = %d, want 2: %v", len(h), h)
	}
	if h["section title"] != 1 || h["subsection title"] != 2 {
		t.Errorf("parsed rules = %v", h)
	}
}

func TestParseStyleHeadingsEmpty(t *testing.T) {
	if h := ParseStyleHeadings(""); h != nil {
		t.Errorf("ParseStyleHeadings(\"\") = %v, want nil", h)
	}
}

func TestStyleHeadingsLevel(t *testing.T) {
	h := ParseStyleHeadings("p[style-name='Section Title'] => h1")

	tests := []struct {
		name      string
		headings  StyleHeadings
		styleID   string
		styleName string
		want      int
	}{
		{"mapped by name", h, "SectionTitle", "Section Title", 1},
		{"mapped case-insensitive", h, "SectionTitle", "SECTION TITLE", 1},
		{"conventional id", h, "Heading2", "", 2},
		{"conventional spaced name", h, "CustomId", "Heading 3", 3},
		{"plain paragraph", h, "Normal", "Normal", 0},
		{"nil map conventional", nil, "Heading4", "", 4},
		{"nil map plain", nil, "Normal", "", 0},
		{"empty style", h, "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.headings.Level(tt.styleID, tt.styleName); got != tt.want {
				t.Errorf("Level(%q, %q) = %d, want %d", tt.styleID, tt.styleName, got, tt.want)
			}
		})
	}
}
