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

package docxmath

import "testing"

func TestConvertOMMLString(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			"plain run",
			"<m:oMath><m:r><m:t>x+y</m:t></m:r></m:oMath>",
			"x+y",
		},
		{
			"greek letter",
			"<m:oMath><m:r><m:t>\U0001d6fc</m:t></m:r></m:oMath>",
			"\\alpha ",
		},
		{
			"arrow symbol",
			"<m:oMath><m:r><m:t>→</m:t></m:r></m:oMath>",
			"\\rightarrow ",
		},
		{
			"escaped special char",
			"<m:oMath><m:r><m:t>50%</m:t></m:r></m:oMath>",
			"50\\%",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertOMMLString(tt.xml)
			if err != nil {
				t.Fatalf("ConvertOMMLString error: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("results = %d, want 1: %v", len(got), got)
			}
			if got[0] != tt.want {
				t.Errorf("ConvertOMMLString = %q, want %q", got[0], tt.want)
			}
		})
	}
}

func TestConvertOMMLStringMultipleBlocks(t *testing.T) {
	xml := "<m:oMath><m:r><m:t>a</m:t></m:r></m:oMath>" +
		"<m:oMath><m:r><m:t>b</m:t></m:r></m:oMath>"
	got, err := ConvertOMMLString(xml)
	if err != nil {
		t.Fatalf("ConvertOMMLString error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ConvertOMMLString = %v, want [a b]", got)
	}
}

func TestConvertOMMLStringMalformed(t *testing.T) {
	if _, err := ConvertOMMLString("<m:oMath><unclosed"); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a_b", "a\\_b"},
		{"100%", "100\\%"},
		{"a\\_b", "a\\_b"},
	}
	for _, tt := range tests {
		if got := EscapeLatex(tt.in); got != tt.want {
			t.Errorf("EscapeLatex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
