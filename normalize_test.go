package mdconv

import "testing"

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "crlf, blank runs and trailing spaces",
			input: "a\r\nb\n\n\n\nc   \n",
			want:  "a\nb\n\nc\n",
		},
		{
			name:  "trailing whitespace",
			input: "hello   \nworld   \n",
			want:  "hello\nworld\n",
		},
		{
			name:  "multiple newlines",
			input: "hello\n\n\n\n\nworld",
			want:  "hello\n\nworld",
		},
		{
			name:  "crlf",
			input: "hello\r\nworld\r\n",
			want:  "hello\nworld\n",
		},
		{
			name:  "bare cr",
			input: "hello\rworld",
			want:  "hello\nworld",
		},
		{
			name:  "control characters",
			input: "hello\x00world\x01test",
			want:  "helloworldtest",
		},
		{
			name:  "tabs survive",
			input: "col1\tcol2\n",
			want:  "col1\tcol2\n",
		},
		{
			name:  "no trailing newline added",
			input: "hello",
			want:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeOutput(tt.input)
			if got != tt.want {
				t.Errorf("normalizeOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
