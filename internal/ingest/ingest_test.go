package ingest

import (
	"testing"
)

func TestSortPDFsByNumber(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "numeric suffixes sort numerically",
			input: []string{"doc-2.pdf", "doc-10.pdf", "doc-1.pdf"},
			want:  []string{"doc-1.pdf", "doc-2.pdf", "doc-10.pdf"},
		},
		{
			name:  "unnumbered files come first",
			input: []string{"doc-1.pdf", "intro.pdf"},
			want:  []string{"intro.pdf", "doc-1.pdf"},
		},
		{
			name:  "all unnumbered sort alphabetically",
			input: []string{"b.pdf", "a.pdf"},
			want:  []string{"a.pdf", "b.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortPDFsByNumber(tt.input)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sortPDFsByNumber() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/contract-es.pdf", "contract-es"},
		{"/tmp/my-doc-1.pdf", "my-doc"},
		{"manual.pdf", "manual"},
	}
	for _, tt := range tests {
		if got := deriveTitle(tt.path); got != tt.want {
			t.Errorf("deriveTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
