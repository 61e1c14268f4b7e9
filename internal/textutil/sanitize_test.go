package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Episode 1: The Beginning", "Episode_1__The_Beginning"},
		{`What/Why\How?`, "What_Why_How_"},
		{"  spaced   out  ", "_spaced_out_"},
		{"...hidden.", "hidden"},
		{"tab\tand\nnewline", "tab_and_newline"},
		{"bell\x07char", "bell_char"},
		{`a<b>c|d*e"f`, "a_b_c_d_e_f"},
		{"Ünïcödé title", "Ünïcödé_title"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameTruncatesOnRuneBoundary(t *testing.T) {
	tests := []string{
		strings.Repeat("x", 250),
		strings.Repeat("日本語", 70),
		"a" + strings.Repeat("é", 200),
	}
	for _, in := range tests {
		got := SanitizeFileName(in)
		if len(got) > MaxFileNameBytes {
			t.Fatalf("expected at most %d bytes, got %d", MaxFileNameBytes, len(got))
		}
		if len(got) < MaxFileNameBytes-utf8.UTFMax {
			t.Fatalf("truncated too far: %d bytes", len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("expected valid UTF-8 after truncation, got %q", got)
		}
		if !strings.HasPrefix(in, got) {
			t.Fatalf("expected a prefix of the input, got %q", got)
		}
	}
}
