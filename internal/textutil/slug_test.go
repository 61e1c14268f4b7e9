package textutil

import (
	"regexp"
	"strings"
	"testing"
)

var slugShape = regexp.MustCompile(`^[a-z0-9-]{0,50}$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Daily Tech News!!", "my-daily-tech-news"},
		{"  --Hello,   World--  ", "hello-world"},
		{"Go 1.22 Release Notes", "go-1-22-release-notes"},
		{"Café Übersicht", "caf-bersicht"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyShapeAndIdempotence(t *testing.T) {
	inputs := []string{
		"My Daily Tech News!!",
		strings.Repeat("abc ", 30),
		strings.Repeat("x", 49) + " yz",
		"日本語のプレイリスト 2024",
		"A-B_C.D",
	}
	for _, in := range inputs {
		slug := Slugify(in)
		if !slugShape.MatchString(slug) {
			t.Fatalf("slug %q from %q does not match shape", slug, in)
		}
		if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
			t.Fatalf("slug %q has edge hyphen", slug)
		}
		if again := Slugify(in); again != slug {
			t.Fatalf("slug not deterministic: %q vs %q", slug, again)
		}
		if Slugify(slug) != slug {
			t.Fatalf("slug not idempotent: %q -> %q", slug, Slugify(slug))
		}
	}
}
