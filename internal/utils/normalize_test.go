package utils

import (
	"errors"
	"testing"
)

func TestServiceKey(t *testing.T) {
	cases := map[string]string{
		"Griha Pravesh Puja":   "griha-pravesh-puja",
		"  Satyanarayan  Katha ": "satyanarayan-katha",
		"Pūjā":                 "puja",
		"wedding_ceremony":     "wedding-ceremony",
		"":                     "",
		"---":                  "",
	}
	for in, want := range cases {
		if got := ServiceKey(in); got != want {
			t.Errorf("ServiceKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearchTokens(t *testing.T) {
	got := SearchTokens("Pandit Sharma", "Griha Pravesh")
	want := map[string]bool{
		"pandit sharma": true,
		"pandit":        true,
		"sharma":        true,
		"griha pravesh": true,
		"griha":         true,
		"pravesh":       true,
	}
	if len(got) != len(want) {
		t.Fatalf("SearchTokens returned %v, want %d tokens", got, len(want))
	}
	for _, tok := range got {
		if !want[tok] {
			t.Errorf("unexpected token %q", tok)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := ParseDate("2026-09-14"); err != nil || d.Day() != 14 {
		t.Errorf("ParseDate plain date: %v %v", d, err)
	}
	if _, err := ParseDate("2026-09-14T10:00:00Z"); err != nil {
		t.Errorf("ParseDate RFC3339: %v", err)
	}
	if _, err := ParseDate("next tuesday"); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("expected ErrInvalidTimeFormat, got %v", err)
	}
}

func TestTrimMax(t *testing.T) {
	if got := TrimMax("  hello  ", 10); got != "hello" {
		t.Errorf("TrimMax = %q", got)
	}
	if got := TrimMax("abcdef", 3); got != "abc" {
		t.Errorf("TrimMax cut = %q", got)
	}
}
