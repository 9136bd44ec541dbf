package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// "é" is 2 bytes; a naive byte slice at 3 would split the second rune.
	s := "éé"
	got := Truncate(s, 3)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate(%q, 3) = %q, not valid UTF-8", s, got)
	}
	if got != "é..." {
		t.Errorf("Truncate(%q, 3) = %q, want %q", s, got, "é...")
	}

	long := strings.Repeat("日本語", 400)
	got = Truncate(long, 1000)
	if !utf8.ValidString(got) {
		t.Errorf("truncated history is not valid UTF-8: %q", got[:20])
	}
	if len(got) > 1000+len("...") {
		t.Errorf("len = %d, want at most %d", len(got), 1000+len("..."))
	}
}
