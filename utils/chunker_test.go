package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessageShortPassesThrough(t *testing.T) {
	chunks := SplitMessage("hello", 100)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("expected single chunk, got %v", chunks)
	}
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := SplitMessage(text, 100)

	if len(chunks) < 2 {
		t.Fatal("expected multiple chunks")
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(chunk))
		}
	}
}

func TestSplitMessagePrefersParagraphBreaks(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	chunks := SplitMessage(first+"\n\n"+second, 100)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != first || chunks[1] != second {
		t.Errorf("expected clean paragraph split, got %v", chunks)
	}
}

func TestSplitMessageHardCutKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("привет", 100) // 2 bytes per rune, no break points
	chunks := SplitMessage(text, 101)

	if len(chunks) < 2 {
		t.Fatal("expected multiple chunks")
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is invalid UTF-8: %q", i, chunk)
		}
		if len(chunk) > 101 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(chunk))
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != text {
		t.Error("content lost or corrupted across chunks")
	}
}

func TestSplitMessageEmojiBoundary(t *testing.T) {
	text := strings.Repeat("🎁", 50) // 4 bytes per rune
	for _, chunk := range SplitMessage(text, 10) {
		if !utf8.ValidString(chunk) {
			t.Errorf("invalid UTF-8 chunk: %q", chunk)
		}
	}
}

func TestSplitMessageHardCutWithoutBreaks(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitMessage(text, 100)

	total := 0
	for _, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk exceeds limit: %d chars", len(chunk))
		}
		total += len(chunk)
	}
	if total != 250 {
		t.Errorf("content lost in split: %d of 250 chars", total)
	}
}
