package utils

import (
	"strings"
	"unicode/utf8"
)

// TelegramMessageLimit is the Bot API's hard cap per message.
const TelegramMessageLimit = 4096

// SplitMessage breaks text into chunks that fit under limit. It prefers
// paragraph breaks, then line breaks, and only cuts mid-line as a last
// resort. Hard cuts land on rune boundaries so multi-byte text never
// produces an invalid-UTF-8 chunk.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n\n")
		if cut <= 0 {
			cut = strings.LastIndex(text[:limit], "\n")
		}
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}

		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
