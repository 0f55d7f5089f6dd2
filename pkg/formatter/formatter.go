package formatter

import (
	"strings"
	"unicode/utf16"
)

// Telegram limits, counted in UTF-16 code units.
const (
	CaptionLimit = 1024
	MessageLimit = 4096
)

// ComposePost joins the post title and body the way the channel shows them:
// title, blank line, body. An empty title yields the body alone.
func ComposePost(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n\n" + body
	}
}

// Truncate shortens s to at most limit UTF-16 code units, ending with an
// ellipsis when cut. Runes are never split.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if Length(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}

	var (
		units int
		end   int
	)
	for i, r := range s {
		n := runeUnits(r)
		if units+n > limit-1 {
			break
		}
		units += n
		end = i + len(string(r))
	}
	return strings.TrimRightFunc(s[:end], isSpace) + "…"
}

// Length reports the size of s the way Telegram counts it.
func Length(s string) int {
	var n int
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
