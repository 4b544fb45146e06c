package parser

import "strings"

// Trailing annotations are extracted with two independent passes so that
// removing one never disturbs the other. The comment is everything after the
// first "//"; a timestamp is the first "@HH:MM" token outside the comment.

// splitComment splits a line at the first "//". The returned content keeps
// its leading whitespace; the comment is trimmed.
func splitComment(line string) (content, comment string) {
	if i := strings.Index(line, "//"); i >= 0 {
		return strings.TrimRight(line[:i], " \t"), strings.TrimSpace(line[i+2:])
	}
	return line, ""
}

// extractTimestamp removes the first @HH:MM token from content and returns it
// without the leading '@'. Exactly two digits, a colon, two digits; anything
// else after '@' is left in place.
func extractTimestamp(content string) (rest, timestamp string) {
	for i := 0; i < len(content); i++ {
		if content[i] != '@' {
			continue
		}
		if !isClockAt(content, i+1) {
			continue
		}
		ts := content[i+1 : i+6]
		before := strings.TrimRight(content[:i], " \t")
		after := strings.TrimLeft(content[i+6:], " \t")
		if after != "" {
			before = strings.TrimRight(before+" "+after, " \t")
		}
		return before, ts
	}
	return content, ""
}

// isClockAt reports whether content[i:] starts with HH:MM.
func isClockAt(content string, i int) bool {
	if i+5 > len(content) {
		return false
	}
	return isDigit(content[i]) && isDigit(content[i+1]) &&
		content[i+2] == ':' &&
		isDigit(content[i+3]) && isDigit(content[i+4])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
