// Package parser implements the macro ledger line grammar.
//
// Each line of a fenced ledger block is one entry:
//
//	id:2024-05-01,2024-05-02        identifier directive
//	meal:Breakfast × 2              meal header with repeat count
//	- Apple:100g @08:15 // snack    bulleted item under the open meal
//	Banana:50g                      bare top-level item
//	Oatmeal                         bare item at its default serving
//
// The grammar is recognized by prefix dispatch plus two independent suffix
// extractors (timestamp and comment), not by regular expressions. Parsing
// never fails; unrecognizable content becomes a bare item whose resolution
// is the resolver's problem.
package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLine parses one raw ledger line into a typed entry.
func ParseLine(raw string) Entry {
	content, comment := splitComment(raw)
	content, timestamp := extractTimestamp(content)
	content = strings.TrimSpace(content)

	if content == "" {
		if comment != "" {
			return &CommentLine{Text: comment}
		}
		return &BlankLine{}
	}

	lower := strings.ToLower(content)
	switch {
	case strings.HasPrefix(lower, "meal:"), strings.HasPrefix(lower, "group:"):
		name := strings.TrimSpace(content[strings.Index(content, ":")+1:])
		name, count := splitRepeatCount(name)
		return &MealHeader{Name: name, Count: count, Comment: comment, Timestamp: timestamp}

	case strings.HasPrefix(lower, "ids:"):
		return &IDDirective{IDs: splitIDs(content[4:])}

	case strings.HasPrefix(lower, "id:"):
		return &IDDirective{IDs: splitIDs(content[3:])}

	case strings.HasPrefix(content, "-"):
		food, quantity := parseFoodRef(strings.TrimLeft(content[1:], " \t"))
		return &BulletItem{Food: food, Quantity: quantity, Comment: comment, Timestamp: timestamp}

	default:
		food, quantity := parseFoodRef(content)
		return &BareItem{Food: food, Quantity: quantity, Comment: comment, Timestamp: timestamp}
	}
}

// ParseLines parses a whole ledger block.
func ParseLines(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, ParseLine(line))
	}
	return entries
}

// parseFoodRef splits "name:<number>g" into the food name and an explicit
// gram quantity. Without a colon the whole reference is a bare name at its
// record's default serving.
func parseFoodRef(content string) (string, *decimal.Decimal) {
	i := strings.Index(content, ":")
	if i < 0 {
		return strings.TrimSpace(content), nil
	}
	name := strings.TrimSpace(content[:i])
	quantity := Quantity(content[i+1:])
	return name, quantity
}

// Quantity extracts the first numeric token from a serving expression and
// discards trailing unit text ("150g", "150 g", "150.5grams" all yield
// 150/150.5). It returns nil when no numeric token is present.
func Quantity(s string) *decimal.Decimal {
	start := -1
	end := len(s)
	seenDot := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if start < 0 {
			if isDigit(ch) {
				start = i
			}
			continue
		}
		if isDigit(ch) {
			continue
		}
		if ch == '.' && !seenDot && i+1 < len(s) && isDigit(s[i+1]) {
			seenDot = true
			continue
		}
		end = i
		break
	}
	if start < 0 {
		return nil
	}
	d, err := decimal.NewFromString(s[start:end])
	if err != nil {
		return nil
	}
	return &d
}

// splitRepeatCount strips a trailing "× N" (or ASCII "x N") repeat-count
// suffix from a meal name. A plain name has count 1.
func splitRepeatCount(name string) (string, int) {
	for _, sep := range []string{"×", "x", "X"} {
		i := strings.LastIndex(name, sep)
		if i <= 0 {
			continue
		}
		// Separator must be preceded by whitespace so food names containing
		// an "x" are left alone.
		if name[i-1] != ' ' && name[i-1] != '\t' {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(name[i+len(sep):]))
		if err != nil || n < 1 {
			continue
		}
		return strings.TrimRight(name[:i], " \t"), n
	}
	return name, 1
}

func splitIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// SplitFoodKey splits a raw ledger line into its leading indent/bullet
// prefix, the food-key segment, and the untouched remainder (quantity and
// suffixes). It returns ok=false for lines whose key portion is not a food
// reference (meal headers, id directives, comments, blanks), so bulk rewrites
// never touch them.
func SplitFoodKey(raw string) (prefix, key, rest string, ok bool) {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	prefix = raw[:i]
	body := raw[i:]

	if strings.HasPrefix(body, "-") {
		j := 1
		for j < len(body) && (body[j] == ' ' || body[j] == '\t') {
			j++
		}
		prefix += body[:j]
		body = body[j:]
	}

	switch ParseLine(body).(type) {
	case *BareItem:
	default:
		return "", "", "", false
	}

	// The key runs up to the first colon, or to the first suffix marker when
	// the line names no quantity. The remainder is returned byte-for-byte.
	cut := len(body)
	if j := strings.Index(body, ":"); j >= 0 {
		cut = j
	}
	if j := strings.Index(body, "//"); j >= 0 && j < cut {
		cut = j
	}
	for j := 0; j < cut; j++ {
		if body[j] == '@' && isClockAt(body, j+1) {
			cut = j
			break
		}
	}
	key = strings.TrimRight(body[:cut], " \t")
	if key == "" {
		return "", "", "", false
	}
	return prefix, key, body[len(key):], true
}
