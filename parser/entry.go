package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one parsed ledger line. It is a closed union: the concrete types
// are IDDirective, MealHeader, BareItem, BulletItem, CommentLine and BlankLine.
type Entry interface {
	// String re-emits the entry in canonical form:
	// <content> [@HH:MM] [// comment]. Unaffected fields round-trip
	// byte-for-byte.
	String() string

	entry()
}

// IDDirective declares which ledger identifiers a block aggregates.
//
//	id:2024-05-01
//	ids:2024-05-01,2024-05-02
type IDDirective struct {
	IDs []string
}

func (d *IDDirective) entry() {}

func (d *IDDirective) String() string {
	return "id:" + strings.Join(d.IDs, ",")
}

// MealHeader begins a named group of bulleted food items. Count carries the
// merged repeat count; it is 1 for a plain header and rendered as "× N"
// when greater.
type MealHeader struct {
	Name      string
	Count     int
	Comment   string
	Timestamp string
}

func (m *MealHeader) entry() {}

func (m *MealHeader) String() string {
	s := "meal:" + m.Name
	if m.Count > 1 {
		s += " × " + strconv.Itoa(m.Count)
	}
	return appendSuffixes(s, m.Timestamp, m.Comment)
}

// BareItem is a top-level food reference, not nested under a meal header.
// Quantity is nil when the line names no explicit gram amount and the food's
// default serving applies.
type BareItem struct {
	Food      string
	Quantity  *decimal.Decimal
	Comment   string
	Timestamp string
}

func (b *BareItem) entry() {}

func (b *BareItem) String() string {
	return appendSuffixes(foodContent(b.Food, b.Quantity), b.Timestamp, b.Comment)
}

// BulletItem is a food reference belonging to the most recently opened meal
// header. The parser marks bullet-ness lexically; attachment to a meal is the
// aggregator's concern.
type BulletItem struct {
	Food      string
	Quantity  *decimal.Decimal
	Comment   string
	Timestamp string
}

func (b *BulletItem) entry() {}

func (b *BulletItem) String() string {
	return appendSuffixes("- "+foodContent(b.Food, b.Quantity), b.Timestamp, b.Comment)
}

// CommentLine is a line holding only a comment. It has no food or meal effect
// and must not close an open meal context.
type CommentLine struct {
	Text string
}

func (c *CommentLine) entry() {}

func (c *CommentLine) String() string {
	return "// " + c.Text
}

// BlankLine is an empty or whitespace-only line.
type BlankLine struct{}

func (b *BlankLine) entry() {}

func (b *BlankLine) String() string { return "" }

func foodContent(food string, quantity *decimal.Decimal) string {
	if quantity == nil {
		return food
	}
	return food + ":" + quantity.String() + "g"
}

func appendSuffixes(content, timestamp, comment string) string {
	if timestamp != "" {
		content += " @" + timestamp
	}
	if comment != "" {
		content += " // " + comment
	}
	return content
}
