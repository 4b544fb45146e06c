package store

import (
	"context"
	"strings"
)

// Templates is an in-memory TemplateStore keyed by meal name. Lookup is
// case-insensitive; the configured spelling wins.
type Templates map[string][]string

// Template returns the item lines of a named meal template.
func (t Templates) Template(ctx context.Context, name string) ([]string, bool) {
	if items, ok := t[name]; ok {
		return items, true
	}
	for key, items := range t {
		if strings.EqualFold(key, name) {
			return items, true
		}
	}
	return nil, false
}
