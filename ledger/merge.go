package ledger

import (
	"strings"

	"github.com/JamesCliffordSpratt/macros-sub001/parser"
)

// Merge collapses duplicate top-level references in an entry list.
//
//   - Meal headers with the same case-insensitive name fold into the first
//     occurrence with their repeat counts summed; the later instance's
//     bullets move behind the first header, unmerged, because meal contents
//     are meal-scoped rather than ledger-scoped.
//   - Top-level food items with the same case-insensitive name fold into the
//     first occurrence with quantities summed, but only when both carry an
//     explicit gram quantity; a default-serving reference never folds.
//   - Bulleted items are never merged with each other.
//
// Surviving keys keep the relative order of their first occurrence; folded
// entries are dropped, not reordered. Merge never mutates its input and is
// idempotent.
func Merge(entries []parser.Entry) []parser.Entry {
	type mealNode struct {
		header  *parser.MealHeader
		bullets []parser.Entry
	}
	type node struct {
		meal  *mealNode
		entry parser.Entry
	}

	var nodes []*node
	meals := make(map[string]*mealNode)
	// bares tracks the first explicit-quantity occurrence per key.
	bares := make(map[string]*parser.BareItem)
	var openMeal *mealNode

	for _, e := range entries {
		switch e := e.(type) {
		case *parser.MealHeader:
			key := strings.ToLower(e.Name)
			if first, ok := meals[key]; ok {
				first.header.Count += e.Count
				openMeal = first
				continue
			}
			header := *e
			m := &mealNode{header: &header}
			meals[key] = m
			openMeal = m
			nodes = append(nodes, &node{meal: m})

		case *parser.BulletItem:
			if openMeal != nil {
				openMeal.bullets = append(openMeal.bullets, e)
				continue
			}
			// Bullet with no open meal; passes through untouched.
			nodes = append(nodes, &node{entry: e})

		case *parser.BareItem:
			openMeal = nil
			item := *e
			if e.Quantity == nil {
				// Default-serving references never fold and never block
				// later explicit duplicates from folding with each other.
				nodes = append(nodes, &node{entry: &item})
				continue
			}
			key := strings.ToLower(e.Food)
			if first, ok := bares[key]; ok {
				sum := first.Quantity.Add(*e.Quantity)
				first.Quantity = &sum
				continue
			}
			q := *e.Quantity
			item.Quantity = &q
			bares[key] = &item
			nodes = append(nodes, &node{entry: &item})

		case *parser.IDDirective, *parser.CommentLine, *parser.BlankLine:
			// No food or meal effect; keeps the current meal context open.
			nodes = append(nodes, &node{entry: e})

		default:
			nodes = append(nodes, &node{entry: e})
		}
	}

	out := make([]parser.Entry, 0, len(entries))
	for _, n := range nodes {
		if n.meal != nil {
			out = append(out, n.meal.header)
			out = append(out, n.meal.bullets...)
			continue
		}
		out = append(out, n.entry)
	}
	return out
}
