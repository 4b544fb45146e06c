package ledger

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/parser"
)

// TemplateSource is the narrow view of the meal template store the
// aggregator needs. Template returns the item lines of a named meal
// template, or ok=false when none exists.
type TemplateSource interface {
	Template(ctx context.Context, name string) (items []string, ok bool)
}

// Row is one food reference's contribution to a result. Unresolved rows
// contributed zero; their query is kept for reporting.
type Row struct {
	Food       string
	Meal       string // owning meal header, empty for bare items
	Grams      *decimal.Decimal
	Macros     Totals
	Unresolved bool
}

// Result is the aggregation of one ledger's merged entry list.
type Result struct {
	Total Totals
	Rows  []Row
}

// Aggregator walks merged entry lists and accumulates scaled macros. It is
// safe for concurrent use; all state lives on the stack of Aggregate.
type Aggregator struct {
	resolver  *macro.Resolver
	templates TemplateSource
	logger    *log.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTemplates enables meal-template expansion for meal headers that have
// no explicit bullets.
func WithTemplates(ts TemplateSource) Option {
	return func(a *Aggregator) { a.templates = ts }
}

// WithLogger routes resolution warnings to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// NewAggregator creates an aggregator over the given resolver.
func NewAggregator(resolver *macro.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver: resolver,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate walks a merged entry list in source order and accumulates each
// reference's scaled macros. A reference that fails to resolve is logged and
// contributes zero; aggregation always runs to completion. Given the same
// entries and resolver state, the result is deterministic.
func (a *Aggregator) Aggregate(ctx context.Context, entries []parser.Entry) Result {
	var res Result
	currentMeal := ""

	for i, e := range entries {
		switch e := e.(type) {
		case *parser.MealHeader:
			currentMeal = e.Name
			if !bulletsFollow(entries, i+1) {
				a.expandTemplate(ctx, e, &res)
			}

		case *parser.BulletItem:
			a.accumulate(ctx, e.Food, e.Quantity, currentMeal, &res)

		case *parser.BareItem:
			// A bare item closes the open meal context.
			currentMeal = ""
			a.accumulate(ctx, e.Food, e.Quantity, "", &res)

		case *parser.IDDirective, *parser.CommentLine, *parser.BlankLine:
			// Consumed elsewhere or inert; never closes the meal context.
		}
	}

	return res
}

// bulletsFollow reports whether a meal header is followed by at least one
// explicit bullet before the context closes. Inert lines are skipped.
func bulletsFollow(entries []parser.Entry, from int) bool {
	for _, e := range entries[from:] {
		switch e.(type) {
		case *parser.BulletItem:
			return true
		case *parser.IDDirective, *parser.CommentLine, *parser.BlankLine:
			continue
		default:
			return false
		}
	}
	return false
}

// expandTemplate resolves a named meal template's items as if they were
// bullets under the header. The header's repeat count multiplies the
// expansion; explicit bullets supersede templates entirely, so this is only
// reached for bullet-less headers.
func (a *Aggregator) expandTemplate(ctx context.Context, header *parser.MealHeader, res *Result) {
	if a.templates == nil {
		return
	}
	items, ok := a.templates.Template(ctx, header.Name)
	if !ok {
		return
	}

	count := header.Count
	if count < 1 {
		count = 1
	}
	for rep := 0; rep < count; rep++ {
		for _, item := range items {
			switch e := parser.ParseLine(item).(type) {
			case *parser.BareItem:
				a.accumulate(ctx, e.Food, e.Quantity, header.Name, res)
			case *parser.BulletItem:
				a.accumulate(ctx, e.Food, e.Quantity, header.Name, res)
			}
		}
	}
}

// accumulate resolves and scales one reference, appends its row, and folds
// it into the running total.
func (a *Aggregator) accumulate(ctx context.Context, food string, grams *decimal.Decimal, meal string, res *Result) {
	row := Row{Food: food, Meal: meal, Grams: grams}

	rec, err := a.resolver.Resolve(ctx, food)
	if err != nil {
		a.logger.Warn("food reference did not resolve", "query", food, "err", err)
		row.Unresolved = true
		res.Rows = append(res.Rows, row)
		return
	}

	scaled := macro.Scale(rec, grams)
	row.Macros = Totals{}.Accumulate(scaled)
	res.Rows = append(res.Rows, row)
	res.Total = res.Total.Accumulate(scaled)
}

// Combine sums per-ledger results into a grand total. The inputs are already
// rounded, so the combined figure stays consistent with what each ledger
// displays on its own.
func Combine(results []Result) Totals {
	var total Totals
	for _, r := range results {
		total = total.Combine(r.Total)
	}
	return total
}
