package ledger

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testSource is an in-memory food store with substring lookup semantics.
type testSource []*macro.Record

func (s testSource) FindByName(_ context.Context, query string) ([]*macro.Record, error) {
	var out []*macro.Record
	for _, rec := range s {
		if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(query)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type testTemplates map[string][]string

func (t testTemplates) Template(_ context.Context, name string) ([]string, bool) {
	items, ok := t[name]
	return items, ok
}

func foods() testSource {
	return testSource{
		{Name: "Apple", ServingGrams: dec("100"), Calories: dec("52"), Protein: dec("0.3"), Fat: dec("0.2"), Carbs: dec("14")},
		{Name: "Apple Juice", ServingGrams: dec("250"), Calories: dec("115"), Protein: dec("0.2"), Fat: dec("0.3"), Carbs: dec("28")},
		{Name: "Banana", ServingGrams: dec("100"), Calories: dec("89"), Protein: dec("1.1"), Fat: dec("0.3"), Carbs: dec("23")},
		{Name: "Egg", ServingGrams: dec("50"), Calories: dec("72"), Protein: dec("6.3"), Fat: dec("4.8"), Carbs: dec("0.4")},
	}
}

func newTestAggregator(opts ...Option) *Aggregator {
	quiet := log.New(io.Discard)
	opts = append([]Option{WithLogger(quiet)}, opts...)
	return NewAggregator(macro.NewResolver(foods()), opts...)
}

func assertTotals(t *testing.T, totals Totals, calories, protein, fat, carbs string) {
	t.Helper()
	assert.True(t, totals.Calories.Equal(dec(calories)), "calories = %s, want %s", totals.Calories, calories)
	assert.True(t, totals.Protein.Equal(dec(protein)), "protein = %s, want %s", totals.Protein, protein)
	assert.True(t, totals.Fat.Equal(dec(fat)), "fat = %s, want %s", totals.Fat, fat)
	assert.True(t, totals.Carbs.Equal(dec(carbs)), "carbs = %s, want %s", totals.Carbs, carbs)
}

func TestAggregateScaledBareItem(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), parseAll("Apple:150g"))

	assertTotals(t, res.Total, "78", "0.5", "0.3", "21")
	assert.Equal(t, 1, len(res.Rows))
	assert.Equal(t, "Apple", res.Rows[0].Food)
}

func TestAggregateBulletsSummedIndependently(t *testing.T) {
	agg := newTestAggregator()

	// Two bullets of the same food inside one meal are scaled separately,
	// not pre-merged to a single 150g reference.
	res := agg.Aggregate(context.Background(), Merge(parseAll(
		"meal:Breakfast",
		"- Apple:100g",
		"- Apple:50g",
	)))

	assertTotals(t, res.Total, "78", "0.5", "0.3", "21")
	assert.Equal(t, 2, len(res.Rows))
	assert.Equal(t, "Breakfast", res.Rows[0].Meal)
	assert.Equal(t, "Breakfast", res.Rows[1].Meal)
}

func TestAggregateMergedTopLevelItems(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), Merge(parseAll("Banana:100g", "Banana:50g")))

	// Merge folds the pair to Banana:150g; it is resolved once at 150g.
	assert.Equal(t, 1, len(res.Rows))
	assertTotals(t, res.Total, "133.5", "1.7", "0.5", "34.5")
}

func TestAggregateAmbiguousReferenceContributesZero(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), parseAll("appl:100g", "Banana:100g"))

	assert.True(t, res.Rows[0].Unresolved)
	assert.True(t, res.Rows[0].Macros.IsZero())
	assertTotals(t, res.Total, "89", "1.1", "0.3", "23")
}

func TestAggregateUnknownReferenceContributesZero(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), parseAll("Dragonfruit:100g"))

	assert.True(t, res.Rows[0].Unresolved)
	assert.True(t, res.Total.IsZero())
}

func TestAggregateBareItemClosesMealContext(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), parseAll(
		"meal:Lunch",
		"- Apple:100g",
		"Banana:100g",
		"- Egg:50g",
	))

	assert.Equal(t, "Lunch", res.Rows[0].Meal)
	assert.Equal(t, "", res.Rows[1].Meal)
	// The trailing bullet has no open meal left to belong to.
	assert.Equal(t, "", res.Rows[2].Meal)
}

func TestAggregateInertLinesKeepMealOpen(t *testing.T) {
	agg := newTestAggregator()

	res := agg.Aggregate(context.Background(), parseAll(
		"meal:Lunch",
		"- Apple:100g",
		"// a remark",
		"",
		"id:2024-05-01",
		"- Egg:50g",
	))

	assert.Equal(t, "Lunch", res.Rows[1].Meal)
}

func TestAggregateTemplateExpansion(t *testing.T) {
	templates := testTemplates{"Breakfast": {"Egg:50g", "Banana:100g"}}
	agg := newTestAggregator(WithTemplates(templates))

	res := agg.Aggregate(context.Background(), parseAll("meal:Breakfast"))

	assert.Equal(t, 2, len(res.Rows))
	assertTotals(t, res.Total, "161", "7.4", "5.1", "23.4")
}

func TestAggregateTemplateRepeatCount(t *testing.T) {
	templates := testTemplates{"Breakfast": {"Egg:50g"}}
	agg := newTestAggregator(WithTemplates(templates))

	res := agg.Aggregate(context.Background(), parseAll("meal:Breakfast × 2"))

	assert.Equal(t, 2, len(res.Rows))
	assertTotals(t, res.Total, "144", "12.6", "9.6", "0.8")
}

func TestAggregateExplicitBulletsSupersedeTemplate(t *testing.T) {
	templates := testTemplates{"Breakfast": {"Egg:50g", "Banana:100g"}}
	agg := newTestAggregator(WithTemplates(templates))

	res := agg.Aggregate(context.Background(), parseAll("meal:Breakfast", "- Apple:100g"))

	assert.Equal(t, 1, len(res.Rows))
	assertTotals(t, res.Total, "52", "0.3", "0.2", "14")
}

func TestAggregateIsDeterministic(t *testing.T) {
	agg := newTestAggregator()
	entries := Merge(parseAll("meal:Lunch", "- Apple:33g", "- Banana:77g", "Egg:25g"))

	first := agg.Aggregate(context.Background(), entries)
	for i := 0; i < 5; i++ {
		again := agg.Aggregate(context.Background(), entries)
		assertTotals(t, again.Total,
			first.Total.Calories.String(),
			first.Total.Protein.String(),
			first.Total.Fat.String(),
			first.Total.Carbs.String())
	}
}

func TestCombineSumsRoundedTotals(t *testing.T) {
	a := Result{Total: Totals{Calories: dec("78"), Protein: dec("0.5"), Fat: dec("0.3"), Carbs: dec("21")}}
	b := Result{Total: Totals{Calories: dec("89"), Protein: dec("1.1"), Fat: dec("0.3"), Carbs: dec("23")}}

	total := Combine([]Result{a, b})
	assertTotals(t, total, "167", "1.6", "0.6", "44")
}
