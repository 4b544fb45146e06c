// Package ledger turns parsed ledger entries into nutrition totals. It
// collapses duplicate top-level references, walks the merged entry list with
// a single "current meal" state variable, and accumulates scaled macros with
// one-decimal rounding at every accumulation boundary.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
)

// Totals is an aggregated set of macro values. Every field is rounded to one
// decimal place after each accumulation step, not only at the end; the
// intermediate roundings keep independently rendered partial and combined
// totals mutually consistent and are part of the output contract.
type Totals struct {
	Calories decimal.Decimal `json:"calories"`
	Protein  decimal.Decimal `json:"protein"`
	Fat      decimal.Decimal `json:"fat"`
	Carbs    decimal.Decimal `json:"carbs"`
}

// Accumulate adds one scaled food reference into the running total. Calories
// is rounded here, at the point it enters a total; protein, fat and carbs
// arrive already rounded from the scaler. Each resulting field is rounded
// again before the next addition sees it.
func (t Totals) Accumulate(s macro.Scaled) Totals {
	return Totals{
		Calories: t.Calories.Add(s.Calories.Round(1)).Round(1),
		Protein:  t.Protein.Add(s.Protein).Round(1),
		Fat:      t.Fat.Add(s.Fat).Round(1),
		Carbs:    t.Carbs.Add(s.Carbs).Round(1),
	}
}

// Combine sums two already-rounded totals, rounding the result. Cross-ledger
// aggregation sums per-ledger totals this way rather than re-adding raw
// contributions.
func (t Totals) Combine(o Totals) Totals {
	return Totals{
		Calories: t.Calories.Add(o.Calories).Round(1),
		Protein:  t.Protein.Add(o.Protein).Round(1),
		Fat:      t.Fat.Add(o.Fat).Round(1),
		Carbs:    t.Carbs.Add(o.Carbs).Round(1),
	}
}

// IsZero reports whether every field is zero.
func (t Totals) IsZero() bool {
	return t.Calories.IsZero() && t.Protein.IsZero() && t.Fat.IsZero() && t.Carbs.IsZero()
}
