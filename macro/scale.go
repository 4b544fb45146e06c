package macro

import "github.com/shopspring/decimal"

// Scaled holds one food reference's macro values at the requested serving.
// Protein, fat and carbs are rounded to one decimal at scale time; calories
// is carried unrounded and rounded at the point it enters a running total.
// The asymmetry is part of the output contract, not an accident.
type Scaled struct {
	Calories decimal.Decimal
	Protein  decimal.Decimal
	Fat      decimal.Decimal
	Carbs    decimal.Decimal
}

// Scale computes a record's macros for the requested gram quantity. A nil
// quantity selects the record's own base serving (scale factor 1). The
// record must satisfy Valid; the resolver guarantees that.
func Scale(rec *Record, grams *decimal.Decimal) Scaled {
	if grams == nil {
		return Scaled{
			Calories: rec.Calories,
			Protein:  rec.Protein.Round(1),
			Fat:      rec.Fat.Round(1),
			Carbs:    rec.Carbs.Round(1),
		}
	}

	factor := grams.Div(rec.ServingGrams)
	return Scaled{
		Calories: rec.Calories.Mul(factor),
		Protein:  rec.Protein.Mul(factor).Round(1),
		Fat:      rec.Fat.Mul(factor).Round(1),
		Carbs:    rec.Carbs.Mul(factor).Round(1),
	}
}
