// Package macro maps free-text food references to canonical nutrition
// records and scales their macro values to a requested serving.
package macro

import "github.com/shopspring/decimal"

// Record is one canonical food record. It is owned by the food store; this
// package only resolves and scales it, never mutates it. All per-serving
// values are expressed against ServingGrams.
type Record struct {
	Name         string
	ServingGrams decimal.Decimal
	Calories     decimal.Decimal
	Protein      decimal.Decimal
	Fat          decimal.Decimal
	Carbs        decimal.Decimal
}

// Valid reports whether the record can be scaled. A zero or negative base
// serving makes every scale factor meaningless; such records are treated as
// unresolvable upstream.
func (r *Record) Valid() bool {
	return r != nil && r.ServingGrams.IsPositive()
}
