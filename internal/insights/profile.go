package insights

import (
	"math"

	"fintrack/internal/core"
)

// CategoryVector maps a category label to its normalized share of total
// spend. Built from a non-empty batch the weights sum to ~1.0; per-category
// rounding means the sum may drift by a few units in the fourth decimal.
type CategoryVector map[string]float64

// idealProfile is the fixed "ideal saver" reference allocation. Weights
// sum to 1.0. Process-wide constant, never mutated.
var idealProfile = CategoryVector{
	"Rent":          0.30,
	"Food":          0.15,
	"Groceries":     0.15,
	"Transport":     0.10,
	"Entertainment": 0.10,
	"Savings":       0.20,
}

// IdealProfile returns a copy of the reference allocation so callers can
// never mutate the shared constant.
func IdealProfile() CategoryVector {
	out := make(CategoryVector, len(idealProfile))
	for k, v := range idealProfile {
		out[k] = v
	}
	return out
}

// BuildCategoryVector aggregates expense transactions into a normalized
// category-weight vector. Each weight is the category subtotal divided by
// the overall total, rounded independently to 4 decimal places. An empty
// batch (zero total) yields an empty vector rather than dividing by zero.
func BuildCategoryVector(txs []core.Transaction) CategoryVector {
	var total int64
	for _, t := range txs {
		total += t.Amount.Cents
	}
	if total == 0 {
		return CategoryVector{}
	}

	sums := make(map[string]int64)
	for _, t := range txs {
		sums[t.Category] += t.Amount.Cents
	}

	vec := make(CategoryVector, len(sums))
	for cat, cents := range sums {
		vec[cat] = round4(float64(cents) / float64(total))
	}
	return vec
}

// TopCategory returns the category with the highest weight. Ties break
// lexicographically so the result never depends on map iteration order.
// Returns "None" for an empty vector.
func (v CategoryVector) TopCategory() string {
	top := "None"
	var best float64
	for cat, w := range v {
		if w > best || (w == best && top != "None" && cat < top) {
			top = cat
			best = w
		}
	}
	return top
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
