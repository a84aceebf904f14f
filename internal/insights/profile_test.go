package insights

import (
	"math"
	"testing"

	"fintrack/internal/core"
)

func expense(category string, cents int64) core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: cents},
		Category: category,
	}
}

func TestBuildCategoryVector(t *testing.T) {
	txs := []core.Transaction{
		expense("Rent", 100000),
		expense("Rent", 100000),
		expense("Food", 20000),
	}
	vec := BuildCategoryVector(txs)

	if got := vec["Rent"]; got != 0.9091 {
		t.Fatalf("Rent weight = %v, want 0.9091", got)
	}
	if got := vec["Food"]; got != 0.0909 {
		t.Fatalf("Food weight = %v, want 0.0909", got)
	}
}

func TestBuildCategoryVectorScenario(t *testing.T) {
	// Rent 1000 + Rent 1000 + Food 200 -> {Rent: 0.8333, Food: 0.1667}
	txs := []core.Transaction{
		expense("Rent", 50000),
		expense("Rent", 50000),
		expense("Food", 20000),
	}
	vec := BuildCategoryVector(txs)
	if vec["Rent"] != 0.8333 || vec["Food"] != 0.1667 {
		t.Fatalf("vector = %v, want {Rent: 0.8333, Food: 0.1667}", vec)
	}
}

func TestBuildCategoryVectorWeightsSum(t *testing.T) {
	txs := []core.Transaction{
		expense("Rent", 33333),
		expense("Food", 33333),
		expense("Transport", 33334),
		expense("Entertainment", 100),
	}
	vec := BuildCategoryVector(txs)
	var sum float64
	for _, w := range vec {
		if w < 0 {
			t.Fatalf("negative weight in %v", vec)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 0.001 {
		t.Fatalf("weights sum to %v, want within 0.001 of 1.0", sum)
	}
}

func TestBuildCategoryVectorEmpty(t *testing.T) {
	vec := BuildCategoryVector(nil)
	if len(vec) != 0 {
		t.Fatalf("empty batch should yield empty vector, got %v", vec)
	}
}

func TestTopCategory(t *testing.T) {
	cases := []struct {
		name string
		vec  CategoryVector
		want string
	}{
		{"simple", CategoryVector{"Rent": 0.8, "Food": 0.2}, "Rent"},
		{"tie breaks lexicographically", CategoryVector{"Food": 0.5, "Transport": 0.5}, "Food"},
		{"empty", CategoryVector{}, "None"},
	}
	for _, tc := range cases {
		if got := tc.vec.TopCategory(); got != tc.want {
			t.Fatalf("%s: TopCategory() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIdealProfileSumsToOne(t *testing.T) {
	var sum float64
	for _, w := range IdealProfile() {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("ideal profile sums to %v", sum)
	}
}

func TestIdealProfileCopyIsolated(t *testing.T) {
	p := IdealProfile()
	p["Rent"] = 0
	if idealProfile["Rent"] != 0.30 {
		t.Fatalf("mutating the returned profile leaked into the constant")
	}
}
