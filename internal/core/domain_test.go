package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -10}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      1,
		Type:        Expense,
		Amount:      Money{Cents: 1250},
		Category:    "Food",
		Description: "lunch downtown",
		Date:        NewDate(2025, 3, 14),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 1}, Category: "c", Description: "d", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 0}, Category: "c", Description: "d", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "", Description: "d", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "c", Description: "  ", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "c", Description: "d", Date: Date{Time: time.Time{}}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{UserID: 1, Category: "Food", Limit: Money{Cents: 50000}, Month: 6, Year: 2025}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Budget{
		{Category: "Food", Limit: Money{Cents: 0}, Month: 6, Year: 2025},
		{Category: "", Limit: Money{Cents: 1}, Month: 6, Year: 2025},
		{Category: "Food", Limit: Money{Cents: 1}, Month: 13, Year: 2025},
		{Category: "Food", Limit: Money{Cents: 1}, Month: 6, Year: 1800},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCardValidate(t *testing.T) {
	good := Card{UserID: 1, Name: "Daily card", LastFour: "4242", Network: "visa"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Card{
		{Name: "", LastFour: "4242"},
		{Name: "x", LastFour: "424"},
		{Name: "x", LastFour: "42ab"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
