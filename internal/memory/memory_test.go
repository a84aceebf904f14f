package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func tx(userID int64, typ core.TransactionType, category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: "test entry",
		Date:        date,
	}
}

func TestRecentExpensesFiltersAndOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.CreateTransaction(ctx, tx(1, core.Expense, "Food", 100, core.NewDate(2025, 1, 10))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTransaction(ctx, tx(1, core.Income, "Salary", 500000, core.NewDate(2025, 1, 15))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTransaction(ctx, tx(1, core.Expense, "Rent", 90000, core.NewDate(2025, 1, 20))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTransaction(ctx, tx(2, core.Expense, "Food", 200, core.NewDate(2025, 1, 21))); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentExpenses(ctx, 1, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses for user 1, got %d", len(got))
	}
	if got[0].Category != "Rent" || got[1].Category != "Food" {
		t.Fatalf("expected newest-first order, got %v then %v", got[0].Category, got[1].Category)
	}

	limited, err := s.RecentExpenses(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Category != "Rent" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestUpdateTransactionOwnership(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id, err := s.CreateTransaction(ctx, tx(1, core.Expense, "Food", 100, core.NewDate(2025, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	updated := tx(1, core.Expense, "Groceries", 250, core.NewDate(2025, 1, 2))
	updated.ID = id
	if err := s.UpdateTransaction(ctx, updated); err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	got, err := s.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Category != "Groceries" || got.Amount.Cents != 250 {
		t.Fatalf("update not applied: %+v", got)
	}

	foreign := updated
	foreign.UserID = 2
	if err := s.UpdateTransaction(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user's update should fail with ErrNotFound, got %v", err)
	}

	missing := updated
	missing.ID = 999
	if err := s.UpdateTransaction(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing transaction update should fail with ErrNotFound, got %v", err)
	}
}

func TestDeleteTransactionOwnership(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id, err := s.CreateTransaction(ctx, tx(1, core.Expense, "Food", 100, core.NewDate(2025, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTransaction(ctx, 2, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user's delete should fail with ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, 1, id); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := s.DeleteTransaction(ctx, 1, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should fail with ErrNotFound, got %v", err)
	}
}

func TestUserIDByToken(t *testing.T) {
	s := NewStore()
	s.SeedUser("tok-abc", 7)

	id, err := s.UserIDByToken(context.Background(), "tok-abc")
	if err != nil || id != 7 {
		t.Fatalf("UserIDByToken = (%d, %v), want (7, nil)", id, err)
	}
	if _, err := s.UserIDByToken(context.Background(), "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown token should return ErrNotFound, got %v", err)
	}
}

func TestBudgetAndCardRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	bid, err := s.CreateBudget(ctx, core.Budget{UserID: 1, Category: "Food", Limit: core.Money{Cents: 40000}, Month: 5, Year: 2025})
	if err != nil {
		t.Fatal(err)
	}
	budgets, err := s.ListBudgets(ctx, 1)
	if err != nil || len(budgets) != 1 || budgets[0].ID != bid {
		t.Fatalf("ListBudgets = (%+v, %v)", budgets, err)
	}
	if err := s.DeleteBudget(ctx, 1, bid); err != nil {
		t.Fatal(err)
	}

	cid, err := s.CreateCard(ctx, core.Card{UserID: 1, Name: "Main", LastFour: "1234", Network: "visa"})
	if err != nil {
		t.Fatal(err)
	}
	cards, err := s.ListCards(ctx, 1)
	if err != nil || len(cards) != 1 || cards[0].ID != cid {
		t.Fatalf("ListCards = (%+v, %v)", cards, err)
	}
	if err := s.DeleteCard(ctx, 1, cid); err != nil {
		t.Fatal(err)
	}
}
