// Package store declares the outbound persistence ports implemented by the
// sqlite and memory backends.
package store

import (
	"context"

	"fintrack/internal/core"
)

type (
	// ExpenseReader is the narrow read port the insights composer depends on.
	ExpenseReader interface {
		// RecentExpenses returns up to limit expense transactions for the
		// user, newest first.
		RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
	}

	TransactionStore interface {
		ExpenseReader
		CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
		// UpdateTransaction rewrites the transaction identified by t.ID,
		// provided it belongs to t.UserID.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (int64, error)
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id int64) error
	}

	CardStore interface {
		CreateCard(ctx context.Context, c core.Card) (int64, error)
		ListCards(ctx context.Context, userID int64) ([]core.Card, error)
		DeleteCard(ctx context.Context, userID, id int64) error
	}

	// UserResolver maps a bearer token to a user identity. Token issuance and
	// session handling live outside this service.
	UserResolver interface {
		UserIDByToken(ctx context.Context, token string) (int64, error)
	}
)
