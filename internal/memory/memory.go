// Package memory is an in-memory implementation of the store ports, used as
// the default dev backend and by handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"
)

// Store keeps everything in maps guarded by one mutex. IDs are per-process
// counters; nothing survives a restart.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	cards        map[int64]core.Card
	tokens       map[string]int64
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
		cards:        make(map[int64]core.Card),
		tokens:       make(map[string]int64),
	}
}

// SeedUser registers a bearer token for a user ID. Dev/test helper standing
// in for real account provisioning.
func (s *Store) SeedUser(token string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextIDLocked()
	s.transactions[t.ID] = t
	return t.ID, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID && t.Type == core.Expense {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.ErrNotFound
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextIDLocked()
	s.budgets[b.ID] = b
	return b.ID, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteBudget(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) CreateCard(ctx context.Context, c core.Card) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextIDLocked()
	s.cards[c.ID] = c
	return c.ID, nil
}

func (s *Store) ListCards(ctx context.Context, userID int64) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Card
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteCard(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

func (s *Store) UserIDByToken(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// sortNewestFirst orders by date descending, then ID descending, matching
// the sqlite queries.
func sortNewestFirst(txs []core.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].ID > txs[j].ID
	})
}
