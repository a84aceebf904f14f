package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements every store port plus the sync-queue queries
// the ledger worker needs.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping backs the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements store.TransactionStore.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var cardID sql.NullInt64
	if t.CardID != 0 {
		cardID = sql.NullInt64{Int64: t.CardID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, type, amount_cents, category, description, tx_date, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.Time, cardID)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTxID, id,
		log.FieldUserID, t.UserID,
		log.FieldTxType, string(t.Type),
		log.FieldCategory, t.Category,
		log.FieldAmountCents, t.Amount.Cents)

	return id, nil
}

// GetTransaction returns a single transaction by ID, including soft-deleted
// rows so the worker can still resolve delete messages.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount_cents, category, description, tx_date, COALESCE(card_id, 0)
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the user's transactions, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount_cents, category, description, tx_date, COALESCE(card_id, 0)
		FROM transactions
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY tx_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// RecentExpenses implements store.ExpenseReader: the newest expense
// transactions feeding the insights pipeline.
func (r *SQLiteRepository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount_cents, category, description, tx_date, COALESCE(card_id, 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND deleted_at IS NULL
		ORDER BY tx_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// UpdateTransaction rewrites an owned transaction. The row goes back to
// pending with a bumped version so the ledger sync picks the change up.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	var cardID sql.NullInt64
	if t.CardID != 0 {
		cardID = sql.NullInt64{Int64: t.CardID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount_cents = ?, category = ?, description = ?, tx_date = ?, card_id = ?,
		    sync_status = 'pending', version = version + 1
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.Time, cardID, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTxID, t.ID,
		log.FieldUserID, t.UserID,
		log.FieldCategory, t.Category,
		log.FieldAmountCents, t.Amount.Cents)
	return nil
}

// DeleteTransaction soft-deletes a user's transaction.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction soft-deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTxID, id,
		log.FieldUserID, userID)
	return nil
}

// CreateBudget implements store.BudgetStore.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, limit_cents, month, year)
		VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Category, b.Limit.Cents, b.Month, b.Year)
	if err != nil {
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category, limit_cents, month, year
		FROM budgets WHERE user_id = ? ORDER BY year DESC, month DESC, category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	return r.deleteOwned(ctx, "budgets", userID, id)
}

// CreateCard implements store.CardStore.
func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.Card) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (user_id, name, last_four, network) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, c.LastFour, c.Network)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListCards(ctx context.Context, userID int64) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, last_four, network FROM cards WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		var c core.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.LastFour, &c.Network); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, userID, id int64) error {
	return r.deleteOwned(ctx, "cards", userID, id)
}

// UserIDByToken implements store.UserResolver.
func (r *SQLiteRepository) UserIDByToken(ctx context.Context, token string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE api_token = ?`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	return id, nil
}

// PendingSyncTransaction is the minimal row the sync queue works with.
type PendingSyncTransaction struct {
	ID      int64
	Version int64
}

// PendingSync returns transactions not yet written to the ledger.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version FROM transactions
		WHERE sync_status = 'pending' AND deleted_at IS NULL
		ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful ledger append.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", log.FieldComponent, log.ComponentStorage, log.FieldTxID, id)
	return nil
}

// MarkSyncError records a failed ledger append.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", log.FieldComponent, log.ComponentStorage, log.FieldTxID, id)
	return nil
}

func (r *SQLiteRepository) deleteOwned(ctx context.Context, table string, userID, id int64) error {
	// table is always a compile-time constant from this package.
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", table), id, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		typ    string
		txDate time.Time
	)
	if err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.Category, &t.Description, &txDate, &t.CardID); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Date = core.Date{Time: txDate}
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
