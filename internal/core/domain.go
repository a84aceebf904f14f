package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry for a user. CardID is zero when
	// the transaction is not linked to a card.
	Transaction struct {
		ID          int64
		UserID      int64
		Type        TransactionType
		Amount      Money
		Category    string
		Description string
		Date        Date
		CardID      int64
	}

	// Budget is a per-category monthly spending limit.
	Budget struct {
		ID       int64
		UserID   int64
		Category string
		Limit    Money
		Month    int // 1-12
		Year     int
	}

	// Card is a payment card linked to a user account.
	Card struct {
		ID       int64
		UserID   int64
		Name     string
		LastFour string
		Network  string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrNotFound         = errors.New("not found")
)

// IsValid reports whether the transaction type is one of the known kinds.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Limit.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 2000 || b.Year > 2200 {
		return errors.New("invalid year")
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty card name")
	}
	if len(c.LastFour) != 4 {
		return errors.New("last four must be exactly 4 digits")
	}
	for _, r := range c.LastFour {
		if r < '0' || r > '9' {
			return errors.New("last four must be exactly 4 digits")
		}
	}
	return nil
}
