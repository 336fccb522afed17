package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	HUF Currency = "HUF"
	EUR Currency = "EUR"

	// DefaultCurrency is assumed when a transaction carries no currency.
	DefaultCurrency = HUF

	// UncategorizedLabel is the display name for the bucket that collects
	// expenses without a category. Spending reports sort by this label.
	UncategorizedLabel = "Uncategorized"
)

type (
	// Currency is an ISO 4217 code. HUF and EUR are the codes this ledger
	// actually sees; any other three-letter code is accepted too.
	Currency string

	// Category is a named bucket transactions may reference.
	Category struct {
		ID        int64
		Name      string
		CreatedAt time.Time
	}

	// Transaction is a single ledger entry. Amount is signed: positive is
	// income, negative is expense. Date is the business date (YYYY-MM-DD),
	// CreatedAt the record timestamp used as ordering tie-break.
	Transaction struct {
		ID           int64
		Description  string
		Amount       float64
		Currency     Currency
		Date         string
		CategoryID   *int64
		CategoryName *string
		CreatedAt    time.Time
	}
)

var (
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrEmptyName         = errors.New("empty category name")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrNotFound          = errors.New("not found")
	ErrCategoryInUse     = errors.New("category has referencing transactions")
)

func (c Currency) Validate() error {
	if len(c) != 3 {
		return ErrInvalidCurrency
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return ErrInvalidCurrency
		}
	}
	return nil
}

// NewTransactionParams carries the caller-supplied fields for a new
// transaction. Currency defaults to HUF when empty.
type NewTransactionParams struct {
	Description string
	Amount      float64
	Date        string
	Currency    Currency
	CategoryID  *int64
}

func (p NewTransactionParams) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}
	if _, err := ParseDate(p.Date); err != nil {
		return err
	}
	if p.Currency != "" {
		if err := p.Currency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTransactionParams is a partial update: nil fields are left
// unchanged. CategoryID distinguishes "unchanged" (nil) from "set" or
// "clear the reference" (non-nil outer pointer).
type UpdateTransactionParams struct {
	Description *string
	Amount      *float64
	Date        *string
	Currency    *Currency
	CategoryID  **int64
}

func (p UpdateTransactionParams) Validate() error {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if _, err := ParseDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Currency != nil {
		if err := p.Currency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAmount rejects NaN and infinities. Zero is allowed on a stored
// transaction; it contributes to neither income nor expense.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateCategoryName trims surrounding whitespace and rejects empty
// names. Returns the trimmed name that gets stored.
func ValidateCategoryName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return trimmed, nil
}
