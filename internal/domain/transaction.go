package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValid returns true if the type is a recognized value.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single income or expense entry.
//
// Amount is kept as the decimal string stored in the NUMERIC(12,2) column so
// no precision is lost on the way through.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   string          `json:"userId"`
	Amount      string          `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	IsRecurring bool            `json:"isRecurring"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreateTransactionParams contains parameters for recording a transaction.
type CreateTransactionParams struct {
	AccountID   string
	Amount      string
	Type        TransactionType
	Category    string
	Description string
	Date        time.Time // Defaults to now
	IsRecurring bool
}

// Validate checks required fields.
func (p *CreateTransactionParams) Validate(op string, now time.Time) error {
	if !p.Type.IsValid() {
		return Invalid(op, "Type must be income or expense")
	}
	if p.Category == "" {
		return Invalid(op, "Category is required")
	}
	amount, err := ParseAmount(p.Amount)
	if err != nil {
		return Invalid(op, err.Error())
	}
	p.Amount = amount
	if p.Date.IsZero() {
		p.Date = now
	}
	return nil
}

// ParseAmount normalizes a positive decimal amount with at most two
// fractional digits, e.g. "12.5" becomes "12.50".
func ParseAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errAmount("Amount is required")
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasDot && (!isDigits(frac) || len(frac) == 0)) {
		return "", errAmount("Amount must be a decimal number")
	}
	if len(frac) > 2 {
		return "", errAmount("Amount can have at most two decimal places")
	}
	if len(strings.TrimLeft(whole, "0")) > 10 {
		return "", errAmount("Amount is too large")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if whole == "0" && frac == "00" {
		return "", errAmount("Amount must be greater than zero")
	}
	return whole + "." + frac, nil
}

type errAmount string

func (e errAmount) Error() string { return string(e) }

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
