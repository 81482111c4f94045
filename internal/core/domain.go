package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type (
	TransactionType string

	// Transaction is a single bank-statement line. Amount is signed:
	// negative for debits, positive for credits.
	Transaction struct {
		ID          string          `json:"id"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
	}
)

var (
	ErrEmptyID         = errors.New("empty transaction id")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownType     = errors.New("unknown transaction type")
	ErrDescriptionLong = errors.New("description too long (max 500 characters)")
)

// IsValid reports whether t is credit or debit.
func (t TransactionType) IsValid() bool {
	switch t {
	case Credit, Debit:
		return true
	default:
		return false
	}
}

// ParseTransactionType accepts any casing of "credit" and "debit".
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownType
	}
	return t, nil
}

// ParseDate parses a YYYY-MM-DD date. Failures are reported as *ParseError.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ParseError{Field: "date", Value: s, Err: err}
	}
	return d, nil
}

// Day returns the parsed transaction date.
func (t Transaction) Day() (time.Time, error) {
	return ParseDate(t.Date)
}

// Magnitude is the absolute value of the amount.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// IsCredit reports whether the transaction is incoming funds.
func (t Transaction) IsCredit() bool { return t.Type == Credit }

// IsDebit reports whether the transaction is outgoing funds.
func (t Transaction) IsDebit() bool { return t.Type == Debit }

// Validate checks the schema expected from a data supplier. The sign of
// Amount is not checked against Type.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if _, err := t.Day(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrUnknownType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 500 {
		return ErrDescriptionLong
	}
	return nil
}

// ValidateAll validates every transaction and reports the first failure
// together with the offending id.
func ValidateAll(txs []Transaction) error {
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return &SchemaError{Index: i, ID: t.ID, Err: err}
		}
	}
	return nil
}
