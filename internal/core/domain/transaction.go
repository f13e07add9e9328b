package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	Expense     TransactionKind = "expense"
	Income      TransactionKind = "income"
	IncomeLoan  TransactionKind = "income-loan"
	ExpenseLoan TransactionKind = "expense-loan"
)

// Transaction is the record extracted from a free-text message. Every field is optional: the model is told to
// emit null instead of guessing, and a record with nothing but nulls is still a valid result.
type Transaction struct {
	Kind     *TransactionKind    `json:"type"`
	Category *string             `json:"category"`
	Item     *string             `json:"item"`
	Amount   decimal.NullDecimal `json:"amount"`
	Currency *string             `json:"currency"`
	Date     *time.Time          `json:"date"`
	Person   *string             `json:"person"`
}

const null = "null"

// String renders the transaction as one "field: value" line per field, in schema order.
func (t Transaction) String() string {
	var b strings.Builder

	line := func(field, value string) {
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	kind := null
	if t.Kind != nil {
		kind = string(*t.Kind)
	}
	line("type", kind)
	line("category", stringOrNull(t.Category))
	line("item", stringOrNull(t.Item))
	line("amount", formatAmount(t.Amount))
	line("currency", stringOrNull(t.Currency))

	date := null
	if t.Date != nil {
		date = t.Date.UTC().Format(time.RFC3339)
	}
	line("date", date)
	line("person", stringOrNull(t.Person))

	return b.String()
}

func stringOrNull(s *string) string {
	if s == nil {
		return null
	}
	return *s
}

// formatAmount keeps the scale the model sent, so 5.0 stays "5.0" rather than "5".
func formatAmount(a decimal.NullDecimal) string {
	if !a.Valid {
		return null
	}

	if exp := a.Decimal.Exponent(); exp < 0 {
		return a.Decimal.StringFixed(-exp)
	}

	return a.Decimal.String()
}
