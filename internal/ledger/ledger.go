// Package ledger is the append-only log of monetary events. Transactions
// are immutable once appended: there is no update or delete operation.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type says which way the money moved.
type Type string

const (
	TypeInflow  Type = "inflow"
	TypeOutflow Type = "outflow"
)

// Item is a line item snapshot taken at the time of the transaction. The
// product reference is weak: the product may be renamed or deleted later
// without touching the ledger.
type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	VariantName string          `json:"variantName,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Transaction is a single monetary event.
type Transaction struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Items         []Item          `json:"items,omitempty"`
}

// ListFilter narrows List results. The date range is inclusive; EndDate is
// expanded to the end of its day.
type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *Type
	SearchTerm string
}

func (f ListFilter) matches(tx Transaction) bool {
	if f.StartDate != nil && tx.Timestamp.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil {
		end := endOfDay(*f.EndDate)
		if tx.Timestamp.After(end) {
			return false
		}
	}

	if f.Type != nil && tx.Type != *f.Type {
		return false
	}

	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.Category), term) {
			return false
		}
	}

	return true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_999_999, t.Location())
}
