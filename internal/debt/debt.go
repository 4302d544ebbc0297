// Package debt is the receivable/payable ledger ("libreta de deudas").
//
// Error convention: unlike inventory, lookup failures here are returned as
// errors (ErrNotFound, ErrAlreadyPaid). Callers catch them at the UI
// boundary. Create and Delete stay quiet, matching the rest of the app.
package debt

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type says which side of the ledger the entry sits on.
type Type string

const (
	TypeReceivable Type = "receivable" // money owed to the business
	TypePayable    Type = "payable"    // money the business owes
)

// Status is the entry's lifecycle state. paid is terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

var (
	ErrNotFound    = errors.New("debt not found")
	ErrAlreadyPaid = errors.New("debt is already marked as paid")

	// ErrSettlementIncomplete means the settlement transaction was written
	// to the ledger but the debt record could not be updated afterwards.
	// There is no transaction delete in this system, so no rollback is
	// attempted; the operator reconciles manually.
	ErrSettlementIncomplete = errors.New("settlement transaction created but debt update failed")
)

// Entry is a single receivable or payable record.
type Entry struct {
	ID                  string          `json:"id"`
	Type                Type            `json:"type"`
	Counterparty        string          `json:"counterparty"`
	Amount              decimal.Decimal `json:"amount"`
	Description         string          `json:"description"`
	DueDate             time.Time       `json:"dueDate"`
	Status              Status          `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
	PaidAt              *time.Time      `json:"paidAt,omitempty"`
	LinkedTransactionID string          `json:"linkedTransactionId,omitempty"`
	Category            string          `json:"category,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// projected returns the entry as reported to readers: a stored pending
// entry whose due date has passed reads as overdue. The stored record is
// not touched; the transition is derived at read time.
func (e Entry) projected(now time.Time) Entry {
	if e.Status == StatusPending && e.DueDate.Before(now) {
		e.Status = StatusOverdue
	}

	return e
}

// Filters narrows GetAll results. Status filtering applies to the
// projected status, so filtering for overdue includes entries stored as
// pending whose due date has passed.
type Filters struct {
	Type       *Type
	Status     *Status
	SearchTerm string
}

func (f Filters) matches(e Entry) bool {
	if f.Type != nil && e.Type != *f.Type {
		return false
	}

	if f.Status != nil && e.Status != *f.Status {
		return false
	}

	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(e.Counterparty), term) &&
			!strings.Contains(strings.ToLower(e.Description), term) &&
			!strings.Contains(strings.ToLower(e.Category), term) {
			return false
		}
	}

	return true
}

// Stats aggregates the projected (overdue-corrected) set. "Pending" sums
// cover everything not yet paid, i.e. both pending and overdue.
type Stats struct {
	TotalReceivablesPending decimal.Decimal `json:"totalReceivablesPending"`
	TotalPayablesPending    decimal.Decimal `json:"totalPayablesPending"`
	NetBalance              decimal.Decimal `json:"netBalance"`
	OverdueReceivables      int             `json:"overdueReceivables"`
	OverduePayables         int             `json:"overduePayables"`
	TotalPendingDebts       int             `json:"totalPendingDebts"`
}
