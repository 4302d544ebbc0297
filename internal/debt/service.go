package debt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendita/caja/internal/ident"
	"github.com/tiendita/caja/internal/ledger"
	"github.com/tiendita/caja/internal/storage"
)

// Service owns the debts collection. Settling a debt also writes to the
// transaction ledger, the one cross-entity operation in the system.
type Service struct {
	mu     sync.Mutex
	store  *storage.Store
	ledger *ledger.Service
	now    func() time.Time
}

func NewService(store *storage.Store, ledgerSvc *ledger.Service) *Service {
	return &Service{
		store:  store,
		ledger: ledgerSvc,
		now:    time.Now,
	}
}

func (s *Service) load() []Entry {
	return storage.LoadCollection[Entry](s.store, storage.KeyDebts)
}

func (s *Service) save(debts []Entry) bool {
	return storage.SaveCollection(s.store, storage.KeyDebts, debts)
}

// GetAll applies the overdue projection first, then the filters against
// the projected statuses, and returns the result newest first.
func (s *Service) GetAll(filters Filters) []Entry {
	now := s.now()

	out := []Entry{}
	for _, e := range s.load() {
		p := e.projected(now)
		if filters.matches(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

// GetByID returns the entry with the overdue projection applied, or nil.
// The original app skipped the projection on single reads, so a stale
// pending status could leak through this path; here both read paths agree.
func (s *Service) GetByID(id string) *Entry {
	for _, e := range s.load() {
		if e.ID == id {
			p := e.projected(s.now())
			return &p
		}
	}

	return nil
}

// CreateParams describes a new debt entry.
type CreateParams struct {
	Type         Type
	Counterparty string
	Amount       decimal.Decimal
	Description  string
	DueDate      time.Time
	Category     string
	Notes        string
}

// Create trims string fields and persists a new entry. The initial status
// compares the due date against now: an entry born past due starts as
// overdue rather than pending.
func (s *Service) Create(params CreateParams) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := StatusPending
	if params.DueDate.Before(s.now()) {
		status = StatusOverdue
	}

	entry := Entry{
		ID:           ident.New(),
		Type:         params.Type,
		Counterparty: strings.TrimSpace(params.Counterparty),
		Amount:       params.Amount,
		Description:  strings.TrimSpace(params.Description),
		DueDate:      params.DueDate,
		Status:       status,
		CreatedAt:    s.now().UTC(),
		Category:     strings.TrimSpace(params.Category),
		Notes:        strings.TrimSpace(params.Notes),
	}

	debts := append(s.load(), entry)
	s.save(debts)

	return &entry
}

// UpdateParams is a partial update. ID, CreatedAt, PaidAt and the
// transaction link are never updatable; the paid transition only happens
// through MarkAsPaid.
type UpdateParams struct {
	Type         *Type
	Counterparty *string
	Amount       *decimal.Decimal
	Description  *string
	DueDate      *time.Time
	Status       *Status
	Category     *string
	Notes        *string
}

// Update merges the partial update. Counterparty and description keep
// their current value when the update trims to empty; category and notes
// are cleared instead. When the due date changes while the merged status
// is pending, pending/overdue is recomputed against now. Returns
// ErrNotFound for an unknown id.
func (s *Service) Update(id string, params UpdateParams) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debts := append([]Entry(nil), s.load()...)

	idx := indexOf(debts, id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	e := debts[idx]

	if params.Type != nil {
		e.Type = *params.Type
	}
	if params.Counterparty != nil {
		if v := strings.TrimSpace(*params.Counterparty); v != "" {
			e.Counterparty = v
		}
	}
	if params.Amount != nil {
		e.Amount = *params.Amount
	}
	if params.Description != nil {
		if v := strings.TrimSpace(*params.Description); v != "" {
			e.Description = v
		}
	}
	if params.Status != nil {
		e.Status = *params.Status
	}
	if params.Category != nil {
		e.Category = strings.TrimSpace(*params.Category)
	}
	if params.Notes != nil {
		e.Notes = strings.TrimSpace(*params.Notes)
	}
	if params.DueDate != nil {
		e.DueDate = *params.DueDate

		if e.Status == StatusPending && e.DueDate.Before(s.now()) {
			e.Status = StatusOverdue
		}
	}

	debts[idx] = e
	s.save(debts)

	return &e, nil
}

// Delete removes the entry. Deleting an unknown id is a silent no-op.
func (s *Service) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debts := s.load()

	remaining := make([]Entry, 0, len(debts))
	for _, e := range debts {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}

	s.save(remaining)
}

// Settlement is the result of MarkAsPaid: the updated debt and the ledger
// transaction that settles it.
type Settlement struct {
	Debt        Entry
	Transaction ledger.Transaction
}

// MarkAsPaid settles a debt: it appends a ledger transaction (inflow for a
// receivable, outflow for a payable) and then marks the entry paid,
// linking it to the new transaction. Paid is terminal: settling twice
// returns ErrAlreadyPaid.
//
// The two writes land in different collections and are not atomic. The
// transaction is written first; if the debt write then fails the caller
// gets ErrSettlementIncomplete naming the created transaction, so the
// books can be reconciled by hand.
func (s *Service) MarkAsPaid(id string) (*Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debts := append([]Entry(nil), s.load()...)

	idx := indexOf(debts, id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	e := debts[idx]
	if e.Status == StatusPaid {
		return nil, ErrAlreadyPaid
	}

	txType := ledger.TypeOutflow
	description := fmt.Sprintf("Pago: %s - %s", e.Counterparty, e.Description)
	if e.Type == TypeReceivable {
		txType = ledger.TypeInflow
		description = fmt.Sprintf("Cobro: %s - %s", e.Counterparty, e.Description)
	}

	tx := s.ledger.Add(ledger.AddParams{
		Type:        txType,
		Description: description,
		Amount:      e.Amount,
		Category:    e.Category,
	})

	paidAt := s.now().UTC()
	e.Status = StatusPaid
	e.PaidAt = &paidAt
	e.LinkedTransactionID = tx.ID

	debts[idx] = e
	if !s.save(debts) {
		return nil, fmt.Errorf("%w (transaction %s)", ErrSettlementIncomplete, tx.ID)
	}

	return &Settlement{Debt: e, Transaction: *tx}, nil
}

// GetStats aggregates over the projected set.
func (s *Service) GetStats() Stats {
	stats := Stats{
		TotalReceivablesPending: decimal.Zero,
		TotalPayablesPending:    decimal.Zero,
	}

	for _, e := range s.GetAll(Filters{}) {
		unpaid := e.Status == StatusPending || e.Status == StatusOverdue
		if unpaid {
			stats.TotalPendingDebts++
		}

		switch e.Type {
		case TypeReceivable:
			if unpaid {
				stats.TotalReceivablesPending = stats.TotalReceivablesPending.Add(e.Amount)
			}
			if e.Status == StatusOverdue {
				stats.OverdueReceivables++
			}
		case TypePayable:
			if unpaid {
				stats.TotalPayablesPending = stats.TotalPayablesPending.Add(e.Amount)
			}
			if e.Status == StatusOverdue {
				stats.OverduePayables++
			}
		}
	}

	stats.NetBalance = stats.TotalReceivablesPending.Sub(stats.TotalPayablesPending)

	return stats
}

// Subscribe invokes fn immediately with the projected collection and again
// on every change to the debts key.
func (s *Service) Subscribe(fn func([]Entry)) func() {
	fn(s.GetAll(Filters{}))

	return s.store.Changes().Subscribe(storage.KeyDebts, func() {
		fn(s.GetAll(Filters{}))
	})
}

func indexOf(debts []Entry, id string) int {
	for i, e := range debts {
		if e.ID == id {
			return i
		}
	}

	return -1
}
