package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendita/caja/internal/ident"
	"github.com/tiendita/caja/internal/storage"
)

// Service owns the transactions collection.
//
// It performs no validation: callers (forms, the debt service) are trusted
// to supply a consistent amount and line items. Persistence failures
// surface on the error bus only.
type Service struct {
	mu    sync.Mutex
	store *storage.Store
}

func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// AddParams describes the event to append.
type AddParams struct {
	Type          Type
	Description   string
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	Items         []Item
}

// Add appends a new transaction with a generated id and the current
// timestamp, persists the collection, and broadcasts the change.
func (s *Service) Add(params AddParams) *Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := storage.LoadCollection[Transaction](s.store, storage.KeyTransactions)

	tx := Transaction{
		ID:            ident.New(),
		Type:          params.Type,
		Description:   params.Description,
		Category:      params.Category,
		PaymentMethod: params.PaymentMethod,
		Amount:        params.Amount,
		Timestamp:     time.Now().UTC(),
		Items:         params.Items,
	}

	txs = append(txs, tx)
	storage.SaveCollection(s.store, storage.KeyTransactions, txs)

	return &tx
}

// List returns the filtered collection, most recent first. There is no
// pagination; the full filtered set comes back.
func (s *Service) List(filter ListFilter) []Transaction {
	txs := storage.LoadCollection[Transaction](s.store, storage.KeyTransactions)

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if filter.matches(tx) {
			out = append(out, tx)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out
}

// Subscribe invokes fn immediately with the current collection and again
// whenever the transactions key changes.
func (s *Service) Subscribe(fn func([]Transaction)) func() {
	fn(s.List(ListFilter{}))

	return s.store.Changes().Subscribe(storage.KeyTransactions, func() {
		fn(s.List(ListFilter{}))
	})
}
