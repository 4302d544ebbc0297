package debt_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/debt"
	"github.com/tiendita/caja/internal/ledger"
	"github.com/tiendita/caja/internal/notify"
	"github.com/tiendita/caja/internal/storage"
)

type fixture struct {
	svc     *debt.Service
	ledger  *ledger.Service
	backend *storage.MemoryBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := storage.NewMemoryBackend()
	store := storage.New(backend, storage.NewCache(time.Minute), apperror.NewBus(nil), notify.NewBroadcaster(), nil)
	ledgerSvc := ledger.NewService(store)

	return &fixture{
		svc:     debt.NewService(store, ledgerSvc),
		ledger:  ledgerSvc,
		backend: backend,
	}
}

// seed writes entries straight to the backend so tests control the stored
// status and dates independently of the service's creation logic.
func seed(t *testing.T, backend *storage.MemoryBackend, entries []debt.Entry) {
	t.Helper()

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, backend.Set(storage.KeyDebts, string(data)))
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysAgo(n int) time.Time  { return time.Now().UTC().AddDate(0, 0, -n) }
func daysFrom(n int) time.Time { return time.Now().UTC().AddDate(0, 0, n) }

func TestService_Create_InitialStatus(t *testing.T) {
	f := newFixture(t)

	future := f.svc.Create(debt.CreateParams{
		Type:         debt.TypeReceivable,
		Counterparty: "  María López  ",
		Amount:       amount("135.00"),
		Description:  " Pedido mayorista ",
		DueDate:      daysFrom(7),
	})
	assert.Equal(t, debt.StatusPending, future.Status)
	assert.Equal(t, "María López", future.Counterparty)
	assert.Equal(t, "Pedido mayorista", future.Description)

	past := f.svc.Create(debt.CreateParams{
		Type:         debt.TypePayable,
		Counterparty: "Proveedor",
		Amount:       amount("680.00"),
		Description:  "Factura tela",
		DueDate:      daysAgo(3),
	})
	assert.Equal(t, debt.StatusOverdue, past.Status, "born past due starts overdue")
}

func TestService_GetAll_OverdueProjection(t *testing.T) {
	f := newFixture(t)
	seed(t, f.backend, []debt.Entry{
		{
			ID: "d1", Type: debt.TypeReceivable, Counterparty: "María",
			Amount: amount("50"), DueDate: daysAgo(2),
			Status: debt.StatusPending, CreatedAt: daysAgo(10),
		},
	})

	overdue := debt.StatusOverdue
	got := f.svc.GetAll(debt.Filters{Status: &overdue})

	require.Len(t, got, 1, "filter applies to the projected status")
	assert.Equal(t, debt.StatusOverdue, got[0].Status)

	// The stored record stays pending: the transition is read-time only.
	raw, err := f.backend.Get(storage.KeyDebts)
	require.NoError(t, err)

	var persisted []debt.Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, debt.StatusPending, persisted[0].Status)
}

func TestService_GetByID_AppliesProjection(t *testing.T) {
	// The browser original skipped the projection on single reads, so
	// GetDebtById could report a stale pending status. Both read paths
	// agree here; this is a deliberate behavior change.
	f := newFixture(t)
	seed(t, f.backend, []debt.Entry{
		{ID: "d1", Type: debt.TypeReceivable, Amount: amount("50"), DueDate: daysAgo(2), Status: debt.StatusPending, CreatedAt: daysAgo(10)},
	})

	got := f.svc.GetByID("d1")

	require.NotNil(t, got)
	assert.Equal(t, debt.StatusOverdue, got.Status)
}

func TestService_GetAll_FiltersAndOrder(t *testing.T) {
	f := newFixture(t)
	seed(t, f.backend, []debt.Entry{
		{ID: "d1", Type: debt.TypeReceivable, Counterparty: "María", Description: "Pedido", Status: debt.StatusPending, DueDate: daysFrom(5), CreatedAt: daysAgo(3)},
		{ID: "d2", Type: debt.TypePayable, Counterparty: "Proveedor", Description: "Tela", Status: debt.StatusPending, DueDate: daysFrom(5), CreatedAt: daysAgo(2)},
		{ID: "d3", Type: debt.TypeReceivable, Counterparty: "Pedro", Description: "Encargo", Status: debt.StatusPaid, DueDate: daysAgo(5), CreatedAt: daysAgo(1)},
	})

	receivable := debt.TypeReceivable
	byType := f.svc.GetAll(debt.Filters{Type: &receivable})
	require.Len(t, byType, 2)
	assert.Equal(t, "d3", byType[0].ID, "newest first")

	bySearch := f.svc.GetAll(debt.Filters{SearchTerm: "maría"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, "d1", bySearch[0].ID)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)

	created := f.svc.Create(debt.CreateParams{
		Type: debt.TypeReceivable, Counterparty: "María",
		Amount: amount("100"), Description: "Pedido", DueDate: daysFrom(5),
	})

	// Moving the due date into the past while pending recomputes overdue.
	past := daysAgo(1)
	updated, err := f.svc.Update(created.ID, debt.UpdateParams{DueDate: &past})
	require.NoError(t, err)
	assert.Equal(t, debt.StatusOverdue, updated.Status)

	// Empty trimmed optional fields clear; empty required fields keep.
	blank := "   "
	notes := " al contado "
	updated, err = f.svc.Update(created.ID, debt.UpdateParams{Counterparty: &blank, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "María", updated.Counterparty)
	assert.Equal(t, "al contado", updated.Notes)
}

func TestService_Update_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update("missing", debt.UpdateParams{})

	assert.ErrorIs(t, err, debt.ErrNotFound)
}

func TestService_Delete_Idempotent(t *testing.T) {
	f := newFixture(t)

	created := f.svc.Create(debt.CreateParams{
		Type: debt.TypeReceivable, Counterparty: "María",
		Amount: amount("100"), Description: "Pedido", DueDate: daysFrom(5),
	})

	f.svc.Delete(created.ID)
	assert.Nil(t, f.svc.GetByID(created.ID))

	// Second delete is a silent no-op.
	assert.NotPanics(t, func() { f.svc.Delete(created.ID) })
}

func TestService_MarkAsPaid(t *testing.T) {
	f := newFixture(t)

	created := f.svc.Create(debt.CreateParams{
		Type:         debt.TypeReceivable,
		Counterparty: "María López",
		Amount:       amount("135.00"),
		Description:  "Pedido mayorista",
		DueDate:      daysFrom(7),
		Category:     "Ventas",
	})

	settlement, err := f.svc.MarkAsPaid(created.ID)
	require.NoError(t, err)

	// Exactly one linked inflow for the full amount.
	txs := f.ledger.List(ledger.ListFilter{})
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TypeInflow, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(amount("135.00")))
	assert.Equal(t, "Cobro: María López - Pedido mayorista", txs[0].Description)
	assert.Equal(t, "Ventas", txs[0].Category)

	assert.Equal(t, debt.StatusPaid, settlement.Debt.Status)
	assert.Equal(t, txs[0].ID, settlement.Debt.LinkedTransactionID)
	require.NotNil(t, settlement.Debt.PaidAt)
	assert.False(t, settlement.Debt.PaidAt.Before(settlement.Debt.CreatedAt))
}

func TestService_MarkAsPaid_PayableCreatesOutflow(t *testing.T) {
	f := newFixture(t)

	created := f.svc.Create(debt.CreateParams{
		Type:         debt.TypePayable,
		Counterparty: "Proveedor",
		Amount:       amount("680.00"),
		Description:  "Factura tela",
		DueDate:      daysAgo(3),
	})

	settlement, err := f.svc.MarkAsPaid(created.ID)
	require.NoError(t, err)

	assert.Equal(t, ledger.TypeOutflow, settlement.Transaction.Type)
	assert.Equal(t, "Pago: Proveedor - Factura tela", settlement.Transaction.Description)
}

func TestService_MarkAsPaid_Terminal(t *testing.T) {
	f := newFixture(t)

	created := f.svc.Create(debt.CreateParams{
		Type: debt.TypeReceivable, Counterparty: "María",
		Amount: amount("100"), Description: "Pedido", DueDate: daysFrom(5),
	})

	_, err := f.svc.MarkAsPaid(created.ID)
	require.NoError(t, err)

	_, err = f.svc.MarkAsPaid(created.ID)
	assert.ErrorIs(t, err, debt.ErrAlreadyPaid)

	_, err = f.svc.MarkAsPaid("missing")
	assert.ErrorIs(t, err, debt.ErrNotFound)
}

func TestService_MarkAsPaid_DebtWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := storage.NewMockBackend(ctrl)
	store := storage.New(backend, storage.NewCache(time.Minute), apperror.NewBus(nil), notify.NewBroadcaster(), nil)
	svc := debt.NewService(store, ledger.NewService(store))

	stored, err := json.Marshal([]debt.Entry{
		{ID: "d1", Type: debt.TypeReceivable, Counterparty: "María", Description: "Pedido", Amount: amount("100"), Status: debt.StatusPending, DueDate: daysFrom(5), CreatedAt: daysAgo(1)},
	})
	require.NoError(t, err)

	backend.EXPECT().Get(storage.KeyDebts).Return(string(stored), nil).AnyTimes()
	backend.EXPECT().Get(storage.KeyTransactions).Return("", nil).AnyTimes()
	// The ledger write lands; the debt write does not.
	backend.EXPECT().Set(storage.KeyTransactions, gomock.Any()).Return(nil)
	backend.EXPECT().Set(storage.KeyDebts, gomock.Any()).Return(storage.ErrQuotaExceeded)

	_, err = svc.MarkAsPaid("d1")

	require.Error(t, err)
	assert.ErrorIs(t, err, debt.ErrSettlementIncomplete)
	assert.Contains(t, err.Error(), "transaction ", "names the created transaction for manual reconciliation")
}

func TestService_GetStats(t *testing.T) {
	f := newFixture(t)
	seed(t, f.backend, []debt.Entry{
		{ID: "r1", Type: debt.TypeReceivable, Amount: amount("100.00"), Status: debt.StatusPending, DueDate: daysFrom(5), CreatedAt: daysAgo(4)},
		{ID: "r2", Type: debt.TypeReceivable, Amount: amount("35.00"), Status: debt.StatusPending, DueDate: daysAgo(2), CreatedAt: daysAgo(4)},
		{ID: "p1", Type: debt.TypePayable, Amount: amount("60.00"), Status: debt.StatusOverdue, DueDate: daysAgo(9), CreatedAt: daysAgo(4)},
		{ID: "r3", Type: debt.TypeReceivable, Amount: amount("400.00"), Status: debt.StatusPaid, DueDate: daysAgo(9), CreatedAt: daysAgo(4)},
	})

	stats := f.svc.GetStats()

	assert.True(t, stats.TotalReceivablesPending.Equal(amount("135.00")), "pending plus projected overdue")
	assert.True(t, stats.TotalPayablesPending.Equal(amount("60.00")))
	assert.True(t, stats.NetBalance.Equal(amount("75.00")))
	assert.Equal(t, 1, stats.OverdueReceivables, "r2 is overdue by projection")
	assert.Equal(t, 1, stats.OverduePayables)
	assert.Equal(t, 3, stats.TotalPendingDebts)
}

func TestService_Subscribe(t *testing.T) {
	f := newFixture(t)

	var calls int
	unsubscribe := f.svc.Subscribe(func([]debt.Entry) { calls++ })
	require.Equal(t, 1, calls, "immediate invocation")

	f.svc.Create(debt.CreateParams{
		Type: debt.TypeReceivable, Counterparty: "María",
		Amount: amount("100"), Description: "Pedido", DueDate: daysFrom(5),
	})
	assert.Equal(t, 2, calls)

	unsubscribe()
	f.svc.Delete("whatever")
	assert.Equal(t, 2, calls)
}
