package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/debt"
	cajaHttp "github.com/tiendita/caja/internal/http"
	debtsHandler "github.com/tiendita/caja/internal/http/debts"
	eventsHandler "github.com/tiendita/caja/internal/http/events"
	prefsHandler "github.com/tiendita/caja/internal/http/prefs"
	productHandler "github.com/tiendita/caja/internal/http/product"
	txHandler "github.com/tiendita/caja/internal/http/transaction"
	"github.com/tiendita/caja/internal/inventory"
	"github.com/tiendita/caja/internal/ledger"
	"github.com/tiendita/caja/internal/notify"
	"github.com/tiendita/caja/internal/observability"
	"github.com/tiendita/caja/internal/settings"
	"github.com/tiendita/caja/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	bus := apperror.NewBus(logger)
	changes := notify.NewBroadcaster()
	store := storage.New(storage.NewMemoryBackend(), storage.NewCache(time.Minute), bus, changes, nil)

	ledgerSvc := ledger.NewService(store)
	inventorySvc := inventory.NewService(store, bus)
	debtSvc := debt.NewService(store, ledgerSvc)
	settingsSvc := settings.NewService(store, bus)

	return cajaHttp.New(logger, observability.NewMetrics(), nil,
		txHandler.NewHandler(ledgerSvc, logger),
		productHandler.NewHandler(inventorySvc, logger),
		debtsHandler.NewHandler(debtSvc, logger),
		prefsHandler.NewHandler(settingsSvc, logger),
		eventsHandler.NewHandler(changes, logger),
	)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProductLifecycle(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/products", `{
		"name": "Camiseta",
		"price": "25.00",
		"hasVariants": true,
		"variants": [{"name": "M", "quantity": 5}, {"name": "L", "quantity": 3}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created inventory.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 8, created.TotalQuantity)

	rec = do(t, router, http.MethodPatch,
		"/api/v1/products/"+created.ID+"/variants/"+created.Variants[0].ID+"/quantity",
		`{"quantity": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated inventory.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 4, updated.TotalQuantity)

	rec = do(t, router, http.MethodDelete, "/api/v1/products/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProductValidation(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/products", `{"name": "  ", "price": "10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/products", `{"name": "Gorra", "price": "-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DebtSettlement(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/debts", `{
		"type": "receivable",
		"counterparty": "María López",
		"amount": "135.00",
		"description": "Pedido mayorista",
		"dueDate": "2030-01-15"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created debt.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, debt.StatusPending, created.Status)

	rec = do(t, router, http.MethodPost, "/api/v1/debts/"+created.ID+"/pay", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Settling twice conflicts.
	rec = do(t, router, http.MethodPost, "/api/v1/debts/"+created.ID+"/pay", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The settlement shows up in the transaction ledger.
	rec = do(t, router, http.MethodGet, "/api/v1/transactions?type=inflow", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var txs []ledger.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Contains(t, txs[0].Description, "María López")
}

func TestRouter_Settings(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPut, "/api/v1/settings/currency", `{"currencyCode": "MXN"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/settings/currency", "")
	assert.JSONEq(t, `{"currencyCode": "MXN"}`, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/api/v1/settings/currency", `{"currencyCode": "NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/v1/settings/theme", `{"theme": "dark"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
