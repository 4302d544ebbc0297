package transaction

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/ledger"
)

type Handler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

func NewHandler(svc *ledger.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

type itemRequest struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	VariantName string          `json:"variantName,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type createTransactionRequest struct {
	Type          ledger.Type     `json:"type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Items         []itemRequest   `json:"items,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Type != ledger.TypeInflow && req.Type != ledger.TypeOutflow {
		http.Error(w, "type must be inflow or outflow", http.StatusBadRequest)
		return
	}

	items := make([]ledger.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			VariantName: it.VariantName,
			Price:       it.Price,
		}
	}
	if len(items) == 0 {
		items = nil
	}

	tx := h.svc.Add(ledger.AddParams{
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(tx); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{
		SearchTerm: r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("type"); s != "" {
		typ := ledger.Type(s)
		filter.Type = &typ
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	txs := h.svc.List(filter)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(txs); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
