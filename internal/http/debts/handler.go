package debts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/debt"
)

type Handler struct {
	svc    *debt.Service
	logger *zap.Logger
}

func NewHandler(svc *debt.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/pay", h.markAsPaid)
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// parseDate accepts a bare date or a full timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, s)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := debt.Filters{SearchTerm: q.Get("search")}
	if s := q.Get("type"); s != "" {
		typ := debt.Type(s)
		filters.Type = &typ
	}
	if s := q.Get("status"); s != "" {
		status := debt.Status(s)
		filters.Status = &status
	}

	h.respond(w, http.StatusOK, h.svc.GetAll(filters))
}

type createDebtRequest struct {
	Type         debt.Type       `json:"type"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	DueDate      string          `json:"dueDate"`
	Category     string          `json:"category,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Type != debt.TypeReceivable && req.Type != debt.TypePayable {
		http.Error(w, "type must be receivable or payable", http.StatusBadRequest)
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		http.Error(w, "invalid dueDate", http.StatusBadRequest)
		return
	}

	created := h.svc.Create(debt.CreateParams{
		Type:         req.Type,
		Counterparty: req.Counterparty,
		Amount:       req.Amount,
		Description:  req.Description,
		DueDate:      dueDate,
		Category:     req.Category,
		Notes:        req.Notes,
	})

	h.respond(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	entry := h.svc.GetByID(chi.URLParam(r, "id"))
	if entry == nil {
		http.Error(w, "debt not found", http.StatusNotFound)
		return
	}

	h.respond(w, http.StatusOK, entry)
}

type updateDebtRequest struct {
	Type         *debt.Type       `json:"type,omitempty"`
	Counterparty *string          `json:"counterparty,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Description  *string          `json:"description,omitempty"`
	DueDate      *string          `json:"dueDate,omitempty"`
	Status       *debt.Status     `json:"status,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := debt.UpdateParams{
		Type:         req.Type,
		Counterparty: req.Counterparty,
		Amount:       req.Amount,
		Description:  req.Description,
		Status:       req.Status,
		Category:     req.Category,
		Notes:        req.Notes,
	}

	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			http.Error(w, "invalid dueDate", http.StatusBadRequest)
			return
		}
		params.DueDate = &dueDate
	}

	updated, err := h.svc.Update(chi.URLParam(r, "id"), params)
	if err != nil {
		if errors.Is(err, debt.ErrNotFound) {
			http.Error(w, "debt not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.respond(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	h.svc.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAsPaid(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.svc.MarkAsPaid(chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, debt.ErrNotFound):
			http.Error(w, "debt not found", http.StatusNotFound)
		case errors.Is(err, debt.ErrAlreadyPaid):
			http.Error(w, "debt is already paid", http.StatusConflict)
		case errors.Is(err, debt.ErrSettlementIncomplete):
			// The ledger transaction exists but the debt record does not
			// reflect it; the body carries the detail for reconciliation.
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	h.respond(w, http.StatusOK, map[string]any{
		"debt":        settlement.Debt,
		"transaction": settlement.Transaction,
	})
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, h.svc.GetStats())
}
