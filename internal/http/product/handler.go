package product

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/inventory"
)

// maxImageBytes bounds the data-URI product image accepted at this
// boundary; the storage layer itself does not enforce it.
const maxImageBytes = 2 << 20

type Handler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

func NewHandler(svc *inventory.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/variants/{variantID}/quantity", h.updateVariantQuantity)
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := inventory.Filters{
		SearchTerm: q.Get("search"),
		Category:   q.Get("category"),
		LowStock:   q.Get("low_stock") == "true",
	}

	h.respond(w, http.StatusOK, h.svc.GetAll(filters))
}

type variantRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku,omitempty"`
}

type createProductRequest struct {
	Name               string           `json:"name"`
	Price              decimal.Decimal  `json:"price"`
	Description        string           `json:"description,omitempty"`
	Image              string           `json:"image,omitempty"`
	Category           string           `json:"category,omitempty"`
	HasVariants        bool             `json:"hasVariants"`
	Variants           []variantRequest `json:"variants,omitempty"`
	StandaloneQuantity int              `json:"standaloneQuantity"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Price.IsNegative() {
		http.Error(w, "price must not be negative", http.StatusBadRequest)
		return
	}
	if len(req.Image) > maxImageBytes {
		http.Error(w, "image too large", http.StatusBadRequest)
		return
	}

	variants := make([]inventory.VariantParams, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = inventory.VariantParams{Name: v.Name, Quantity: v.Quantity, SKU: v.SKU}
	}

	created := h.svc.Create(inventory.CreateParams{
		Name:               req.Name,
		Price:              req.Price,
		Description:        req.Description,
		Image:              req.Image,
		Category:           req.Category,
		HasVariants:        req.HasVariants,
		Variants:           variants,
		StandaloneQuantity: req.StandaloneQuantity,
	})
	if created == nil {
		http.Error(w, "product could not be saved", http.StatusInternalServerError)
		return
	}

	h.respond(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p := h.svc.GetByID(chi.URLParam(r, "id"))
	if p == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	h.respond(w, http.StatusOK, p)
}

type updateProductRequest struct {
	Name               *string              `json:"name,omitempty"`
	Description        *string              `json:"description,omitempty"`
	Image              *string              `json:"image,omitempty"`
	Price              *decimal.Decimal     `json:"price,omitempty"`
	Category           *string              `json:"category,omitempty"`
	HasVariants        *bool                `json:"hasVariants,omitempty"`
	Variants           *[]inventory.Variant `json:"variants,omitempty"`
	StandaloneQuantity *int                 `json:"standaloneQuantity,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Image != nil && len(*req.Image) > maxImageBytes {
		http.Error(w, "image too large", http.StatusBadRequest)
		return
	}

	if h.svc.GetByID(id) == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	updated := h.svc.Update(id, inventory.UpdateParams{
		Name:               req.Name,
		Description:        req.Description,
		Image:              req.Image,
		Price:              req.Price,
		Category:           req.Category,
		HasVariants:        req.HasVariants,
		Variants:           req.Variants,
		StandaloneQuantity: req.StandaloneQuantity,
	})
	if updated == nil {
		http.Error(w, "product could not be saved", http.StatusInternalServerError)
		return
	}

	h.respond(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Delete(chi.URLParam(r, "id")) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateVariantQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateVariantQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateVariantQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Quantity < 0 {
		http.Error(w, "quantity must not be negative", http.StatusBadRequest)
		return
	}

	updated := h.svc.UpdateVariantQuantity(chi.URLParam(r, "id"), chi.URLParam(r, "variantID"), req.Quantity)
	if updated == nil {
		http.Error(w, "product or variant not found", http.StatusNotFound)
		return
	}

	h.respond(w, http.StatusOK, updated)
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, h.svc.Categories())
}
