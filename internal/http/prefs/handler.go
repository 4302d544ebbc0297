package prefs

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/settings"
)

type Handler struct {
	svc    *settings.Service
	logger *zap.Logger
}

func NewHandler(svc *settings.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/categories", h.getCategories)
	r.Put("/categories", h.putCategories)
	r.Get("/currency", h.getCurrency)
	r.Put("/currency", h.putCurrency)
	r.Get("/theme", h.getTheme)
	r.Put("/theme", h.putTheme)
}

func (h *Handler) respond(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) getCategories(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, h.svc.CategoryConfig())
}

func (h *Handler) putCategories(w http.ResponseWriter, r *http.Request) {
	var cfg settings.CategoryConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.svc.SetCategoryConfig(cfg) {
		http.Error(w, "settings could not be saved", http.StatusInternalServerError)
		return
	}

	h.respond(w, cfg)
}

type currencyBody struct {
	CurrencyCode string `json:"currencyCode"`
}

func (h *Handler) getCurrency(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, currencyBody{CurrencyCode: h.svc.CurrencyCode()})
}

func (h *Handler) putCurrency(w http.ResponseWriter, r *http.Request) {
	var body currencyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.svc.SetCurrencyCode(body.CurrencyCode) {
		http.Error(w, "unknown currency code", http.StatusBadRequest)
		return
	}

	h.respond(w, currencyBody{CurrencyCode: body.CurrencyCode})
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *Handler) getTheme(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, themeBody{Theme: h.svc.Theme()})
}

func (h *Handler) putTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.svc.SetTheme(body.Theme) {
		http.Error(w, "theme must be light or dark", http.StatusBadRequest)
		return
	}

	h.respond(w, themeBody{Theme: body.Theme})
}
