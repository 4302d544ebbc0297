// Package settings persists the small app-level preferences: the category
// configuration, the display currency code, and the theme. Currency and
// theme are stored as bare strings, not JSON documents.
package settings

import (
	"github.com/Rhymond/go-money"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/storage"
)

const DefaultCurrencyCode = "USD"

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// CategoryConfig controls whether transaction categorization is on and
// which categories the sale/expense forms offer.
type CategoryConfig struct {
	Enabled           bool     `json:"enabled"`
	InflowCategories  []string `json:"inflowCategories"`
	OutflowCategories []string `json:"outflowCategories"`
}

// Service owns the settings keys.
type Service struct {
	store *storage.Store
	bus   apperror.Reporter
}

func NewService(store *storage.Store, bus apperror.Reporter) *Service {
	return &Service{store: store, bus: bus}
}

// CategoryConfig returns the stored configuration, or a disabled default.
func (s *Service) CategoryConfig() CategoryConfig {
	cfg, ok := storage.LoadValue[CategoryConfig](s.store, storage.KeyCategoryConfig)
	if !ok {
		return CategoryConfig{
			InflowCategories:  []string{},
			OutflowCategories: []string{},
		}
	}

	return cfg
}

func (s *Service) SetCategoryConfig(cfg CategoryConfig) bool {
	return storage.SaveValue(s.store, storage.KeyCategoryConfig, cfg)
}

// CurrencyCode returns the stored ISO currency code, defaulting to USD.
func (s *Service) CurrencyCode() string {
	code, ok := s.store.GetItem(storage.KeyCurrencyCode)
	if !ok {
		return DefaultCurrencyCode
	}

	return code
}

// SetCurrencyCode stores the code after checking it against the ISO
// currency table. Unknown codes are rejected with a validation report.
func (s *Service) SetCurrencyCode(code string) bool {
	if money.GetCurrency(code) == nil {
		s.bus.Report(apperror.TypeValidation, apperror.MsgValidationError, "moneda desconocida: "+code)
		return false
	}

	return s.store.SetItem(storage.KeyCurrencyCode, code)
}

// Theme returns the stored theme, defaulting to light.
func (s *Service) Theme() string {
	theme, ok := s.store.GetItem(storage.KeyTheme)
	if !ok {
		return ThemeLight
	}

	return theme
}

func (s *Service) SetTheme(theme string) bool {
	if theme != ThemeLight && theme != ThemeDark {
		s.bus.Report(apperror.TypeValidation, apperror.MsgValidationError, "tema desconocido: "+theme)
		return false
	}

	return s.store.SetItem(storage.KeyTheme, theme)
}
