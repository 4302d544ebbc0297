package inventory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/ident"
	"github.com/tiendita/caja/internal/storage"
)

// Service owns the products collection.
type Service struct {
	mu    sync.Mutex
	store *storage.Store
	bus   apperror.Reporter
}

func NewService(store *storage.Store, bus apperror.Reporter) *Service {
	return &Service{store: store, bus: bus}
}

func (s *Service) load() []Product {
	return storage.LoadCollection[Product](s.store, storage.KeyProducts)
}

func (s *Service) save(products []Product) bool {
	return storage.SaveCollection(s.store, storage.KeyProducts, products)
}

// GetAll returns the filtered products, most recently updated first.
func (s *Service) GetAll(filters Filters) []Product {
	products := s.load()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filters.matches(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out
}

// GetByID returns the product or nil if it does not exist.
func (s *Service) GetByID(id string) *Product {
	for _, p := range s.load() {
		if p.ID == id {
			return &p
		}
	}

	return nil
}

// VariantParams describes a variant to create; the id is generated.
type VariantParams struct {
	Name     string
	Quantity int
	SKU      string
}

// CreateParams describes a product to create.
type CreateParams struct {
	Name               string
	Price              decimal.Decimal
	Description        string
	Image              string
	Category           string
	HasVariants        bool
	Variants           []VariantParams
	StandaloneQuantity int
}

// Create validates, builds and persists a new product. Returns nil after
// reporting a validation error (empty name, negative price) or a
// persistence failure.
func (s *Service) Create(params CreateParams) *Product {
	if strings.TrimSpace(params.Name) == "" {
		s.bus.Report(apperror.TypeValidation, "El nombre del producto es requerido", "")
		return nil
	}

	if params.Price.IsNegative() {
		s.bus.Report(apperror.TypeValidation, "El precio debe ser mayor o igual a cero", "")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	variants := make([]Variant, len(params.Variants))
	for i, v := range params.Variants {
		variants[i] = Variant{
			ID:       ident.New(),
			Name:     v.Name,
			Quantity: v.Quantity,
			SKU:      v.SKU,
		}
	}

	now := time.Now().UTC()
	product := Product{
		ID:            ident.New(),
		Name:          strings.TrimSpace(params.Name),
		Description:   strings.TrimSpace(params.Description),
		Image:         params.Image,
		Price:         params.Price,
		TotalQuantity: totalQuantity(params.HasVariants, variants, params.StandaloneQuantity),
		HasVariants:   params.HasVariants,
		Variants:      variants,
		Category:      strings.TrimSpace(params.Category),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	products := append(s.load(), product)
	if !s.save(products) {
		return nil
	}

	return &product
}

// UpdateParams is a partial update; nil fields keep their current value.
type UpdateParams struct {
	Name               *string
	Description        *string
	Image              *string
	Price              *decimal.Decimal
	Category           *string
	HasVariants        *bool
	Variants           *[]Variant
	StandaloneQuantity *int
}

// Update merges the partial update into the stored product and recomputes
// TotalQuantity from the resulting variant state, which supports toggling
// variants on or off. Quantity inputs are clamped to zero. Returns nil
// after reporting if the id is unknown or the write fails.
func (s *Service) Update(id string, params UpdateParams) *Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Work on a copy so the read cache never observes a half-applied
	// update if the write fails.
	products := append([]Product(nil), s.load()...)

	idx := indexOf(products, id)
	if idx < 0 {
		s.bus.Report(apperror.TypeValidation, apperror.MsgNotFound, "Producto no encontrado")
		return nil
	}

	p := products[idx]

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		p.Name = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		p.Description = strings.TrimSpace(*params.Description)
	}
	if params.Image != nil {
		p.Image = *params.Image
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.Category != nil {
		p.Category = strings.TrimSpace(*params.Category)
	}
	if params.HasVariants != nil {
		p.HasVariants = *params.HasVariants
	}
	if params.Variants != nil {
		p.Variants = clampVariants(*params.Variants)
	}

	standaloneQty := p.TotalQuantity
	if params.StandaloneQuantity != nil {
		standaloneQty = max(0, *params.StandaloneQuantity)
	}

	p.TotalQuantity = max(0, totalQuantity(p.HasVariants, p.Variants, standaloneQty))
	p.UpdatedAt = time.Now().UTC()

	products[idx] = p
	if !s.save(products) {
		return nil
	}

	return &p
}

// Delete removes the product. Reports "not found" and returns false if the
// id does not exist.
func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.load()

	idx := indexOf(products, id)
	if idx < 0 {
		s.bus.Report(apperror.TypeValidation, apperror.MsgNotFound, "Producto no encontrado")
		return false
	}

	remaining := make([]Product, 0, len(products)-1)
	for _, p := range products {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}

	return s.save(remaining)
}

// UpdateVariantQuantity sets one variant's stock level and recomputes the
// product total as the sum over all variants.
func (s *Service) UpdateVariantQuantity(productID, variantID string, quantity int) *Product {
	if quantity < 0 {
		s.bus.Report(apperror.TypeValidation, "La cantidad debe ser mayor o igual a cero", "")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products := append([]Product(nil), s.load()...)

	idx := indexOf(products, productID)
	if idx < 0 {
		s.bus.Report(apperror.TypeValidation, apperror.MsgNotFound, "Producto no encontrado")
		return nil
	}

	p := products[idx]
	p.Variants = append([]Variant(nil), p.Variants...)

	variantIdx := -1
	for i, v := range p.Variants {
		if v.ID == variantID {
			variantIdx = i
			break
		}
	}
	if variantIdx < 0 {
		s.bus.Report(apperror.TypeValidation, apperror.MsgNotFound, "Variante no encontrada")
		return nil
	}

	p.Variants[variantIdx].Quantity = max(0, quantity)
	p.TotalQuantity = totalQuantity(true, p.Variants, 0)
	p.UpdatedAt = time.Now().UTC()

	products[idx] = p
	if !s.save(products) {
		return nil
	}

	return &p
}

// Categories returns the distinct product categories, sorted.
func (s *Service) Categories() []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, p := range s.load() {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}

	sort.Strings(out)

	return out
}

// Subscribe invokes fn immediately with the current products and again on
// every change to the products key.
func (s *Service) Subscribe(fn func([]Product)) func() {
	fn(s.load())

	return s.store.Changes().Subscribe(storage.KeyProducts, func() {
		fn(s.load())
	})
}

func indexOf(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func clampVariants(variants []Variant) []Variant {
	out := append([]Variant(nil), variants...)
	for i := range out {
		if out[i].Quantity < 0 {
			out[i].Quantity = 0
		}
	}

	return out
}
