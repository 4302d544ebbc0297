// Package inventory manages products and their stock levels.
//
// Error convention: no public operation returns an error. Failures are
// reported on the error bus and collapsed into nil/false results, so
// callers must check for them.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the totalQuantity at or under which a product counts
// as low stock.
const LowStockThreshold = 10

// Variant is a stock-tracked sub-SKU of a product, e.g. a size or color.
type Variant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku,omitempty"`
}

// Product is a mutable inventory entity.
//
// TotalQuantity is derived: with variants it is the sum of the variant
// quantities, otherwise it is the standalone quantity supplied directly.
// It is recomputed on every mutation, never drifted manually.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Image         string          `json:"image,omitempty"`
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int             `json:"totalQuantity"`
	HasVariants   bool            `json:"hasVariants"`
	Variants      []Variant       `json:"variants"`
	Category      string          `json:"category,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Filters narrows GetAll results.
type Filters struct {
	SearchTerm string
	Category   string
	LowStock   bool
}

func (f Filters) matches(p Product) bool {
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			return false
		}
	}

	if f.Category != "" && p.Category != f.Category {
		return false
	}

	if f.LowStock && p.TotalQuantity > LowStockThreshold {
		return false
	}

	return true
}

func totalQuantity(hasVariants bool, variants []Variant, standaloneQty int) int {
	if hasVariants && len(variants) > 0 {
		sum := 0
		for _, v := range variants {
			sum += v.Quantity
		}
		return sum
	}

	return standaloneQty
}
