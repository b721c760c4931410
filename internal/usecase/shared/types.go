package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantSnapshot is what the catalog (an external collaborator) supplies at
// add-to-cart time. Price and labels are frozen into the cart from here.
type VariantSnapshot struct {
	VariantID    uuid.UUID
	SKU          string
	ProductName  string
	OptionLabels []string
	Price        decimal.Decimal
	Purchasable  bool
}

// CatalogReadStore is the read-only port to the product catalog.
type CatalogReadStore interface {
	VariantByID(ctx context.Context, variantID uuid.UUID) (*VariantSnapshot, error)
}
