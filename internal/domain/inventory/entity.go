package inventory

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Record tracks purchasable stock for one product variant. Available never
// goes negative; reservations and releases happen inside the order
// transaction so concurrent checkouts serialize on the row.
type Record struct {
	variantID uuid.UUID
	available int32
}

func Reconstruct(variantID uuid.UUID, available int32) *Record {
	return &Record{variantID: variantID, available: available}
}

func (r *Record) CanFulfill(quantity int32) bool {
	return quantity > 0 && r.available >= quantity
}

func (r *Record) Reserve(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.available < quantity {
		return ErrInsufficientStock
	}
	r.available -= quantity
	return nil
}

func (r *Record) Release(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	r.available += quantity
	return nil
}

func (r *Record) VariantID() uuid.UUID { return r.variantID }
func (r *Record) Available() int32     { return r.available }
