package order

import "github.com/shopspring/decimal"

// PricingPolicy supplies the shipping and tax legs of the financial breakdown.
type PricingPolicy interface {
	ShippingFee(subtotal decimal.Decimal) decimal.Decimal
	Tax(subtotal decimal.Decimal) decimal.Decimal
}

type StandardPricing struct {
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRatePercent        decimal.Decimal
}

func NewStandardPricing() *StandardPricing {
	return &StandardPricing{
		FlatShippingFee:       decimal.NewFromInt(10),
		FreeShippingThreshold: decimal.NewFromInt(100),
		TaxRatePercent:        decimal.NewFromInt(10),
	}
}

func (p *StandardPricing) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

func (p *StandardPricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
}
