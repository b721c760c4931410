package order

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTotalsMismatch    = errors.New("order totals do not reconcile")
	ErrNegativeAmount    = errors.New("order amount cannot be negative")
	ErrIncompleteAddress = errors.New("address is missing required fields")
)

// Address is an immutable snapshot taken at checkout time; later edits to the
// customer's address book never affect a placed order.
type Address struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func NewAddress(fullName, line1, line2, city, state, postalCode, country string) (Address, error) {
	a := Address{
		FullName:   strings.TrimSpace(fullName),
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.TrimSpace(country),
	}
	if a.FullName == "" || a.Line1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return Address{}, ErrIncompleteAddress
	}
	return a, nil
}

// Totals is the financial breakdown of an order. GrandTotal is always derived,
// never accepted from the outside.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

func NewTotals(subtotal, shipping, tax, discount decimal.Decimal) (Totals, error) {
	for _, v := range []decimal.Decimal{subtotal, shipping, tax, discount} {
		if v.IsNegative() {
			return Totals{}, ErrNegativeAmount
		}
	}

	grand := subtotal.Add(shipping).Add(tax).Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		Discount:   discount,
		GrandTotal: grand,
	}, nil
}

func (t Totals) Reconciles() bool {
	grand := t.Subtotal.Add(t.Shipping).Add(t.Tax).Sub(t.Discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	return grand.Equal(t.GrandTotal)
}

type Number string

func (n Number) String() string {
	return string(n)
}

// GenerateNumber produces a unique, human-readable order number such as
// ORD-20260901-9F2C44A1.
func GenerateNumber(now time.Time) Number {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return Number("ORD-" + now.Format("20060102") + "-" + now.Format("150405.000000"))
	}
	return Number("ORD-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(buf)))
}
