//go:build unit || e2e

package builder

import (
	"time"

	domwallet "shopcore/internal/domain/wallet"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletBuilder struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Balance  decimal.Decimal
	Currency string
	Status   domwallet.Status
	Version  int64
	Now      time.Time
}

func NewWalletBuilder() *WalletBuilder {
	return &WalletBuilder{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Balance:  decimal.NewFromInt(100),
		Currency: "USD",
		Status:   domwallet.StatusActive,
		Version:  1,
		Now:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (b *WalletBuilder) With(mutate func(*WalletBuilder)) *WalletBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *WalletBuilder) BuildDomain() *domwallet.Wallet {
	return domwallet.Reconstruct(b.ID, b.UserID, b.Balance, b.Currency, b.Status, b.Version)
}

func (b *WalletBuilder) BuildView() *queries.WalletView {
	return &queries.WalletView{
		ID:       b.ID,
		Balance:  b.Balance,
		Currency: b.Currency,
		Status:   string(b.Status),
		Transactions: []queries.TransactionView{
			{
				ID:           uuid.New(),
				Direction:    string(domwallet.DirectionCredit),
				Amount:       decimal.NewFromInt(100),
				BalanceAfter: b.Balance,
				RefType:      string(domwallet.RefPaymentGateway),
				Status:       string(domwallet.TxCompleted),
				Description:  "wallet top-up",
				CreatedAt:    b.Now,
			},
		},
	}
}

// Fluent builder methods
func (b *WalletBuilder) WithUserID(userID uuid.UUID) *WalletBuilder {
	b.UserID = userID
	return b
}

func (b *WalletBuilder) WithBalance(balance decimal.Decimal) *WalletBuilder {
	b.Balance = balance
	return b
}

func (b *WalletBuilder) WithStatus(status domwallet.Status) *WalletBuilder {
	b.Status = status
	return b
}

func (b *WalletBuilder) WithVersion(version int64) *WalletBuilder {
	b.Version = version
	return b
}
