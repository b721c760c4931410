package response

import (
	"time"

	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
)

type TransactionResponse struct {
	ID           uuid.UUID  `json:"id"`
	Direction    string     `json:"direction"`
	Amount       string     `json:"amount"`
	BalanceAfter string     `json:"balanceAfter"`
	RefType      string     `json:"refType"`
	RefID        *uuid.UUID `json:"refId,omitempty"`
	Status       string     `json:"status"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type WalletResponse struct {
	ID           uuid.UUID             `json:"id"`
	Balance      string                `json:"balance"`
	Currency     string                `json:"currency"`
	Status       string                `json:"status"`
	Transactions []TransactionResponse `json:"transactions"`
}

type TopupResponse struct {
	GatewayTxnID string `json:"gatewayTxnId"`
	RedirectURL  string `json:"redirectUrl"`
	Amount       string `json:"amount"`
}

type CallbackResponse struct {
	Acknowledged bool `json:"acknowledged"`
	Duplicate    bool `json:"duplicate,omitempty"`
}

func FromWalletView(v *queries.WalletView) *WalletResponse {
	txns := make([]TransactionResponse, len(v.Transactions))
	for i, t := range v.Transactions {
		txns[i] = TransactionResponse{
			ID:           t.ID,
			Direction:    t.Direction,
			Amount:       t.Amount.String(),
			BalanceAfter: t.BalanceAfter.String(),
			RefType:      t.RefType,
			RefID:        t.RefID,
			Status:       t.Status,
			Description:  t.Description,
			CreatedAt:    t.CreatedAt,
		}
	}
	return &WalletResponse{
		ID:           v.ID,
		Balance:      v.Balance.String(),
		Currency:     v.Currency,
		Status:       v.Status,
		Transactions: txns,
	}
}

func FromTopupResult(r *commands.TopupResult) *TopupResponse {
	return &TopupResponse{
		GatewayTxnID: r.GatewayTxnID,
		RedirectURL:  r.RedirectURL,
		Amount:       r.Amount.String(),
	}
}

func FromCallbackResult(r *commands.CallbackResult) *CallbackResponse {
	return &CallbackResponse{
		Acknowledged: true,
		Duplicate:    r.Duplicate,
	}
}
