package request

type TopupRequest struct {
	// Amount is a decimal string to avoid float rounding on the wire.
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency,omitempty"`
}

type GatewayCallbackRequest struct {
	GatewayTxnID string `json:"gateway_txn_id" binding:"required"`
	Status       string `json:"status" binding:"required"`
}

func (r GatewayCallbackRequest) Succeeded() bool {
	return r.Status == "SUCCEEDED"
}
