package api

import (
	"errors"
	"io"
	"net/http"

	"shopcore/internal/domain/wallet"
	reqdto "shopcore/internal/handler/dto/request"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/handler/middleware"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletCommands commands.WalletCommands
	walletQueries  queries.WalletQueries
}

func NewWalletHandler(walletCommands commands.WalletCommands, walletQueries queries.WalletQueries) *WalletHandler {
	return &WalletHandler{
		walletCommands: walletCommands,
		walletQueries:  walletQueries,
	}
}

// @Summary Get wallet
// @Description Get the current user's wallet with recent transactions
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.WalletResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.walletQueries.GetByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromWalletView(view))
}

// @Summary Initiate top-up
// @Description Create a pending top-up and return the gateway redirect URL
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TopupRequest true "Top-up request"
// @Success 201 {object} resdto.TopupResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /wallet/topup [post]
func (h *WalletHandler) InitiateTopup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	result, err := h.walletCommands.InitiateTopup(c.Request.Context(), userID, amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		case errors.Is(err, errs.ErrWalletNotActive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Wallet is not active"})
		case errors.Is(err, wallet.ErrNonPositiveAmount):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Amount must be positive"})
		case errors.Is(err, errs.ErrCurrencyMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Currency mismatch with wallet"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromTopupResult(result))
}

// @Summary Gateway callback
// @Description Signature-verified payment gateway notification; safe under redelivery
// @Tags wallet
// @Accept json
// @Produce json
// @Param X-Gateway-Signature header string true "HMAC-SHA256 of the raw body"
// @Param request body reqdto.GatewayCallbackRequest true "Gateway notification"
// @Success 200 {object} resdto.CallbackResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /wallet/topup/callback [post]
func (h *WalletHandler) GatewayCallback(c *gin.Context) {
	// The signature covers the raw body, so read it before binding.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var req reqdto.GatewayCallbackRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.walletCommands.ProcessGatewayCallback(c.Request.Context(), commands.CallbackInput{
		GatewayTxnID: req.GatewayTxnID,
		Succeeded:    req.Succeeded(),
		Signature:    c.GetHeader("X-Gateway-Signature"),
		RawPayload:   body,
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCallbackSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromCallbackResult(result))
}
