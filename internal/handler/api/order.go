package api

import (
	"errors"
	"net/http"

	"shopcore/internal/domain/order"
	reqdto "shopcore/internal/handler/dto/request"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/handler/middleware"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	checkoutCommands commands.CheckoutCommands
	orderCommands    commands.OrderCommands
	orderQueries     queries.OrderQueries
}

func NewOrderHandler(
	checkoutCommands commands.CheckoutCommands,
	orderCommands commands.OrderCommands,
	orderQueries queries.OrderQueries,
) *OrderHandler {
	return &OrderHandler{
		checkoutCommands: checkoutCommands,
		orderCommands:    orderCommands,
		orderQueries:     orderQueries,
	}
}

// @Summary Place order
// @Description Convert the cart into an order; all-or-nothing across inventory, coupon and wallet
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PlaceOrderRequest true "Checkout request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 504 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	shipping, err := req.ShippingAddress.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incomplete shipping address"})
		return
	}
	billing, err := req.BillingOrShipping().ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incomplete billing address"})
		return
	}

	method := order.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported payment method"})
		return
	}

	view, err := h.checkoutCommands.PlaceOrder(c.Request.Context(), userID, commands.PlaceOrderInput{
		ShippingAddress:  shipping,
		BillingAddress:   billing,
		PaymentMethod:    method,
		PaymentMethodRef: req.PaymentMethodRef,
	})
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOrderView(view))
}

// @Summary Get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.OrderListResponse
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items, err := h.orderQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]*resdto.OrderListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromOrderListItem(item)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Cancel order
// @Description Cancel a PENDING or PROCESSING order; restores inventory, coupon usage and wallet funds
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CancelOrderRequest true "Cancellation reason"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [patch]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req reqdto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.orderCommands.Cancel(c.Request.Context(), id, userID, req.TrimmedReason())
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Refund order
// @Description Admin-initiated wallet refund, full or partial
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.RefundOrderRequest true "Refund request"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders/{id}/refund [post]
func (h *OrderHandler) RefundOrder(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req reqdto.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	input := commands.RefundInput{Reason: req.Reason}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refund amount"})
			return
		}
		input.Amount = &amount
	}

	view, err := h.orderCommands.Refund(c.Request.Context(), id, adminID, input)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Advance order status
// @Description Admin moves the order along the fulfillment state machine
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.AdvanceStatusRequest true "Target status"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req reqdto.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	to := order.Status(req.Status)
	if !to.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	view, err := h.orderCommands.AdvanceStatus(c.Request.Context(), id, adminID, to)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

func (h *OrderHandler) respondOrderError(c *gin.Context, err error) {
	var stockErr *commands.InsufficientStockError
	var couponErr *commands.CouponRejectedError

	switch {
	case errors.Is(err, errs.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, errs.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
	case errors.Is(err, errs.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart is empty"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Insufficient stock",
			"detail": gin.H{
				"variant_id": stockErr.VariantID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		})
	case errors.As(err, &couponErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Coupon rejected",
			"detail": gin.H{"code": couponErr.Code, "reason": couponErr.Reason.Error()},
		})
	case errors.Is(err, errs.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient wallet balance"})
	case errors.Is(err, errs.ErrWalletNotActive):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Wallet is not active"})
	case errors.Is(err, errs.ErrRefundExceedsTotal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Refund exceeds refundable amount"})
	case errors.Is(err, errs.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Order state does not allow this operation"})
	case errors.Is(err, errs.ErrWalletContention):
		c.JSON(http.StatusConflict, gin.H{"error": "Wallet is busy, please retry"})
	case errors.Is(err, errs.ErrTransactionTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Transaction timed out, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
