//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"shopcore/internal/handler/api"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"
	"shopcore/tests/common/builder"
	"shopcore/tests/common/httptest"
	"shopcore/tests/common/testutil"
	commandsmock "shopcore/tests/mock/commands"
	queriesmock "shopcore/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCartCommands
	mockQueries  *queriesmock.MockCartQueries
	handler      *api.CartHandler
	userID       uuid.UUID
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.userID = uuid.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.handler = api.NewCartHandler(s.mockCommands, s.mockQueries)

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", "customer")
		c.Next()
	}

	s.router.GET("/cart", authMiddleware, s.handler.GetCart)
	s.router.POST("/cart/items", authMiddleware, s.handler.AddItem)
	s.router.PATCH("/cart/items/:variantId", authMiddleware, s.handler.UpdateItem)
	s.router.DELETE("/cart/items/:variantId", authMiddleware, s.handler.RemoveItem)
	s.router.POST("/cart/coupon", authMiddleware, s.handler.ApplyCoupon)
	s.router.DELETE("/cart/coupon", authMiddleware, s.handler.RemoveCoupon)
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) TestGetCart() {
	url := "/cart"

	s.Run("success: returns 200 OK with the cart", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).BuildView()
		s.mockQueries.EXPECT().GetByUser(gomock.Any(), s.userID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Equal("50", body.Total)
	})

	s.Run("success: a user with no cart sees an empty one", func() {
		s.mockQueries.EXPECT().GetByUser(gomock.Any(), s.userID).
			Return(&queries.CartView{UserID: s.userID}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Empty(body.Items)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})
}

func (s *CartHandlerTestSuite) TestAddItem() {
	url := "/cart/items"
	variantID := uuid.New()
	reqBody := map[string]any{"variant_id": variantID.String(), "quantity": 2}

	s.Run("success: returns 200 OK with the updated cart", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).BuildView()
		s.mockCommands.EXPECT().AddItem(gomock.Any(), s.userID, variantID, int32(2)).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: variant_id", mutate: testutil.Field("variant_id", nil)},
			{name: "missing field: quantity", mutate: testutil.Field("quantity", nil)},
			{name: "zero quantity", mutate: testutil.Field("quantity", 0)},
			{name: "negative quantity", mutate: testutil.Field("quantity", -1)},
			{name: "malformed variant id", mutate: testutil.Field("variant_id", "not-a-uuid")},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				requestMap := map[string]any{"variant_id": variantID.String(), "quantity": 2}
				tc.mutate(requestMap)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "variant not found",
				commandsError:  errs.ErrVariantNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Variant not found",
			},
			{
				name:           "variant not purchasable",
				commandsError:  errs.ErrVariantUnavailable,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "not purchasable",
			},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.userID, variantID, int32(2)).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

func (s *CartHandlerTestSuite) TestUpdateItem() {
	variantID := uuid.New()
	url := "/cart/items/" + variantID.String()

	s.Run("success: sets the quantity", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).BuildView()
		s.mockCommands.EXPECT().UpdateQuantity(gomock.Any(), s.userID, variantID, int32(5)).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url,
			map[string]any{"quantity": 5}, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 on a malformed variant id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/cart/items/not-a-uuid",
			map[string]any{"quantity": 5}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid variant ID")
	})

	s.Run("error: 404 when the line is not in the cart", func() {
		s.mockCommands.EXPECT().UpdateQuantity(gomock.Any(), s.userID, variantID, int32(5)).
			Return(nil, errs.ErrVariantNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url,
			map[string]any{"quantity": 5}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Variant not found")
	})
}

func (s *CartHandlerTestSuite) TestRemoveItem() {
	variantID := uuid.New()
	url := "/cart/items/" + variantID.String()

	s.Run("success: removes the line", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).WithNoItems().BuildView()
		s.mockCommands.EXPECT().RemoveItem(gomock.Any(), s.userID, variantID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Empty(body.Items)
	})

	s.Run("error: 404 when no cart exists", func() {
		s.mockCommands.EXPECT().RemoveItem(gomock.Any(), s.userID, variantID).
			Return(nil, errs.ErrCartNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Cart not found")
	})
}

func (s *CartHandlerTestSuite) TestApplyCoupon() {
	url := "/cart/coupon"

	s.Run("success: code is normalized before the lookup", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).WithCouponCode("SAVE10").BuildView()
		s.mockCommands.EXPECT().ApplyCoupon(gomock.Any(), s.userID, "SAVE10").
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"code": "  save10 "}, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().NotNil(body.CouponCode)
		s.Equal("SAVE10", *body.CouponCode)
	})

	s.Run("error: 400 when the code is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 422 with code and reason when the coupon is rejected", func() {
		s.mockCommands.EXPECT().ApplyCoupon(gomock.Any(), s.userID, "SAVE10").
			Return(nil, &commands.CouponRejectedError{Code: "SAVE10", Reason: errs.ErrCouponExpiredOrIneligible}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"code": "SAVE10"}, "bearer-token")

		var body struct {
			Error  string `json:"error"`
			Detail struct {
				Code   string `json:"code"`
				Reason string `json:"reason"`
			} `json:"detail"`
		}
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("Coupon rejected", body.Error)
		s.Equal("SAVE10", body.Detail.Code)
		s.NotEmpty(body.Detail.Reason)
	})

	s.Run("error: 422 on an empty cart", func() {
		s.mockCommands.EXPECT().ApplyCoupon(gomock.Any(), s.userID, "SAVE10").
			Return(nil, errs.ErrEmptyCart).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"code": "SAVE10"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Cart is empty")
	})
}

func (s *CartHandlerTestSuite) TestRemoveCoupon() {
	url := "/cart/coupon"

	s.Run("success: returns the cart without the coupon", func() {
		view := builder.NewCartBuilder().WithUserID(s.userID).BuildView()
		s.mockCommands.EXPECT().RemoveCoupon(gomock.Any(), s.userID).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Nil(body.CouponCode)
	})
}
