package handler

import (
	"errors"
	"net/http"
	"strconv"

	"cardbridge/internal/middleware"
	"cardbridge/internal/service"
	"cardbridge/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func paymentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return 0, false
	}
	return uint(id), true
}

func browserInfo(c *gin.Context) *gateway.BrowserInfo {
	accept := c.GetHeader("Accept")
	ua := c.GetHeader("User-Agent")
	if accept == "" && ua == "" {
		return nil
	}
	return &gateway.BrowserInfo{AcceptHeader: accept, UserAgent: ua}
}

// respondError maps the gateway error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var inputErr *gateway.InputError
	var gatewayErr *gateway.GatewayError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": inputErr.Reason})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Reason})
	case errors.Is(err, gateway.ErrRecurringDetailsNotFound):
		// The token index lags the authorisation; the client may retry later.
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "gateway dispatch failed"})
	}
}

type createPaymentRequest struct {
	CreditCardID uint   `json:"credit_card_id" binding:"required"`
	AmountCents  int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency     string `json:"currency" binding:"required,len=3"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.payments.CreatePayment(service.CreatePaymentInput{
		UserID:       middleware.GetUserID(c),
		CreditCardID: req.CreditCardID,
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		ShopperIP:    c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type authorizeRequest struct {
	VerificationValue string `json:"verification_value"`
}

func (h *PaymentHandler) Authorize(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	var req authorizeRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	result, err := h.payments.Authorize(c.Request.Context(), id, service.AuthorizeParams{
		Browser:           browserInfo(c),
		VerificationValue: req.VerificationValue,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Resume3DS completes a pending 3-D Secure challenge; the continuation token
// stored on the payment routes the call to the completion endpoint.
func (h *PaymentHandler) Resume3DS(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	result, err := h.payments.Resume3DS(c.Request.Context(), id, browserInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Capture(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	result, err := h.payments.Capture(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Void(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	result, err := h.payments.Void(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	var req refundRequest
	_ = c.ShouldBindJSON(&req) // empty body refunds the full amount

	result, err := h.payments.Refund(c.Request.Context(), id, req.AmountCents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) CreateProfile(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	result, err := h.payments.CreateProfile(c.Request.Context(), id, browserInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
