package handler

import (
	"net/http"
	"strconv"

	"cardbridge/internal/middleware"
	"cardbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type CardHandler struct {
	contracts *service.ContractService
}

func NewCardHandler(contracts *service.ContractService) *CardHandler {
	return &CardHandler{contracts: contracts}
}

type registerCardRequest struct {
	EncryptedData string `json:"encrypted_data" binding:"required"`
}

func (h *CardHandler) Register(c *gin.Context) {
	var req registerCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card, err := h.contracts.RegisterCard(service.RegisterCardInput{
		UserID:        middleware.GetUserID(c),
		EncryptedData: req.EncryptedData,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func cardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return 0, false
	}
	return uint(id), true
}

// AddContract runs the zero-amount setup authorisation and returns the stored
// recurring reference.
func (h *CardHandler) AddContract(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	ref, err := h.contracts.AddContract(c.Request.Context(), id, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recurring_reference": ref})
}

func (h *CardHandler) DisableContract(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}
	if err := h.contracts.DisableContract(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disabled": true})
}
