package handlers

import (
	"net/http"

	"tutorhub/middleware"
	"tutorhub/services/credit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreditHandler exposes combo credit balances over HTTP.
type CreditHandler struct {
	Svc    credit.Service
	Logger *zap.Logger
}

func NewCreditHandler(svc credit.Service, logger *zap.Logger) *CreditHandler {
	return &CreditHandler{Svc: svc, Logger: logger}
}

// Balance returns the authenticated student's remaining credits on a combo.
// GET /api/combos/:comboOrderId
func (h *CreditHandler) Balance(c *gin.Context) {
	acct, err := h.Svc.Balance(c.Request.Context(), middleware.ActorID(c), c.Param("comboOrderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"combo": acct})
}
