package handlers

import (
	"net/http"

	"tutorhub/services"
	"tutorhub/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
// Untyped errors are internal failures and keep their details out of the
// response body.
func respondServiceError(c *gin.Context, err error) {
	switch services.CodeOf(err) {
	case services.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.CodeAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.CodeConflict, services.CodeInvalidState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.CodeInsufficientCredit:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
