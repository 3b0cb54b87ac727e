package handlers

import (
	"net/http"

	"tutorhub/middleware"
	"tutorhub/services/availability"
	"tutorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes a tutor's published slots over HTTP.
type AvailabilityHandler struct {
	Svc    availability.Service
	Logger *zap.Logger
}

func NewAvailabilityHandler(svc availability.Service, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc, Logger: logger}
}

// ListCatalog returns the shared slot catalog.
// GET /api/slots
func (h *AvailabilityHandler) ListCatalog(c *gin.Context) {
	slots, err := h.Svc.ListCatalog(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// ListAvailability returns a tutor's published slots for a date range.
// GET /api/tutors/:tutorId/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AvailabilityHandler) ListAvailability(c *gin.Context) {
	rows, err := h.Svc.ListAvailability(c.Request.Context(), c.Param("tutorId"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": rows})
}

// SetAvailability replaces the authenticated tutor's slot set for one date.
// PUT /api/tutors/me/availability
func (h *AvailabilityHandler) SetAvailability(c *gin.Context) {
	var input struct {
		Date    string   `json:"date" binding:"required"`
		SlotIDs []string `json:"slotIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	rows, err := h.Svc.SetAvailability(c.Request.Context(), middleware.ActorID(c), input.Date, input.SlotIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": rows})
}
