package handlers

import (
	"net/http"
	"time"

	"tutorhub/middleware"
	"tutorhub/models"
	"tutorhub/services/booking"
	"tutorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	Svc    booking.Service
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// SlotStatus returns the live grid of a tutor's day.
// GET /api/tutors/:tutorId/slot-status?date=YYYY-MM-DD
func (h *BookingHandler) SlotStatus(c *gin.Context) {
	grid, err := h.Svc.SlotStatus(c.Request.Context(), c.Param("tutorId"), c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": grid})
}

// Reserve attempts a reservation for the authenticated student.
// POST /api/bookings
func (h *BookingHandler) Reserve(c *gin.Context) {
	var input struct {
		TutorID      string             `json:"tutorId" binding:"required"`
		Date         string             `json:"date" binding:"required"`
		SlotID       string             `json:"slotId" binding:"required"`
		Subject      string             `json:"subject" binding:"required"`
		Mode         models.BookingMode `json:"mode" binding:"required"`
		Location     string             `json:"location"`
		Note         string             `json:"note"`
		ComboOrderID string             `json:"comboOrderId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.Reserve(c.Request.Context(), booking.ReserveRequest{
		StudentID:    middleware.ActorID(c),
		TutorID:      input.TutorID,
		Date:         input.Date,
		SlotID:       input.SlotID,
		Subject:      input.Subject,
		Mode:         input.Mode,
		Location:     input.Location,
		Note:         input.Note,
		ComboOrderID: input.ComboOrderID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// TutorConfirm records the tutor's decision on a pending booking.
// POST /api/bookings/:id/confirm
func (h *BookingHandler) TutorConfirm(c *gin.Context) {
	var input struct {
		Confirmed *bool  `json:"confirmed" binding:"required"`
		MeetLink  string `json:"meetLink"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.TutorConfirm(c.Request.Context(), booking.ConfirmRequest{
		BookingID: c.Param("id"),
		ActorID:   middleware.ActorID(c),
		Confirmed: *input.Confirmed,
		MeetLink:  input.MeetLink,
		Note:      input.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// AdminApprove records the platform's decision on a tutor-confirmed booking.
// POST /api/bookings/:id/approve
func (h *BookingHandler) AdminApprove(c *gin.Context) {
	var input struct {
		Approved *bool  `json:"approved" binding:"required"`
		MeetLink string `json:"meetLink"`
		Note     string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.AdminApprove(c.Request.Context(), booking.ApproveRequest{
		BookingID: c.Param("id"),
		Approved:  *input.Approved,
		MeetLink:  input.MeetLink,
		Note:      input.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// Cancel ends a pending or tutor-confirmed booking.
// POST /api/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GetBooking returns one booking to a party of it (or an admin).
// GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	actor := middleware.ActorID(c)
	if actor != b.StudentID && actor != b.TutorID && middleware.ActorRole(c) != utils.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a party to this booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// MyBookings lists the authenticated actor's bookings, history included.
// GET /api/bookings
func (h *BookingHandler) MyBookings(c *gin.Context) {
	var (
		bookings []models.Booking
		err      error
	)
	switch middleware.ActorRole(c) {
	case utils.RoleTutor:
		bookings, err = h.Svc.ListByTutor(c.Request.Context(), middleware.ActorID(c))
	default:
		bookings, err = h.Svc.ListByStudent(c.Request.Context(), middleware.ActorID(c))
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// RunSweep triggers the completion sweep by hand (admin tooling; the cron
// worker runs the same sweep on a schedule).
// POST /api/admin/sweep
func (h *BookingHandler) RunSweep(c *gin.Context) {
	n, err := h.Svc.SweepCompletion(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": n})
}
