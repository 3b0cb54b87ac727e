package routes

import (
	"net/http"
	"time"

	"tutorhub/handlers"
	"tutorhub/middleware"
	"tutorhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handler sets routed by RegisterRoutes.
type HandlerBundle struct {
	Booking      *handlers.BookingHandler
	Availability *handlers.AvailabilityHandler
	Credit       *handlers.CreditHandler
}

// RegisterRoutes wires every endpoint of the booking engine.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public reads: slot catalog, a tutor's published availability and the
	// live day grid. The grid is a display hint; reservation re-validates.
	api.GET("/slots", hb.Availability.ListCatalog)
	api.GET("/tutors/:tutorId/availability", hb.Availability.ListAvailability)
	api.GET("/tutors/:tutorId/slot-status", hb.Booking.SlotStatus)

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		// Tutors manage their own calendar.
		tutor := auth.Group("")
		tutor.Use(middleware.RequireRole(utils.RoleTutor))
		tutor.PUT("/tutors/me/availability", hb.Availability.SetAvailability)
		tutor.POST("/bookings/:id/confirm", hb.Booking.TutorConfirm)

		// Students reserve and check combo balances.
		student := auth.Group("")
		student.Use(middleware.RequireRole(utils.RoleStudent))
		student.POST("/bookings", hb.Booking.Reserve)
		student.GET("/combos/:comboOrderId", hb.Credit.Balance)

		// Admins approve and can force a completion sweep.
		admin := auth.Group("")
		admin.Use(middleware.RequireRole(utils.RoleAdmin))
		admin.POST("/bookings/:id/approve", hb.Booking.AdminApprove)
		admin.POST("/admin/sweep", hb.Booking.RunSweep)

		// Either party of a booking.
		auth.POST("/bookings/:id/cancel", hb.Booking.Cancel)
		auth.GET("/bookings/:id", hb.Booking.GetBooking)
		auth.GET("/bookings", hb.Booking.MyBookings)
	}
}
