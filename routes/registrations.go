package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"diploma360/metrics"
	"diploma360/middlewares"
	"diploma360/models"
)

type bookingRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	StudyStatus   string `json:"studyStatus"`
	SchoolYear    string `json:"schoolYear"`
	Address       string `json:"address"`
	Technology    string `json:"technology"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
}

// POST /api/events/:id/registration
// Booking: free events settle immediately, paid events require the payment
// fields and start pending. The ticket is attached unused. The study-profile
// sync afterwards is best-effort and never fails the booking.
func (d *deps) bookEvent(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	event, err := d.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	reg := models.Registration{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         c.GetString(middlewares.CtxEmail),
		Phone:         req.Phone,
		StudyStatus:   req.StudyStatus,
		SchoolYear:    req.SchoolYear,
		Address:       req.Address,
		Technology:    req.Technology,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Ticket:        models.Ticket{ID: uuid.NewString()},
		RegisteredAt:  time.Now().UTC(),
	}
	if err := event.ValidateRegistration(&reg); err != nil {
		fail(c, err)
		return
	}
	if event.Fee == 0 {
		reg.PaymentStatus = models.PaymentFree
	} else {
		reg.PaymentStatus = models.PaymentPending
	}

	if err := d.events.AddRegistration(c.Request.Context(), event.ID, reg); err != nil {
		fail(c, err)
		return
	}
	metrics.Bookings.Inc()

	if reg.StudyStatus == models.StudyWantToStudy || reg.StudyStatus == models.StudyAlreadyStudying {
		if err := d.users.BackfillStudyProfile(c.Request.Context(), reg.Email, reg); err != nil {
			log.Warn().Err(err).Str("email", reg.Email).Msg("study profile backfill failed")
		}
	}

	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Registered!", "registration": reg})
}

// DELETE /api/events/:id/registration
func (d *deps) cancelBooking(c *gin.Context) {
	email := c.GetString(middlewares.CtxEmail)
	if err := d.events.RemoveRegistration(c.Request.Context(), c.Param("id"), email); err != nil {
		fail(c, err)
		return
	}
	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled."})
}

// GET /api/events/:id/my-bookings. The path segment carries the attendee
// email and must match the session.
func (d *deps) myBookings(c *gin.Context) {
	email := c.GetString(middlewares.CtxEmail)
	if c.Param("id") != email {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied."})
		return
	}
	d.writeBookings(c, email)
}

// GET /api/events/my-tickets
func (d *deps) myTickets(c *gin.Context) {
	d.writeBookings(c, c.GetString(middlewares.CtxEmail))
}

func (d *deps) writeBookings(c *gin.Context, email string) {
	bookings, err := d.events.BookingsByEmail(c.Request.Context(), email)
	if err != nil {
		fail(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// POST /api/events/validate-ticket (organizer, super_admin)
// The admission gate: a ticket admits exactly once, and only with a settled
// payment behind it.
func (d *deps) validateTicket(c *gin.Context) {
	var req struct {
		TicketID string `json:"ticketId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ticketId is required."})
		return
	}

	booking, err := d.events.ValidateTicket(c.Request.Context(), req.TicketID)
	if err != nil {
		fail(c, err)
		return
	}
	metrics.TicketsValidated.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Ticket valid. Welcome in!", "booking": booking})
}
