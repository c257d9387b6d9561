package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diploma360/middlewares"
	"diploma360/models"
)

// GET /api/events/payment/requests (organizer, super_admin)
// Registrations across the caller's paid events, grouped by payment status.
func (d *deps) paymentRequests(c *gin.Context) {
	email := c.GetString(middlewares.CtxEmail)
	requests, err := d.events.PaymentRequests(c.Request.Context(), email)
	if err != nil {
		fail(c, err)
		return
	}

	grouped := map[string][]models.PaymentRequest{
		models.PaymentPending:  {},
		models.PaymentAccepted: {},
		models.PaymentRejected: {},
	}
	for _, r := range requests {
		status := r.Registration.PaymentStatus
		if _, ok := grouped[status]; ok {
			grouped[status] = append(grouped[status], r)
		}
	}
	c.JSON(http.StatusOK, grouped)
}

// PUT /api/events/payment/:registrationId (organizer, super_admin)
// pending -> accepted|rejected. Ownership and the pending guard are enforced
// inside the repository's single conditional update.
func (d *deps) setPaymentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required."})
		return
	}
	if req.Status != models.PaymentAccepted && req.Status != models.PaymentRejected {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be accepted or rejected."})
		return
	}

	email := c.GetString(middlewares.CtxEmail)
	err := d.events.SetPaymentStatus(c.Request.Context(), email, c.Param("registrationId"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment " + req.Status + "."})
}
