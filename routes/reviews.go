package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"diploma360/middlewares"
	"diploma360/models"
)

// POST /api/events/:id/review
// One review per attendee per event, and only with an accepted or free
// registration. Both rules sit in the repository's conditional update.
func (d *deps) addReview(c *gin.Context) {
	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "rating and comment are required."})
		return
	}

	email := c.GetString(middlewares.CtxEmail)
	caller, err := d.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		fail(c, err)
		return
	}

	review := models.Review{
		Name:      caller.Name,
		Email:     caller.Email,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := review.Validate(); err != nil {
		fail(c, err)
		return
	}

	if err := d.events.AddReview(c.Request.Context(), c.Param("id"), review); err != nil {
		fail(c, err)
		return
	}
	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Review added.", "review": review})
}
