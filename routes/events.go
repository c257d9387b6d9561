package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"diploma360/media"
	"diploma360/middlewares"
	"diploma360/models"
)

type createEventRequest struct {
	EventName            string    `json:"eventName" binding:"required"`
	Category             string    `json:"category" binding:"required"`
	Description          string    `json:"description" binding:"required"`
	Location             string    `json:"location"`
	LocationType         string    `json:"locationType" binding:"required"`
	EventLink            string    `json:"eventLink"`
	NumberOfSeats        int       `json:"numberOfSeats"`
	Fee                  int       `json:"fee"`
	Date                 time.Time `json:"date" binding:"required"`
	Time                 string    `json:"time"`
	RegistrationDeadline time.Time `json:"registrationDeadline"`
	Image                string    `json:"image" binding:"required"`
}

// POST /api/events (organizer, super_admin)
// The organizer identity is stamped from the session, never from the body,
// and the stored image field is the media-host URL, not the raw payload.
func (d *deps) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	callerEmail := c.GetString(middlewares.CtxEmail)
	caller, err := d.users.GetByEmail(c.Request.Context(), callerEmail)
	if err != nil {
		fail(c, err)
		return
	}

	event := models.Event{
		ID:                   uuid.NewString(),
		EventName:            req.EventName,
		Category:             req.Category,
		Description:          req.Description,
		Location:             req.Location,
		LocationType:         req.LocationType,
		EventLink:            req.EventLink,
		NumberOfSeats:        req.NumberOfSeats,
		Fee:                  req.Fee,
		Date:                 req.Date,
		Time:                 req.Time,
		RegistrationDeadline: req.RegistrationDeadline,
		OrganizerName:        caller.Name,
		OrganizerEmail:       caller.Email,
	}
	if err := event.Validate(); err != nil {
		fail(c, err)
		return
	}

	imageURL, err := d.uploadImage(c, event.ID, req.Image)
	if err != nil {
		return // response already written
	}
	event.EventImage = imageURL

	if err := d.events.Create(c.Request.Context(), &event); err != nil {
		fail(c, err)
		return
	}
	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Event created!", "event": event})
}

// uploadImage decodes the client payload and ships it to the media host.
// Writes the error response itself so callers can just return.
func (d *deps) uploadImage(c *gin.Context, eventID, payload string) (string, error) {
	data, contentType, err := media.DecodeImagePayload(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not decode event image."})
		return "", err
	}
	url, err := d.uploader.Upload(c.Request.Context(), "events/"+eventID, data, contentType)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not upload event image. Try again later."})
		return "", err
	}
	return url, nil
}

type eventSummary struct {
	ID            string    `json:"id"`
	EventName     string    `json:"eventName"`
	Category      string    `json:"category"`
	EventImage    string    `json:"eventImage"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Fee           int       `json:"fee"`
	NumberOfSeats int       `json:"numberOfSeats,omitempty"`
}

func summarize(events []models.Event) []eventSummary {
	out := make([]eventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, eventSummary{
			ID:            e.ID,
			EventName:     e.EventName,
			Category:      e.Category,
			EventImage:    e.EventImage,
			Date:          e.Date,
			Location:      e.Location,
			Fee:           e.Fee,
			NumberOfSeats: e.NumberOfSeats,
		})
	}
	return out
}

// GET /api/events returns the public projection, never registrations or
// contact data.
func (d *deps) listEvents(c *gin.Context) {
	events, err := d.events.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(events))
}

// GET /api/events/featured returns the three most recently created events.
func (d *deps) featuredEvents(c *gin.Context) {
	events, err := d.events.Featured(c.Request.Context(), 3)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(events))
}

// GET /api/events/categories
func (d *deps) eventCategories(c *gin.Context) {
	cats, err := d.events.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, cats)
}

// GET /api/events/recent-reviews
func (d *deps) recentReviews(c *gin.Context) {
	reviews, err := d.events.RecentReviews(c.Request.Context(), 10)
	if err != nil {
		fail(c, err)
		return
	}
	if reviews == nil {
		reviews = []models.EventReview{}
	}
	c.JSON(http.StatusOK, reviews)
}

// GET /api/events/:id returns the public detail with registrations, reviews
// and the internal location plumbing stripped.
func (d *deps) getEvent(c *gin.Context) {
	event, err := d.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	event.Registrations = nil
	event.Reviews = nil
	event.EventLink = ""
	event.LocationType = ""
	c.JSON(http.StatusOK, event)
}

// PUT /api/events/:id (owner, super_admin)
// Shallow field merge of the body onto the stored document; the merged
// result goes through the same validation as creation so a patch cannot
// break the location-type rules.
func (d *deps) updateEvent(c *gin.Context) {
	stored, err := d.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !d.ownsEvent(c, stored) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this event."})
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	merged, err := mergeEvent(stored, patch)
	if err != nil {
		fail(c, err)
		return
	}
	if err := merged.Validate(); err != nil {
		fail(c, err)
		return
	}

	if image, ok := patch["image"].(string); ok && image != "" {
		url, err := d.uploadImage(c, merged.ID, image)
		if err != nil {
			return
		}
		merged.EventImage = url
	}

	if err := d.events.Replace(c.Request.Context(), &merged); err != nil {
		fail(c, err)
		return
	}
	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!"})
}

// DELETE /api/events/:id (owner, super_admin)
func (d *deps) deleteEvent(c *gin.Context) {
	event, err := d.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !d.ownsEvent(c, event) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this event."})
		return
	}

	if err := d.events.Delete(c.Request.Context(), event.ID); err != nil {
		fail(c, err)
		return
	}
	d.inv.PurgeEvents(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}

func (d *deps) ownsEvent(c *gin.Context, e models.Event) bool {
	if c.GetString(middlewares.CtxRole) == models.RoleSuperAdmin {
		return true
	}
	return e.OrganizerEmail == c.GetString(middlewares.CtxEmail)
}

// mergeEvent applies the patch over the stored document via a JSON
// round-trip. Identity, audit and embedded collections are never patchable.
func mergeEvent(stored models.Event, patch map[string]any) (models.Event, error) {
	// Embedded arrays are stripped before the round-trip and restored after,
	// so their omitempty tags cannot drop them and a patch cannot inject
	// registrations or reviews.
	registrations, reviews := stored.Registrations, stored.Reviews
	stored.Registrations, stored.Reviews = nil, nil

	raw, err := json.Marshal(stored)
	if err != nil {
		return models.Event{}, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Event{}, err
	}

	for k, v := range patch {
		switch k {
		case "id", "organizerEmail", "organizerName", "registrations", "reviews",
			"createdAt", "updatedAt", "eventImage", "image":
			continue
		}
		doc[k] = v
	}

	mergedRaw, err := json.Marshal(doc)
	if err != nil {
		return models.Event{}, err
	}
	var merged models.Event
	if err := json.Unmarshal(mergedRaw, &merged); err != nil {
		return models.Event{}, fmt.Errorf("%w: malformed field in request body", models.ErrValidation)
	}
	merged.Registrations = registrations
	merged.Reviews = reviews
	return merged, nil
}
