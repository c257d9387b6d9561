package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleStudent    = "student"
	RoleOrganizer  = "organizer"
	RoleSuperAdmin = "super_admin"
)

// Payment status lifecycle: pending is the only non-terminal state.
const (
	PaymentPending  = "pending"
	PaymentAccepted = "accepted"
	PaymentRejected = "rejected"
	PaymentFree     = "free"
)

// Location types.
const (
	LocationPhysical = "physical"
	LocationOnline   = "online"
)

// Study status classifications used on registration.
const (
	StudyWantToStudy     = "want-to-study"
	StudyAlreadyStudying = "already-studying"
)

// Error taxonomy. Handlers translate these at the boundary; anything else
// becomes a generic 500.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrDuplicate  = errors.New("duplicate")
	ErrTicketUsed = errors.New("ticket already used")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	PhotoURL    string             `bson:"photoURL" json:"photoURL"`
	Role        string             `bson:"role" json:"role"`
	UID         string             `bson:"uid" json:"-"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	StudyStatus string             `bson:"studyStatus,omitempty" json:"studyStatus,omitempty"`
	Technology  string             `bson:"technology,omitempty" json:"technology,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	SchoolYear  string             `bson:"schoolYear,omitempty" json:"schoolYear,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Ticket proves one unused admission right for one registration.
type Ticket struct {
	ID     string     `bson:"id" json:"id"`
	Used   bool       `bson:"used" json:"used"`
	UsedAt *time.Time `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
}

type Registration struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	Phone         string    `bson:"phone" json:"phone"`
	StudyStatus   string    `bson:"studyStatus" json:"studyStatus"`
	SchoolYear    string    `bson:"schoolYear,omitempty" json:"schoolYear,omitempty"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	Technology    string    `bson:"technology,omitempty" json:"technology,omitempty"`
	PaymentMethod string    `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	TransactionID string    `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentStatus string    `bson:"paymentStatus" json:"paymentStatus"`
	Ticket        Ticket    `bson:"ticket" json:"ticket"`
	RegisteredAt  time.Time `bson:"registeredAt" json:"registeredAt"`
}

type Review struct {
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Event struct {
	ID                   string         `bson:"_id" json:"id"`
	EventName            string         `bson:"eventName" json:"eventName"`
	Category             string         `bson:"category" json:"category"`
	Description          string         `bson:"description" json:"description"`
	Location             string         `bson:"location" json:"location"`
	LocationType         string         `bson:"locationType" json:"locationType,omitempty"`
	EventLink            string         `bson:"eventLink,omitempty" json:"eventLink,omitempty"`
	NumberOfSeats        int            `bson:"numberOfSeats,omitempty" json:"numberOfSeats,omitempty"`
	Fee                  int            `bson:"fee" json:"fee"`
	Date                 time.Time      `bson:"date" json:"date"`
	Time                 string         `bson:"time,omitempty" json:"time,omitempty"`
	RegistrationDeadline time.Time      `bson:"registrationDeadline" json:"registrationDeadline"`
	OrganizerName        string         `bson:"organizerName" json:"organizerName"`
	OrganizerEmail       string         `bson:"organizerEmail" json:"organizerEmail"`
	EventImage           string         `bson:"eventImage" json:"eventImage"`
	Registrations        []Registration `bson:"registrations" json:"registrations,omitempty"`
	Reviews              []Review       `bson:"reviews" json:"reviews,omitempty"`
	CreatedAt            time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the fields required at creation, including the
// location-type conditional rules. Also re-run on the merged document after
// an update.
func (e *Event) Validate() error {
	switch {
	case e.EventName == "":
		return validationf("eventName is required")
	case e.Category == "":
		return validationf("category is required")
	case e.Description == "":
		return validationf("description is required")
	case e.Date.IsZero():
		return validationf("date is required")
	case e.Fee < 0:
		return validationf("fee must not be negative")
	}
	switch e.LocationType {
	case LocationPhysical:
		if e.Location == "" {
			return validationf("location is required for physical events")
		}
		if e.NumberOfSeats < 1 {
			return validationf("numberOfSeats is required for physical events")
		}
		if e.Time == "" {
			return validationf("time is required for physical events")
		}
	case LocationOnline:
		if e.EventLink == "" {
			return validationf("eventLink is required for online events")
		}
	default:
		return validationf("locationType must be %q or %q", LocationPhysical, LocationOnline)
	}
	return nil
}

// ValidateRegistration checks the conditional registration rules against the
// event being booked: payment fields when the event charges a fee, study
// fields when the attendee wants to enroll.
func (e *Event) ValidateRegistration(r *Registration) error {
	switch {
	case r.Name == "":
		return validationf("name is required")
	case r.Email == "":
		return validationf("email is required")
	case r.Phone == "":
		return validationf("phone is required")
	}
	if r.StudyStatus == StudyWantToStudy {
		switch {
		case r.SchoolYear == "":
			return validationf("schoolYear is required when studyStatus is %q", StudyWantToStudy)
		case r.Address == "":
			return validationf("address is required when studyStatus is %q", StudyWantToStudy)
		case r.Technology == "":
			return validationf("technology is required when studyStatus is %q", StudyWantToStudy)
		}
	}
	if e.Fee > 0 {
		if r.TransactionID == "" || r.PaymentMethod == "" {
			return validationf("transactionId and paymentMethod are required for paid events")
		}
	}
	return nil
}

// Validate checks a review before it is appended to an event.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return validationf("rating must be between 1 and 5")
	}
	if r.Comment == "" {
		return validationf("comment is required")
	}
	return nil
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleOrganizer, RoleSuperAdmin:
		return true
	}
	return false
}

// Booking is an attendee-facing view: one registration plus the event it
// belongs to, stripped of other attendees' data.
type Booking struct {
	EventID      string       `json:"eventId"`
	EventName    string       `json:"eventName"`
	Date         time.Time    `json:"date"`
	Location     string       `json:"location"`
	Fee          int          `json:"fee"`
	Registration Registration `json:"registration"`
}

// PaymentRequest is an organizer-facing view of one registration awaiting or
// past payment review.
type PaymentRequest struct {
	EventID      string       `json:"eventId"`
	EventName    string       `json:"eventName"`
	Registration Registration `json:"registration"`
}

// EventReview pairs a review with the event it was left on.
type EventReview struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Review    Review `json:"review"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id, role string) error
	// BackfillStudyProfile copies study fields from a registration onto the
	// user record, but only when the user has no established study status.
	BackfillStudyProfile(ctx context.Context, email string, r Registration) error
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context) ([]Event, error)
	Featured(ctx context.Context, limit int) ([]Event, error)
	Categories(ctx context.Context) ([]string, error)
	RecentReviews(ctx context.Context, limit int) ([]EventReview, error)
	Replace(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) error

	// AddRegistration appends r unless the email already holds a
	// registration on the event. The uniqueness check and the append are one
	// atomic conditional update.
	AddRegistration(ctx context.Context, eventID string, r Registration) error
	RemoveRegistration(ctx context.Context, eventID, email string) error
	BookingsByEmail(ctx context.Context, email string) ([]Booking, error)

	PaymentRequests(ctx context.Context, organizerEmail string) ([]PaymentRequest, error)
	// SetPaymentStatus moves a pending registration to accepted or rejected.
	// The filter carries the ownership check and the pending guard; a
	// registration in a terminal state yields ErrDuplicate.
	SetPaymentStatus(ctx context.Context, organizerEmail, registrationID, status string) error

	// ValidateTicket marks the ticket used exactly once.
	ValidateTicket(ctx context.Context, ticketID string) (Booking, error)

	// AddReview appends rv if the reviewer holds an accepted or free
	// registration and has not reviewed the event yet.
	AddReview(ctx context.Context, eventID string, rv Review) error
}
