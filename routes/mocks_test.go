package routes_test

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diploma360/models"
)

// In-memory repositories mirroring the conditional-update semantics of the
// Mongo implementations.

type memUserRepo struct {
	users map[string]models.User // keyed by email
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]models.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, ok := m.users[u.Email]; ok {
		return models.ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	m.users[u.Email] = *u
	return nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	for email, u := range m.users {
		if u.ID.Hex() == id {
			u.Role = role
			m.users[email] = u
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memUserRepo) BackfillStudyProfile(ctx context.Context, email string, r models.Registration) error {
	u, ok := m.users[email]
	if !ok || u.StudyStatus != "" {
		return nil
	}
	u.StudyStatus = r.StudyStatus
	u.Phone = r.Phone
	u.Address = r.Address
	u.Technology = r.Technology
	u.SchoolYear = r.SchoolYear
	m.users[email] = u
	return nil
}

type memEventRepo struct {
	items map[string]models.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{items: map[string]models.Event{}}
}

func (m *memEventRepo) Create(ctx context.Context, e *models.Event) error {
	if _, ok := m.items[e.ID]; ok {
		return models.ErrDuplicate
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.items[e.ID] = *e
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, id string) (models.Event, error) {
	e, ok := m.items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *memEventRepo) List(ctx context.Context) ([]models.Event, error) {
	out := make([]models.Event, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memEventRepo) Featured(ctx context.Context, limit int) ([]models.Event, error) {
	out, _ := m.List(ctx)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memEventRepo) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, e := range m.items {
		seen[e.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memEventRepo) RecentReviews(ctx context.Context, limit int) ([]models.EventReview, error) {
	var out []models.EventReview
	for _, e := range m.items {
		for _, rv := range e.Reviews {
			out = append(out, models.EventReview{EventID: e.ID, EventName: e.EventName, Review: rv})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Review.CreatedAt.After(out[j].Review.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memEventRepo) Replace(ctx context.Context, e *models.Event) error {
	if _, ok := m.items[e.ID]; !ok {
		return models.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	m.items[e.ID] = *e
	return nil
}

func (m *memEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memEventRepo) AddRegistration(ctx context.Context, eventID string, r models.Registration) error {
	e, ok := m.items[eventID]
	if !ok {
		return models.ErrNotFound
	}
	for _, existing := range e.Registrations {
		if existing.Email == r.Email {
			return models.ErrDuplicate
		}
	}
	e.Registrations = append(e.Registrations, r)
	m.items[eventID] = e
	return nil
}

func (m *memEventRepo) RemoveRegistration(ctx context.Context, eventID, email string) error {
	e, ok := m.items[eventID]
	if !ok {
		return models.ErrNotFound
	}
	for i, existing := range e.Registrations {
		if existing.Email == email {
			e.Registrations = append(e.Registrations[:i], e.Registrations[i+1:]...)
			m.items[eventID] = e
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memEventRepo) BookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	var out []models.Booking
	for _, e := range m.items {
		for _, r := range e.Registrations {
			if r.Email == email {
				out = append(out, models.Booking{
					EventID:      e.ID,
					EventName:    e.EventName,
					Date:         e.Date,
					Location:     e.Location,
					Fee:          e.Fee,
					Registration: r,
				})
			}
		}
	}
	return out, nil
}

func (m *memEventRepo) PaymentRequests(ctx context.Context, organizerEmail string) ([]models.PaymentRequest, error) {
	var out []models.PaymentRequest
	for _, e := range m.items {
		if e.OrganizerEmail != organizerEmail || e.Fee == 0 {
			continue
		}
		for _, r := range e.Registrations {
			out = append(out, models.PaymentRequest{EventID: e.ID, EventName: e.EventName, Registration: r})
		}
	}
	return out, nil
}

func (m *memEventRepo) SetPaymentStatus(ctx context.Context, organizerEmail, registrationID, status string) error {
	for id, e := range m.items {
		for i, r := range e.Registrations {
			if r.ID != registrationID {
				continue
			}
			if e.OrganizerEmail != organizerEmail {
				return models.ErrForbidden
			}
			if r.PaymentStatus != models.PaymentPending {
				return models.ErrDuplicate
			}
			e.Registrations[i].PaymentStatus = status
			m.items[id] = e
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memEventRepo) ValidateTicket(ctx context.Context, ticketID string) (models.Booking, error) {
	for id, e := range m.items {
		for i, r := range e.Registrations {
			if r.Ticket.ID != ticketID {
				continue
			}
			if r.PaymentStatus != models.PaymentAccepted && r.PaymentStatus != models.PaymentFree {
				return models.Booking{}, models.ErrForbidden
			}
			if r.Ticket.Used {
				return models.Booking{}, models.ErrTicketUsed
			}
			now := time.Now().UTC()
			e.Registrations[i].Ticket.Used = true
			e.Registrations[i].Ticket.UsedAt = &now
			m.items[id] = e
			return models.Booking{
				EventID:      e.ID,
				EventName:    e.EventName,
				Date:         e.Date,
				Location:     e.Location,
				Fee:          e.Fee,
				Registration: e.Registrations[i],
			}, nil
		}
	}
	return models.Booking{}, models.ErrNotFound
}

func (m *memEventRepo) AddReview(ctx context.Context, eventID string, rv models.Review) error {
	e, ok := m.items[eventID]
	if !ok {
		return models.ErrNotFound
	}
	for _, existing := range e.Reviews {
		if existing.Email == rv.Email {
			return models.ErrDuplicate
		}
	}
	settled := false
	for _, r := range e.Registrations {
		if r.Email == rv.Email &&
			(r.PaymentStatus == models.PaymentAccepted || r.PaymentStatus == models.PaymentFree) {
			settled = true
			break
		}
	}
	if !settled {
		return models.ErrForbidden
	}
	e.Reviews = append(e.Reviews, rv)
	m.items[eventID] = e
	return nil
}
