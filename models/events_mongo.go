package models

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

func (r *mongoEventRepo) Create(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Registrations == nil {
		e.Registrations = []Registration{}
	}
	if e.Reviews == nil {
		e.Reviews = []Review{}
	}
	_, err := r.col.InsertOne(ctx, e)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id string) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

func (r *mongoEventRepo) List(ctx context.Context) ([]Event, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

// Featured returns the most recently created events. The sort key is an
// explicit createdAt descending.
func (r *mongoEventRepo) Featured(ctx context.Context, limit int) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoEventRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	raw, err := r.col.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *mongoEventRepo) RecentReviews(ctx context.Context, limit int) ([]EventReview, error) {
	events, err := r.find(ctx,
		bson.M{"reviews.0": bson.M{"$exists": true}},
		options.Find().SetProjection(bson.M{"eventName": 1, "reviews": 1}),
	)
	if err != nil {
		return nil, err
	}

	var out []EventReview
	for _, e := range events {
		for _, rv := range e.Reviews {
			out = append(out, EventReview{EventID: e.ID, EventName: e.EventName, Review: rv})
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

func (r *mongoEventRepo) Replace(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	e.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRegistration appends the registration in one conditional update: the
// filter excludes events that already hold a registration for this email, so
// two simultaneous bookings cannot both pass a separate uniqueness check.
func (r *mongoEventRepo) AddRegistration(ctx context.Context, eventID string, reg Registration) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                 eventID,
		"registrations.email": bson.M{"$ne": reg.Email},
	}
	update := bson.M{
		"$push": bson.M{"registrations": reg},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the event is missing or the email is already registered.
		if err := r.col.FindOne(ctx, bson.M{"_id": eventID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		return ErrDuplicate
	}
	return nil
}

func (r *mongoEventRepo) RemoveRegistration(ctx context.Context, eventID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"registrations": bson.M{"email": email}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": eventID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) BookingsByEmail(ctx context.Context, email string) ([]Booking, error) {
	events, err := r.find(ctx,
		bson.M{"registrations.email": email},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var out []Booking
	for _, e := range events {
		for _, reg := range e.Registrations {
			if reg.Email == email {
				out = append(out, Booking{
					EventID:      e.ID,
					EventName:    e.EventName,
					Date:         e.Date,
					Location:     e.Location,
					Fee:          e.Fee,
					Registration: reg,
				})
			}
		}
	}
	return out, nil
}

func (r *mongoEventRepo) PaymentRequests(ctx context.Context, organizerEmail string) ([]PaymentRequest, error) {
	events, err := r.find(ctx, bson.M{"organizerEmail": organizerEmail}, nil)
	if err != nil {
		return nil, err
	}

	var out []PaymentRequest
	for _, e := range events {
		if e.Fee == 0 {
			continue
		}
		for _, reg := range e.Registrations {
			out = append(out, PaymentRequest{EventID: e.ID, EventName: e.EventName, Registration: reg})
		}
	}
	return out, nil
}

// SetPaymentStatus is one conditional update. Ownership and the pending
// guard both live in the filter, so an organizer cannot touch another
// organizer's event and terminal states cannot be re-transitioned.
func (r *mongoEventRepo) SetPaymentStatus(ctx context.Context, organizerEmail, registrationID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"organizerEmail": organizerEmail,
		"registrations": bson.M{"$elemMatch": bson.M{
			"id":            registrationID,
			"paymentStatus": PaymentPending,
		}},
	}
	update := bson.M{"$set": bson.M{
		"registrations.$.paymentStatus": status,
		"updatedAt":                     time.Now().UTC(),
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.diagnosePayment(ctx, organizerEmail, registrationID)
}

func (r *mongoEventRepo) diagnosePayment(ctx context.Context, organizerEmail, registrationID string) error {
	var e Event
	err := r.col.FindOne(ctx, bson.M{"registrations.id": registrationID}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if e.OrganizerEmail != organizerEmail {
		return ErrForbidden
	}
	// Registration exists on the caller's event, so the pending guard failed.
	return ErrDuplicate
}

// ValidateTicket is the admission gate: exactly one validation may flip the
// used flag. The settled-payment and unused conditions sit in the filter of
// a single update; the follow-up read only picks the right error.
func (r *mongoEventRepo) ValidateTicket(ctx context.Context, ticketID string) (Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{
		"registrations": bson.M{"$elemMatch": bson.M{
			"ticket.id":     ticketID,
			"ticket.used":   false,
			"paymentStatus": bson.M{"$in": bson.A{PaymentAccepted, PaymentFree}},
		}},
	}
	update := bson.M{"$set": bson.M{
		"registrations.$.ticket.used":   true,
		"registrations.$.ticket.usedAt": now,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return Booking{}, err
	}

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"registrations.ticket.id": ticketID}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	var reg Registration
	for _, candidate := range e.Registrations {
		if candidate.Ticket.ID == ticketID {
			reg = candidate
			break
		}
	}

	if res.ModifiedCount == 0 {
		if reg.PaymentStatus != PaymentAccepted && reg.PaymentStatus != PaymentFree {
			return Booking{}, ErrForbidden
		}
		return Booking{}, ErrTicketUsed
	}
	return Booking{
		EventID:      e.ID,
		EventName:    e.EventName,
		Date:         e.Date,
		Location:     e.Location,
		Fee:          e.Fee,
		Registration: reg,
	}, nil
}

// AddReview requires a settled registration by the reviewer and no prior
// review, both expressed in the filter of one conditional update.
func (r *mongoEventRepo) AddReview(ctx context.Context, eventID string, rv Review) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"_id": eventID,
		"registrations": bson.M{"$elemMatch": bson.M{
			"email":         rv.Email,
			"paymentStatus": bson.M{"$in": bson.A{PaymentAccepted, PaymentFree}},
		}},
		"reviews.email": bson.M{"$ne": rv.Email},
	}
	update := bson.M{
		"$push": bson.M{"reviews": rv},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"_id": eventID}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	for _, existing := range e.Reviews {
		if existing.Email == rv.Email {
			return ErrDuplicate
		}
	}
	return ErrForbidden
}
