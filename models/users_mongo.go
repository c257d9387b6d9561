package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoOpTimeout = 5 * time.Second

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepository(col *mongo.Collection) UserRepository {
	return &mongoUserRepo{col: col}
}

func (r *mongoUserRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = RoleStudent
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var u User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *mongoUserRepo) List(ctx context.Context) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []User
	for cur.Next(ctx) {
		var u User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, cur.Err()
}

func (r *mongoUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BackfillStudyProfile syncs study fields from a first registration onto the
// user record. The no-prior-status condition sits in the filter so an
// established profile is never overwritten.
func (r *mongoUserRepo) BackfillStudyProfile(ctx context.Context, email string, reg Registration) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	set := bson.M{
		"studyStatus": reg.StudyStatus,
		"updatedAt":   time.Now().UTC(),
	}
	if reg.Phone != "" {
		set["phone"] = reg.Phone
	}
	if reg.Address != "" {
		set["address"] = reg.Address
	}
	if reg.Technology != "" {
		set["technology"] = reg.Technology
	}
	if reg.SchoolYear != "" {
		set["schoolYear"] = reg.SchoolYear
	}

	filter := bson.M{
		"email": email,
		"$or": bson.A{
			bson.M{"studyStatus": bson.M{"$exists": false}},
			bson.M{"studyStatus": ""},
		},
	}
	_, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	return err
}
