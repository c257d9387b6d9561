package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a Mongo client and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the write paths rely on. The unique
// email index backs the user natural key; the ticket and organizer indexes
// keep the admission gate and payment queries off collection scans.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	users := database.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	events := database.Collection("events")
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organizerEmail", Value: 1}},
			Options: options.Index().SetName("events_organizer_email"),
		},
		{
			Keys:    bson.D{{Key: "registrations.ticket.id", Value: 1}},
			Options: options.Index().SetName("events_ticket_id"),
		},
		{
			Keys:    bson.D{{Key: "registrations.email", Value: 1}},
			Options: options.Index().SetName("events_registration_email"),
		},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}
	return nil
}
