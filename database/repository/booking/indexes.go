package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tutorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
// The partial unique index over active statuses is the commit-time backstop
// for the one-active-booking-per-key invariant: even if every in-process
// guard fails, a second insert on the same key cannot land.
func (r *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{
				{Key: "tutor_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("active_key_unique").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": bson.A{
						models.StatusPending,
						models.StatusTutorConfirmed,
						models.StatusApproved,
					}},
				}),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("student_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("status_date_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
