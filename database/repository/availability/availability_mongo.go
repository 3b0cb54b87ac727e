package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"tutorhub/database"
	"tutorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAvailabilityRepo implements Repository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() *MongoAvailabilityRepo {
	return &MongoAvailabilityRepo{coll: database.DB().Collection("availability")}
}

// EnsureIndexes creates the necessary indexes on the availability collection.
func (r *MongoAvailabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Uniqueness invariant: one row per (tutor, date, slot).
		{
			Keys: bson.D{
				{Key: "tutor_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("tutor_date_slot_unique"),
		},
		{
			Keys:    bson.D{{Key: "tutor_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("tutor_date_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	return nil
}

// ReplaceDay deletes the tutor's rows for the date and inserts the requested
// set inside a single mongo transaction, so readers never observe a half
// reconciled day.
func (r *MongoAvailabilityRepo) ReplaceDay(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	rows := make([]models.Availability, 0, len(slotIDs))
	for _, slotID := range slotIDs {
		rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: slotID})
	}

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.coll.DeleteMany(sc, bson.M{"tutor_id": tutorID, "date": date}); err != nil {
			return fmt.Errorf("clear day failed: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		docs := make([]interface{}, len(rows))
		for i, row := range rows {
			docs[i] = row
		}
		if _, err := r.coll.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert day failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, fmt.Errorf("availability reconciliation failed: %w", err)
	}

	return rows, nil
}

func (r *MongoAvailabilityRepo) ListByDate(ctx context.Context, tutorID, date string) ([]models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"tutor_id": tutorID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("error listing availability: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.Availability
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding availability: %w", err)
	}
	return rows, nil
}

func (r *MongoAvailabilityRepo) ListRange(ctx context.Context, tutorID, from, to string) ([]models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tutor_id": tutorID,
		"date":     bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "slot_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing availability range: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.Availability
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding availability range: %w", err)
	}
	return rows, nil
}

func (r *MongoAvailabilityRepo) Exists(ctx context.Context, tutorID, date, slotID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"tutor_id": tutorID, "date": date, "slot_id": slotID}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking availability: %w", err)
	}
	return count > 0, nil
}
