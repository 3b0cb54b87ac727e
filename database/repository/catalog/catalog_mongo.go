package catalogRepo

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

// MongoCatalogRepo implements Repository using MongoDB.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo constructs a new instance of MongoCatalogRepo.
func NewMongoCatalogRepo() *MongoCatalogRepo {
	return &MongoCatalogRepo{coll: database.DB().Collection("timeslots")}
}

// EnsureIndexes creates the necessary indexes on the timeslots collection.
func (r *MongoCatalogRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "start", Value: 1}},
			Options: options.Index().SetName("start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) Seed(ctx context.Context, slots []models.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("refusing to seed invalid slot: %w", err)
		}
		filter := bson.M{"id": slot.ID}
		update := bson.M{"$set": slot}
		opts := options.Update().SetUpsert(true)
		if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to seed timeslot %s: %w", slot.ID, err)
		}
	}
	return nil
}

func (r *MongoCatalogRepo) List(ctx context.Context) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing timeslots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding timeslots: %w", err)
	}
	return slots, nil
}

func (r *MongoCatalogRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.TimeSlot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching timeslot %s: %w", slotID, err)
	}
	return &slot, nil
}
