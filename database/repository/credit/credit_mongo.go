package creditRepo

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

// MongoCreditRepo implements Repository using MongoDB.
type MongoCreditRepo struct {
	coll *mongo.Collection
}

// NewMongoCreditRepo constructs a new instance of MongoCreditRepo.
func NewMongoCreditRepo() *MongoCreditRepo {
	return &MongoCreditRepo{coll: database.DB().Collection("credits")}
}

// EnsureIndexes creates the necessary indexes on the credits collection.
func (r *MongoCreditRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "combo_order_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("student_combo_unique"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create credit indexes: %w", err)
	}
	return nil
}

// Debit is a single conditional $inc: the filter requires the balance to
// cover n, so the account can never go negative no matter how many debits
// race on the same combo order.
func (r *MongoCreditRepo) Debit(ctx context.Context, studentID, comboOrderID string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"student_id":      studentID,
		"combo_order_id":  comboOrderID,
		"remaining_slots": bson.M{"$gte": n},
	}
	update := bson.M{"$inc": bson.M{"remaining_slots": -n}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error debiting combo %s: %w", comboOrderID, err)
	}
	if res.MatchedCount == 0 {
		// Either the account is missing or the balance is too low.
		count, cerr := r.coll.CountDocuments(ctx, bson.M{"student_id": studentID, "combo_order_id": comboOrderID}, options.Count().SetLimit(1))
		if cerr != nil {
			return fmt.Errorf("error checking combo %s: %w", comboOrderID, cerr)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficient
	}
	return nil
}

func (r *MongoCreditRepo) Credit(ctx context.Context, studentID, comboOrderID string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"student_id": studentID, "combo_order_id": comboOrderID}
	update := bson.M{"$inc": bson.M{"remaining_slots": n}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error crediting combo %s: %w", comboOrderID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCreditRepo) Get(ctx context.Context, studentID, comboOrderID string) (*models.CreditAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"student_id": studentID, "combo_order_id": comboOrderID}
	var acct models.CreditAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&acct); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching combo %s: %w", comboOrderID, err)
	}
	return &acct, nil
}
