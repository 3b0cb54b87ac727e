package bookingRepo

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

// MongoBookingRepo implements Repository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{coll: database.DB().Collection("bookings")}
}

var activeStatuses = bson.A{
	models.StatusPending,
	models.StatusTutorConfirmed,
	models.StatusApproved,
}

func (r *MongoBookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrKeyTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) FindActiveByKey(ctx context.Context, tutorID, date, slotID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tutor_id": tutorID,
		"date":     date,
		"slot_id":  slotID,
		"status":   bson.M{"$in": activeStatuses},
	}
	var b models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching active booking: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListActiveByTutorDate(ctx context.Context, tutorID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tutor_id": tutorID,
		"date":     date,
		"status":   bson.M{"$in": activeStatuses},
	}
	return r.list(ctx, filter)
}

func (r *MongoBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.list(ctx, bson.M{"student_id": studentID})
}

func (r *MongoBookingRepo) ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.list(ctx, bson.M{"tutor_id": tutorID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus performs a conditional update filtered on the expected
// current status, so two racing transitions on the same booking cannot both
// land.
func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, set map[string]interface{}) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range set {
		fields[k] = v
	}

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": fields}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}

	// No match: tell the caller whether the booking is missing or the
	// status moved underneath them.
	count, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return nil, fmt.Errorf("error checking booking %s: %w", id, cerr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStaleStatus
}

func (r *MongoBookingRepo) ListApprovedEndedBefore(ctx context.Context, t time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	day := t.Format("2006-01-02")
	minutes := t.Hour()*60 + t.Minute()

	filter := bson.M{
		"status": models.StatusApproved,
		"$or": bson.A{
			bson.M{"date": bson.M{"$lt": day}},
			bson.M{"date": day, "end": bson.M{"$lte": minutes}},
		},
	}
	return r.list(ctx, filter)
}
