package mongodb

import (
	"context"
	"fmt"
	"time"

	"poolride/internal/models"
	"poolride/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type feedbackRepository struct {
	collection *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) interfaces.FeedbackRepository {
	return &feedbackRepository{
		collection: db.Collection("feedback"),
	}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.ID = primitive.NewObjectID()
	feedback.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

func (r *feedbackRepository) Exists(ctx context.Context, rideID, raterID, ratedUserID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"ride_id":       rideID,
		"rater_id":      raterID,
		"rated_user_id": ratedUserID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check feedback existence: %w", err)
	}

	return count > 0, nil
}

func (r *feedbackRepository) ListByRatedUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	return r.findFeedback(ctx, bson.M{"rated_user_id": userID})
}

func (r *feedbackRepository) ListByRater(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	return r.findFeedback(ctx, bson.M{"rater_id": userID})
}

func (r *feedbackRepository) ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]models.Feedback, error) {
	return r.findFeedback(ctx, bson.M{"ride_id": rideID})
}

func (r *feedbackRepository) findFeedback(ctx context.Context, query bson.M) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var feedbacks []models.Feedback
	for cursor.Next(ctx) {
		var feedback models.Feedback
		if err := cursor.Decode(&feedback); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
		feedbacks = append(feedbacks, feedback)
	}

	return feedbacks, cursor.Err()
}
