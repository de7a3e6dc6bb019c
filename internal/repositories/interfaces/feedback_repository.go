package interfaces

import (
	"context"

	"poolride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackRepository interface {
	// Create inserts an immutable feedback record. A second record for the
	// same (ride, rater, rated) triple fails with ErrDuplicateKey.
	Create(ctx context.Context, feedback *models.Feedback) error

	Exists(ctx context.Context, rideID, raterID, ratedUserID primitive.ObjectID) (bool, error)
	ListByRatedUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error)
	ListByRater(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error)
	ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]models.Feedback, error)
}
