package interfaces

import (
	"context"

	"poolride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error

	// UpdateTrustScore overwrites the trust score with a freshly recomputed
	// value; DeductTrustPoints applies a flat penalty flooring at zero.
	UpdateTrustScore(ctx context.Context, id primitive.ObjectID, score int) error
	DeductTrustPoints(ctx context.Context, id primitive.ObjectID, points int) error
}
