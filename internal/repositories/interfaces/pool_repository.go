package interfaces

import (
	"context"
	"time"

	"poolride/internal/models"
	"poolride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoolFilter is the server-side listing filter: status, exact type, exact
// date. Gender/community visibility is applied on top by the policy layer.
type PoolFilter struct {
	Status models.PoolStatus
	Type   models.PoolType
	Date   *time.Time
}

type PoolRepository interface {
	Create(ctx context.Context, pool *models.Pool) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pool, error)

	// List returns one page of pools matching the filter plus the total
	// match count. A nil page returns everything.
	List(ctx context.Context, filter *PoolFilter, page *utils.PaginationParams) ([]*models.Pool, int64, error)
	ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]*models.Pool, error)
	ListJoined(ctx context.Context, userID primitive.ObjectID) ([]*models.Pool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddParticipant appends a fresh joined entry; ReactivateParticipant
	// flips an existing left/removed entry back to joined with a new
	// timestamp. Both re-assert upcoming status and spare capacity in the
	// update filter and return ErrPreconditionFailed when the document no
	// longer qualifies, so capacity cannot be raced past.
	AddParticipant(ctx context.Context, poolID primitive.ObjectID, participant models.Participant) error
	ReactivateParticipant(ctx context.Context, poolID, userID primitive.ObjectID, joinedAt time.Time) error

	SetParticipantStatus(ctx context.Context, poolID, userID primitive.ObjectID, status models.ParticipantStatus) error
	UpdateStatus(ctx context.Context, poolID primitive.ObjectID, status models.PoolStatus) error

	// Cancel transitions the pool to cancelled and force-removes every
	// joined participant except the creator, in one update.
	Cancel(ctx context.Context, poolID, creatorID primitive.ObjectID) error

	// DeleteCompletedBefore removes completed pools whose last update is
	// older than cutoff and returns how many were deleted.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
