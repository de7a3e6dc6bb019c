package services

import (
	"context"
	"time"

	"poolride/internal/models"
	"poolride/internal/repositories/interfaces"
	"poolride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. Conditional writes mirror the production
// update filters: they re-check status, capacity, and membership at write
// time and fail with ErrPreconditionFailed when the document no longer
// qualifies.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return interfaces.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	result := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			copied := *user
			result[id] = &copied
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	for field, value := range updates {
		switch field {
		case "name":
			user.Name = value.(string)
		case "phone":
			user.Phone = value.(string)
		case "gender":
			user.Gender = value.(models.Gender)
		case "community":
			user.Community = value.([]string)
		case "profile_picture":
			user.ProfilePicture = value.(string)
		}
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) UpdateTrustScore(_ context.Context, id primitive.ObjectID, score int) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.TrustScore = score
	return nil
}

func (r *fakeUserRepo) DeductTrustPoints(_ context.Context, id primitive.ObjectID, points int) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.TrustScore -= points
	if user.TrustScore < models.TrustScoreMin {
		user.TrustScore = models.TrustScoreMin
	}
	return nil
}

type fakePoolRepo struct {
	pools map[primitive.ObjectID]*models.Pool

	// beforeAdd runs inside AddParticipant before the capacity check,
	// letting tests change the pool between a service's read and write.
	beforeAdd func()
}

func newFakePoolRepo(pools ...*models.Pool) *fakePoolRepo {
	repo := &fakePoolRepo{pools: make(map[primitive.ObjectID]*models.Pool)}
	for _, pool := range pools {
		repo.pools[pool.ID] = pool
	}
	return repo
}

func copyPool(pool *models.Pool) *models.Pool {
	copied := *pool
	copied.Participants = append([]models.Participant(nil), pool.Participants...)
	return &copied
}

func (r *fakePoolRepo) Create(_ context.Context, pool *models.Pool) error {
	if pool.ID.IsZero() {
		pool.ID = primitive.NewObjectID()
	}
	pool.CreatedAt = time.Now()
	pool.UpdatedAt = pool.CreatedAt
	r.pools[pool.ID] = copyPool(pool)
	return nil
}

func (r *fakePoolRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Pool, error) {
	pool, ok := r.pools[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyPool(pool), nil
}

func (r *fakePoolRepo) List(_ context.Context, filter *interfaces.PoolFilter, _ *utils.PaginationParams) ([]*models.Pool, int64, error) {
	var result []*models.Pool
	for _, pool := range r.pools {
		if filter.Status != "" && pool.Status != filter.Status {
			continue
		}
		if filter.Type != "" && pool.Type != filter.Type {
			continue
		}
		result = append(result, copyPool(pool))
	}
	return result, int64(len(result)), nil
}

func (r *fakePoolRepo) ListByCreator(_ context.Context, userID primitive.ObjectID) ([]*models.Pool, error) {
	var result []*models.Pool
	for _, pool := range r.pools {
		if pool.CreatedBy == userID {
			result = append(result, copyPool(pool))
		}
	}
	return result, nil
}

func (r *fakePoolRepo) ListJoined(_ context.Context, userID primitive.ObjectID) ([]*models.Pool, error) {
	var result []*models.Pool
	for _, pool := range r.pools {
		if pool.CreatedBy != userID && pool.HasJoined(userID) {
			result = append(result, copyPool(pool))
		}
	}
	return result, nil
}

func (r *fakePoolRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.pools[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.pools, id)
	return nil
}

func (r *fakePoolRepo) AddParticipant(_ context.Context, poolID primitive.ObjectID, participant models.Participant) error {
	if r.beforeAdd != nil {
		r.beforeAdd()
	}

	pool, ok := r.pools[poolID]
	if !ok {
		return interfaces.ErrPreconditionFailed
	}
	if pool.Status != models.PoolStatusUpcoming || pool.IsFull() || pool.FindParticipant(participant.UserID) != nil {
		return interfaces.ErrPreconditionFailed
	}

	pool.Participants = append(pool.Participants, participant)
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *fakePoolRepo) ReactivateParticipant(_ context.Context, poolID, userID primitive.ObjectID, joinedAt time.Time) error {
	pool, ok := r.pools[poolID]
	if !ok {
		return interfaces.ErrPreconditionFailed
	}

	participant := pool.FindParticipant(userID)
	if participant == nil || participant.Status == models.ParticipantJoined {
		return interfaces.ErrPreconditionFailed
	}
	if pool.Status != models.PoolStatusUpcoming || pool.IsFull() {
		return interfaces.ErrPreconditionFailed
	}

	participant.Status = models.ParticipantJoined
	participant.JoinedAt = joinedAt
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *fakePoolRepo) SetParticipantStatus(_ context.Context, poolID, userID primitive.ObjectID, status models.ParticipantStatus) error {
	pool, ok := r.pools[poolID]
	if !ok {
		return interfaces.ErrNotFound
	}

	participant := pool.FindParticipant(userID)
	if participant == nil {
		return interfaces.ErrNotFound
	}

	participant.Status = status
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *fakePoolRepo) UpdateStatus(_ context.Context, poolID primitive.ObjectID, status models.PoolStatus) error {
	pool, ok := r.pools[poolID]
	if !ok {
		return interfaces.ErrNotFound
	}
	pool.Status = status
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *fakePoolRepo) Cancel(_ context.Context, poolID, creatorID primitive.ObjectID) error {
	pool, ok := r.pools[poolID]
	if !ok {
		return interfaces.ErrNotFound
	}

	pool.Status = models.PoolStatusCancelled
	for i := range pool.Participants {
		if pool.Participants[i].UserID != creatorID && pool.Participants[i].Status == models.ParticipantJoined {
			pool.Participants[i].Status = models.ParticipantRemoved
		}
	}
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *fakePoolRepo) DeleteCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, pool := range r.pools {
		if pool.Status == models.PoolStatusCompleted && pool.UpdatedAt.Before(cutoff) {
			delete(r.pools, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeFeedbackRepo struct {
	feedbacks []models.Feedback
}

func (r *fakeFeedbackRepo) Create(_ context.Context, feedback *models.Feedback) error {
	for _, existing := range r.feedbacks {
		if existing.RideID == feedback.RideID &&
			existing.RaterID == feedback.RaterID &&
			existing.RatedUserID == feedback.RatedUserID {
			return interfaces.ErrDuplicateKey
		}
	}

	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	r.feedbacks = append(r.feedbacks, *feedback)
	return nil
}

func (r *fakeFeedbackRepo) Exists(_ context.Context, rideID, raterID, ratedUserID primitive.ObjectID) (bool, error) {
	for _, existing := range r.feedbacks {
		if existing.RideID == rideID && existing.RaterID == raterID && existing.RatedUserID == ratedUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFeedbackRepo) ListByRatedUser(_ context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	var result []models.Feedback
	for _, feedback := range r.feedbacks {
		if feedback.RatedUserID == userID {
			result = append(result, feedback)
		}
	}
	return result, nil
}

func (r *fakeFeedbackRepo) ListByRater(_ context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	var result []models.Feedback
	for _, feedback := range r.feedbacks {
		if feedback.RaterID == userID {
			result = append(result, feedback)
		}
	}
	return result, nil
}

func (r *fakeFeedbackRepo) ListByRide(_ context.Context, rideID primitive.ObjectID) ([]models.Feedback, error) {
	var result []models.Feedback
	for _, feedback := range r.feedbacks {
		if feedback.RideID == rideID {
			result = append(result, feedback)
		}
	}
	return result, nil
}
