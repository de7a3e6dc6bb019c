package mongodb

import (
	"context"
	"fmt"
	"time"

	"poolride/internal/models"
	"poolride/internal/repositories/interfaces"
	"poolride/internal/services"
	"poolride/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type poolRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewPoolRepository(db *mongo.Database, cache services.CacheService) interfaces.PoolRepository {
	return &poolRepository{
		collection: db.Collection("pools"),
		cache:      cache,
	}
}

// spareCapacity re-asserts inside the update filter that the pool is still
// upcoming and has a seat left. Conditioning the write itself is what keeps
// concurrent joins from overbooking.
func spareCapacity(poolID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":    poolID,
		"status": models.PoolStatusUpcoming,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$participants",
				"cond":  bson.M{"$eq": bson.A{"$$this.status", models.ParticipantJoined}},
			}}},
			"$max_seats",
		}},
	}
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	pool.ID = primitive.NewObjectID()
	pool.CreatedAt = time.Now()
	pool.UpdatedAt = pool.CreatedAt

	_, err := r.collection.InsertOne(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	if pool.Status == models.PoolStatusUpcoming {
		r.cache.CachePool(ctx, pool)
	}

	return nil
}

func (r *poolRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pool, error) {
	if pool := r.cache.GetCachedPool(ctx, id); pool != nil {
		return pool, nil
	}

	var pool models.Pool
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pool)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	if pool.Status == models.PoolStatusUpcoming {
		r.cache.CachePool(ctx, &pool)
	}

	return &pool, nil
}

func (r *poolRepository) List(ctx context.Context, filter *interfaces.PoolFilter, page *utils.PaginationParams) ([]*models.Pool, int64, error) {
	query := bson.M{}

	if filter != nil {
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.Type != "" {
			query["type"] = filter.Type
		}
		if filter.Date != nil {
			query["date"] = bson.M{
				"$gte": utils.StartOfDay(*filter.Date),
				"$lt":  utils.StartOfDay(filter.Date.AddDate(0, 0, 1)),
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pools: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	if page != nil {
		opts = page.FindOptions()
	}

	pools, err := r.findPools(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	return pools, total, nil
}

func (r *poolRepository) ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]*models.Pool, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.findPools(ctx, bson.M{"created_by": userID}, opts)
}

func (r *poolRepository) ListJoined(ctx context.Context, userID primitive.ObjectID) ([]*models.Pool, error) {
	query := bson.M{
		"created_by": bson.M{"$ne": userID},
		"participants": bson.M{"$elemMatch": bson.M{
			"user_id": userID,
			"status":  models.ParticipantJoined,
		}},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.findPools(ctx, query, opts)
}

func (r *poolRepository) findPools(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.Pool, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	defer cursor.Close(ctx)

	var pools []*models.Pool
	for cursor.Next(ctx) {
		var pool models.Pool
		if err := cursor.Decode(&pool); err != nil {
			return nil, fmt.Errorf("failed to decode pool: %w", err)
		}
		pools = append(pools, &pool)
	}

	return pools, cursor.Err()
}

func (r *poolRepository) AddParticipant(ctx context.Context, poolID primitive.ObjectID, participant models.Participant) error {
	filter := spareCapacity(poolID)
	// One entry per user: the push must not duplicate an existing entry.
	filter["participants.user_id"] = bson.M{"$ne": participant.UserID}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"participants": participant},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrPreconditionFailed
	}

	r.cache.InvalidatePool(ctx, poolID)

	return nil
}

func (r *poolRepository) ReactivateParticipant(ctx context.Context, poolID, userID primitive.ObjectID, joinedAt time.Time) error {
	filter := spareCapacity(poolID)
	filter["participants"] = bson.M{"$elemMatch": bson.M{
		"user_id": userID,
		"status":  bson.M{"$ne": models.ParticipantJoined},
	}}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"participants.$.status":    models.ParticipantJoined,
			"participants.$.joined_at": joinedAt,
			"updated_at":               time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to reactivate participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrPreconditionFailed
	}

	r.cache.InvalidatePool(ctx, poolID)

	return nil
}

func (r *poolRepository) SetParticipantStatus(ctx context.Context, poolID, userID primitive.ObjectID, status models.ParticipantStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": poolID, "participants.user_id": userID},
		bson.M{"$set": bson.M{
			"participants.$.status": status,
			"updated_at":            time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set participant status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.cache.InvalidatePool(ctx, poolID)

	return nil
}

func (r *poolRepository) UpdateStatus(ctx context.Context, poolID primitive.ObjectID, status models.PoolStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": poolID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update pool status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.cache.InvalidatePool(ctx, poolID)

	return nil
}

// Cancel flips the pool to cancelled and force-removes every joined
// participant except the creator in the same update, so a crash between the
// two writes cannot leave co-riders marked joined on a dead pool.
func (r *poolRepository) Cancel(ctx context.Context, poolID, creatorID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": poolID},
		bson.M{"$set": bson.M{
			"status":                       models.PoolStatusCancelled,
			"participants.$[rider].status": models.ParticipantRemoved,
			"updated_at":                   time.Now(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"rider.user_id": bson.M{"$ne": creatorID},
				"rider.status":  models.ParticipantJoined,
			}},
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel pool: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.cache.InvalidatePool(ctx, poolID)

	return nil
}

func (r *poolRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pool: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.cache.InvalidatePool(ctx, id)

	return nil
}

func (r *poolRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"status":     models.PoolStatusCompleted,
		"updated_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale pools: %w", err)
	}

	return result.DeletedCount, nil
}
