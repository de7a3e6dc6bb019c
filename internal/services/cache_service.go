package services

import (
	"context"
	"time"

	"poolride/internal/models"
	"poolride/internal/utils"
	"poolride/pkg/cache"
	"poolride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CacheService is the cache-aside layer repositories use for hot documents.
// All methods are best effort: a cache failure is logged, never propagated.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error

	CacheUser(ctx context.Context, user *models.User)
	GetCachedUser(ctx context.Context, id primitive.ObjectID) *models.User
	InvalidateUser(ctx context.Context, id primitive.ObjectID)

	CachePool(ctx context.Context, pool *models.Pool)
	GetCachedPool(ctx context.Context, id primitive.ObjectID) *models.Pool
	InvalidatePool(ctx context.Context, id primitive.ObjectID)
}

type cacheService struct {
	redis  *cache.RedisCache
	logger *logger.Logger
}

func NewCacheService(redis *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		redis:  redis,
		logger: log,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redis.Set(ctx, key, value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}

func (s *cacheService) CacheUser(ctx context.Context, user *models.User) {
	key := utils.CacheUserPrefix + user.ID.Hex()
	if err := s.redis.Set(ctx, key, user, utils.UserCacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to cache user")
	}
}

func (s *cacheService) GetCachedUser(ctx context.Context, id primitive.ObjectID) *models.User {
	var user models.User
	key := utils.CacheUserPrefix + id.Hex()

	err := s.redis.Get(ctx, key, &user)
	if err != nil {
		if !cache.IsMiss(err) {
			s.logger.WithError(err).WithField("key", key).Warn("user cache read failed")
		}
		return nil
	}

	return &user
}

func (s *cacheService) InvalidateUser(ctx context.Context, id primitive.ObjectID) {
	key := utils.CacheUserPrefix + id.Hex()
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to invalidate user cache")
	}
}

func (s *cacheService) CachePool(ctx context.Context, pool *models.Pool) {
	key := utils.CachePoolPrefix + pool.ID.Hex()
	if err := s.redis.Set(ctx, key, pool, utils.PoolCacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to cache pool")
	}
}

func (s *cacheService) GetCachedPool(ctx context.Context, id primitive.ObjectID) *models.Pool {
	var pool models.Pool
	key := utils.CachePoolPrefix + id.Hex()

	err := s.redis.Get(ctx, key, &pool)
	if err != nil {
		if !cache.IsMiss(err) {
			s.logger.WithError(err).WithField("key", key).Warn("pool cache read failed")
		}
		return nil
	}

	return &pool
}

func (s *cacheService) InvalidatePool(ctx context.Context, id primitive.ObjectID) {
	key := utils.CachePoolPrefix + id.Hex()
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to invalidate pool cache")
	}
}
