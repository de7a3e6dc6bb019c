package services

import (
	"context"
	"errors"
	"time"

	"poolride/internal/models"
	"poolride/internal/policy"
	"poolride/internal/repositories/interfaces"
	"poolride/internal/utils"
	"poolride/internal/validators"
	"poolride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PoolService interface {
	CreatePool(ctx context.Context, creatorID primitive.ObjectID, request *validators.PoolCreateRequest) (*PoolView, error)
	ListPools(ctx context.Context, viewerID primitive.ObjectID, query *validators.PoolListQuery, page *utils.PaginationParams) ([]*PoolView, *utils.PaginationMeta, error)
	ListMyPools(ctx context.Context, userID primitive.ObjectID) ([]*PoolView, error)
	GetPool(ctx context.Context, poolID primitive.ObjectID) (*PoolView, error)
	JoinPool(ctx context.Context, poolID, userID primitive.ObjectID) (*TransitionResult, error)
	LeavePool(ctx context.Context, poolID, userID primitive.ObjectID) (*TransitionResult, error)
	UpdateStatus(ctx context.Context, poolID, userID primitive.ObjectID, status models.PoolStatus) (*TransitionResult, error)
	DeletePool(ctx context.Context, poolID, userID primitive.ObjectID) error
	CleanupOldPools(ctx context.Context) (int64, error)
}

// ParticipantView pairs a participant entry with the co-rider's profile
// summary, the way listings and ride pages render it.
type ParticipantView struct {
	User     *models.UserSummary      `json:"user"`
	JoinedAt time.Time                `json:"joined_at"`
	Status   models.ParticipantStatus `json:"status"`
}

type PoolView struct {
	*models.Pool
	Creator        *models.UserSummary `json:"creator"`
	ParticipantSet []ParticipantView   `json:"participant_details"`
	SeatsLeft      int                 `json:"available_seats"`
}

// TransitionResult reports the outcome of a lifecycle transition, including
// whether a trust penalty was applied to the caller.
type TransitionResult struct {
	Pool           *PoolView `json:"pool,omitempty"`
	PenaltyApplied bool      `json:"penalty_applied"`
	Message        string    `json:"message"`
}

type poolService struct {
	poolRepo interfaces.PoolRepository
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewPoolService(poolRepo interfaces.PoolRepository, userRepo interfaces.UserRepository, log *logger.Logger) PoolService {
	return &poolService{
		poolRepo: poolRepo,
		userRepo: userRepo,
		logger:   log,
	}
}

func (s *poolService) CreatePool(ctx context.Context, creatorID primitive.ObjectID, request *validators.PoolCreateRequest) (*PoolView, error) {
	if validationErrors := validators.ValidatePoolCreate(request); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	creator, err := s.getUser(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	poolType := models.PoolType(request.Type)
	if poolType == "" {
		poolType = models.PoolTypeOpen
	}

	departure, err := utils.CombineDateTime(request.Date, request.Time)
	if err != nil {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{"time": "must be in HH:MM format"})
	}

	if err := policy.CheckCreate(creator, poolType, departure, time.Now()); err != nil {
		return nil, err
	}

	pool := &models.Pool{
		Source:       request.Source,
		Destination:  request.Destination,
		SourceCoords: request.SourceCoords,
		DestCoords:   request.DestCoords,
		Date:         request.Date,
		Time:         request.Time,
		MaxSeats:     request.MaxSeats,
		Fare:         request.Fare,
		Type:         poolType,
		Status:       models.PoolStatusUpcoming,
		CreatedBy:    creatorID,
		Participants: []models.Participant{{
			UserID:   creatorID,
			JoinedAt: time.Now(),
			Status:   models.ParticipantJoined,
		}},
	}

	if err := s.poolRepo.Create(ctx, pool); err != nil {
		return nil, utils.NewInternalError("failed to create pool", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventPoolCreated,
		"pool_id": pool.ID.Hex(),
		"user_id": creatorID.Hex(),
		"type":    pool.Type,
	}).Info("pool created")

	return s.buildView(ctx, pool)
}

func (s *poolService) ListPools(ctx context.Context, viewerID primitive.ObjectID, query *validators.PoolListQuery, page *utils.PaginationParams) ([]*PoolView, *utils.PaginationMeta, error) {
	if validationErrors := validators.ValidatePoolListQuery(query); len(validationErrors) > 0 {
		return nil, nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	filter := &interfaces.PoolFilter{
		Status: models.PoolStatusUpcoming,
		Type:   models.PoolType(query.Type),
	}
	if query.Status != "" {
		filter.Status = models.PoolStatus(query.Status)
	}

	var filterDate *time.Time
	if query.Date != "" {
		parsed, err := utils.ParseDateOnly(query.Date)
		if err != nil {
			return nil, nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{"date": "must be in YYYY-MM-DD format"})
		}
		filterDate = &parsed
	}
	filter.Date = filterDate

	pools, total, err := s.poolRepo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, utils.NewInternalError("failed to list pools", err)
	}

	var meta *utils.PaginationMeta
	if page != nil {
		meta = utils.NewPaginationMeta(page, total)
	}

	views, err := s.buildViews(ctx, pools)
	if err != nil {
		return nil, nil, err
	}

	if !query.Visible {
		return views, meta, nil
	}

	// Visibility pass: the same policy predicate client display logic uses,
	// applied server-side for the caller. Eligibility filters within the
	// fetched page; the total still counts every match.
	viewer, err := s.getUser(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}

	creators, err := s.loadCreators(ctx, pools)
	if err != nil {
		return nil, nil, err
	}

	filters := &policy.ListFilters{Type: models.PoolType(query.Type), Date: filterDate}

	visible := make([]*PoolView, 0, len(views))
	for _, view := range views {
		if policy.Visible(view.Pool, creators[view.Pool.CreatedBy], viewer, filters) {
			visible = append(visible, view)
		}
	}

	return visible, meta, nil
}

func (s *poolService) ListMyPools(ctx context.Context, userID primitive.ObjectID) ([]*PoolView, error) {
	created, err := s.poolRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list created pools", err)
	}

	joined, err := s.poolRepo.ListJoined(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list joined pools", err)
	}

	return s.buildViews(ctx, append(created, joined...))
}

func (s *poolService) GetPool(ctx context.Context, poolID primitive.ObjectID) (*PoolView, error) {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, pool)
}

func (s *poolService) JoinPool(ctx context.Context, poolID, userID primitive.ObjectID) (*TransitionResult, error) {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	viewer, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	creator, err := s.getUser(ctx, pool.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckJoin(pool, creator, viewer); err != nil {
		return nil, err
	}

	if existing := pool.FindParticipant(userID); existing != nil {
		err = s.poolRepo.ReactivateParticipant(ctx, poolID, userID, time.Now())
	} else {
		err = s.poolRepo.AddParticipant(ctx, poolID, models.Participant{
			UserID:   userID,
			JoinedAt: time.Now(),
			Status:   models.ParticipantJoined,
		})
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			// The pool changed between the policy check and the write.
			// Re-read and report the precise reason.
			return nil, s.explainJoinFailure(ctx, poolID, creator, viewer)
		}
		return nil, utils.NewInternalError("failed to join pool", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventPoolJoined,
		"pool_id": poolID.Hex(),
		"user_id": userID.Hex(),
	}).Info("participant joined pool")

	view, err := s.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	return &TransitionResult{Pool: view, Message: "successfully joined the pool"}, nil
}

func (s *poolService) explainJoinFailure(ctx context.Context, poolID primitive.ObjectID, creator, viewer *models.User) error {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return err
	}

	if err := policy.CheckJoin(pool, creator, viewer); err != nil {
		return err
	}

	return utils.NewStateError(policy.CodePoolFull, "pool changed while joining, try again")
}

func (s *poolService) LeavePool(ctx context.Context, poolID, userID primitive.ObjectID) (*TransitionResult, error) {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckLeave(pool, userID); err != nil {
		return nil, err
	}

	if err := s.poolRepo.SetParticipantStatus(ctx, poolID, userID, models.ParticipantLeft); err != nil {
		return nil, utils.NewInternalError("failed to leave pool", err)
	}

	result := &TransitionResult{Message: "successfully left the pool"}

	departure, err := policy.Departure(pool)
	if err == nil {
		if penalty := policy.LeavePenalty(departure, time.Now()); penalty > 0 {
			result.PenaltyApplied = s.applyPenalty(ctx, userID, penalty, "late leave")
			if result.PenaltyApplied {
				result.Message = "successfully left the pool; a late-cancellation penalty was applied to your trust score"
			}
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventPoolLeft,
		"pool_id": poolID.Hex(),
		"user_id": userID.Hex(),
		"penalty": result.PenaltyApplied,
	}).Info("participant left pool")

	return result, nil
}

func (s *poolService) UpdateStatus(ctx context.Context, poolID, userID primitive.ObjectID, status models.PoolStatus) (*TransitionResult, error) {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.PoolStatusCancelled:
		return s.cancelPool(ctx, pool, userID)
	case models.PoolStatusCompleted:
		return s.completePool(ctx, pool, userID)
	case models.PoolStatusOngoing:
		return s.startPool(ctx, pool, userID)
	default:
		return nil, utils.NewStateError(policy.CodeInvalidTransition, "pool cannot transition back to upcoming")
	}
}

func (s *poolService) cancelPool(ctx context.Context, pool *models.Pool, userID primitive.ObjectID) (*TransitionResult, error) {
	if err := policy.CheckCancel(pool, userID); err != nil {
		return nil, err
	}

	penalty := policy.CancelPenalty(pool)

	if err := s.poolRepo.Cancel(ctx, pool.ID, pool.CreatedBy); err != nil {
		return nil, utils.NewInternalError("failed to cancel pool", err)
	}

	result := &TransitionResult{Message: "pool cancelled"}
	if penalty > 0 {
		result.PenaltyApplied = s.applyPenalty(ctx, userID, penalty, "cancel with co-riders")
		if result.PenaltyApplied {
			result.Message = "pool cancelled; a penalty was applied to your trust score for cancelling with committed co-riders"
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventPoolCancelled,
		"pool_id": pool.ID.Hex(),
		"user_id": userID.Hex(),
		"penalty": result.PenaltyApplied,
	}).Info("pool cancelled")

	view, err := s.GetPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	result.Pool = view

	return result, nil
}

func (s *poolService) completePool(ctx context.Context, pool *models.Pool, userID primitive.ObjectID) (*TransitionResult, error) {
	departure, err := policy.Departure(pool)
	if err != nil {
		return nil, utils.NewInternalError("pool has an invalid departure time", err)
	}

	if err := policy.CheckComplete(pool, userID, departure, time.Now()); err != nil {
		return nil, err
	}

	if err := s.poolRepo.UpdateStatus(ctx, pool.ID, models.PoolStatusCompleted); err != nil {
		return nil, utils.NewInternalError("failed to complete pool", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventPoolCompleted,
		"pool_id": pool.ID.Hex(),
	}).Info("pool completed")

	view, err := s.GetPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}

	return &TransitionResult{Pool: view, Message: "pool marked as completed"}, nil
}

func (s *poolService) startPool(ctx context.Context, pool *models.Pool, userID primitive.ObjectID) (*TransitionResult, error) {
	if !pool.IsCreator(userID) {
		return nil, utils.NewForbiddenError(policy.CodeNotCreator, "only the pool creator can update pool status")
	}

	if !policy.CanTransition(pool.Status, models.PoolStatusOngoing) {
		return nil, utils.NewStateError(policy.CodeInvalidTransition, "pool cannot start from status "+string(pool.Status))
	}

	if err := s.poolRepo.UpdateStatus(ctx, pool.ID, models.PoolStatusOngoing); err != nil {
		return nil, utils.NewInternalError("failed to update pool status", err)
	}

	view, err := s.GetPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}

	return &TransitionResult{Pool: view, Message: "pool is now ongoing"}, nil
}

func (s *poolService) DeletePool(ctx context.Context, poolID, userID primitive.ObjectID) error {
	pool, err := s.getPool(ctx, poolID)
	if err != nil {
		return err
	}

	if err := policy.CheckDelete(pool, userID); err != nil {
		return err
	}

	if err := s.poolRepo.Delete(ctx, poolID); err != nil {
		return utils.NewInternalError("failed to delete pool", err)
	}

	return nil
}

func (s *poolService) CleanupOldPools(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-utils.CompletedPoolMaxAge)

	deleted, err := s.poolRepo.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, utils.NewInternalError("failed to clean up old pools", err)
	}

	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("cleaned up stale completed pools")
	}

	return deleted, nil
}

// applyPenalty deducts trust points from a user, reporting whether the
// deduction stuck. Failures are logged and swallowed: the lifecycle
// transition that triggered the penalty has already succeeded.
func (s *poolService) applyPenalty(ctx context.Context, userID primitive.ObjectID, points int, reason string) bool {
	if err := s.userRepo.DeductTrustPoints(ctx, userID, points); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID.Hex(),
			"points":  points,
			"reason":  reason,
		}).Error("failed to apply trust penalty")
		return false
	}
	return true
}

func (s *poolService) getPool(ctx context.Context, poolID primitive.ObjectID) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFoundError("pool")
		}
		return nil, utils.NewInternalError("failed to get pool", err)
	}
	return pool, nil
}

func (s *poolService) getUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFoundError("user")
		}
		return nil, utils.NewInternalError("failed to get user", err)
	}
	return user, nil
}

func (s *poolService) loadCreators(ctx context.Context, pools []*models.Pool) (map[primitive.ObjectID]*models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(pools))
	seen := make(map[primitive.ObjectID]struct{}, len(pools))
	for _, pool := range pools {
		if _, ok := seen[pool.CreatedBy]; !ok {
			seen[pool.CreatedBy] = struct{}{}
			ids = append(ids, pool.CreatedBy)
		}
	}

	creators, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, utils.NewInternalError("failed to load pool creators", err)
	}

	return creators, nil
}

func (s *poolService) buildView(ctx context.Context, pool *models.Pool) (*PoolView, error) {
	views, err := s.buildViews(ctx, []*models.Pool{pool})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// buildViews resolves creator and participant profiles for a batch of pools
// with one user lookup.
func (s *poolService) buildViews(ctx context.Context, pools []*models.Pool) ([]*PoolView, error) {
	ids := make([]primitive.ObjectID, 0, len(pools)*2)
	seen := make(map[primitive.ObjectID]struct{})
	collect := func(id primitive.ObjectID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, pool := range pools {
		collect(pool.CreatedBy)
		for _, participant := range pool.Participants {
			collect(participant.UserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, utils.NewInternalError("failed to load pool participants", err)
	}

	summary := func(id primitive.ObjectID) *models.UserSummary {
		if user, ok := users[id]; ok {
			return user.Summary()
		}
		return nil
	}

	views := make([]*PoolView, 0, len(pools))
	for _, pool := range pools {
		view := &PoolView{
			Pool:      pool,
			Creator:   summary(pool.CreatedBy),
			SeatsLeft: pool.AvailableSeats(),
		}

		view.ParticipantSet = make([]ParticipantView, 0, len(pool.Participants))
		for _, participant := range pool.Participants {
			view.ParticipantSet = append(view.ParticipantSet, ParticipantView{
				User:     summary(participant.UserID),
				JoinedAt: participant.JoinedAt,
				Status:   participant.Status,
			})
		}

		views = append(views, view)
	}

	return views, nil
}
