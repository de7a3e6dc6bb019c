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

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, raterID primitive.ObjectID, request *validators.FeedbackCreateRequest) (*models.Feedback, error)
	GetUserFeedback(ctx context.Context, userID primitive.ObjectID) (*UserFeedbackResponse, error)
	GetRideFeedback(ctx context.Context, rideID primitive.ObjectID) ([]models.Feedback, error)
	GetMyFeedback(ctx context.Context, raterID primitive.ObjectID) ([]models.Feedback, error)
}

type FeedbackSummary struct {
	TotalFeedbacks int     `json:"total_feedbacks"`
	AverageRating  float64 `json:"average_rating"`
}

type UserFeedbackResponse struct {
	Feedbacks []models.Feedback `json:"feedbacks"`
	Summary   FeedbackSummary   `json:"summary"`
}

type feedbackService struct {
	feedbackRepo interfaces.FeedbackRepository
	poolRepo     interfaces.PoolRepository
	userRepo     interfaces.UserRepository
	logger       *logger.Logger
}

func NewFeedbackService(
	feedbackRepo interfaces.FeedbackRepository,
	poolRepo interfaces.PoolRepository,
	userRepo interfaces.UserRepository,
	log *logger.Logger,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		poolRepo:     poolRepo,
		userRepo:     userRepo,
		logger:       log,
	}
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, raterID primitive.ObjectID, request *validators.FeedbackCreateRequest) (*models.Feedback, error) {
	if validationErrors := validators.ValidateFeedbackCreate(request); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	rideID, err := primitive.ObjectIDFromHex(request.RideID)
	if err != nil {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{"ride_id": "must be a valid object id"})
	}

	ratedUserID, err := primitive.ObjectIDFromHex(request.RatedUserID)
	if err != nil {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{"rated_user_id": "must be a valid object id"})
	}

	if raterID == ratedUserID {
		return nil, utils.NewStateError("SELF_FEEDBACK", "cannot submit feedback for yourself")
	}

	pool, err := s.poolRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFoundError("ride")
		}
		return nil, utils.NewInternalError("failed to get ride", err)
	}

	if pool.Status != models.PoolStatusCompleted {
		return nil, utils.NewStateError("RIDE_NOT_COMPLETED", "can only submit feedback for completed rides")
	}

	if !pool.HasJoined(raterID) {
		return nil, utils.NewForbiddenError("NOT_PARTICIPANT", "only ride participants can submit feedback")
	}

	if !pool.HasJoined(ratedUserID) {
		return nil, utils.NewStateError("RATED_NOT_PARTICIPANT", "rated user was not a participant in this ride")
	}

	exists, err := s.feedbackRepo.Exists(ctx, rideID, raterID, ratedUserID)
	if err != nil {
		return nil, utils.NewInternalError("failed to check existing feedback", err)
	}
	if exists {
		return nil, utils.NewConflictError("DUPLICATE_FEEDBACK", "feedback already submitted for this user in this ride")
	}

	feedback := &models.Feedback{
		RideID:      rideID,
		RaterID:     raterID,
		RatedUserID: ratedUserID,
		Score:       request.Score,
		Comment:     request.Comment,
		SafetyFlag:  request.SafetyFlag,
		Categories:  request.Categories,
	}

	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			// Lost the race against a concurrent submission; the unique
			// index is the source of truth.
			return nil, utils.NewConflictError("DUPLICATE_FEEDBACK", "feedback already submitted for this user in this ride")
		}
		return nil, utils.NewInternalError("failed to create feedback", err)
	}

	s.recomputeTrustScore(ctx, ratedUserID)

	s.logger.WithFields(map[string]interface{}{
		"event":       utils.EventFeedbackGiven,
		"ride_id":     rideID.Hex(),
		"rater_id":    raterID.Hex(),
		"rated_id":    ratedUserID.Hex(),
		"score":       request.Score,
		"safety_flag": request.SafetyFlag,
	}).Info("feedback submitted")

	return feedback, nil
}

// recomputeTrustScore rebuilds the rated user's trust score from their full
// feedback history. The feedback record is already persisted; a recompute
// failure is logged and left for the next submission to repair.
func (s *feedbackService) recomputeTrustScore(ctx context.Context, ratedUserID primitive.ObjectID) {
	feedbacks, err := s.feedbackRepo.ListByRatedUser(ctx, ratedUserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", ratedUserID.Hex()).Error("failed to load feedback for trust recompute")
		return
	}

	score := policy.ComputeTrustScore(feedbacks, time.Now())

	if err := s.userRepo.UpdateTrustScore(ctx, ratedUserID, score); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"user_id": ratedUserID.Hex(),
			"score":   score,
		}).Error("failed to update trust score")
	}
}

func (s *feedbackService) GetUserFeedback(ctx context.Context, userID primitive.ObjectID) (*UserFeedbackResponse, error) {
	feedbacks, err := s.feedbackRepo.ListByRatedUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list feedback", err)
	}

	return &UserFeedbackResponse{
		Feedbacks: feedbacks,
		Summary: FeedbackSummary{
			TotalFeedbacks: len(feedbacks),
			AverageRating:  policy.AverageScore(feedbacks),
		},
	}, nil
}

func (s *feedbackService) GetRideFeedback(ctx context.Context, rideID primitive.ObjectID) ([]models.Feedback, error) {
	feedbacks, err := s.feedbackRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list ride feedback", err)
	}
	return feedbacks, nil
}

func (s *feedbackService) GetMyFeedback(ctx context.Context, raterID primitive.ObjectID) ([]models.Feedback, error) {
	feedbacks, err := s.feedbackRepo.ListByRater(ctx, raterID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list submitted feedback", err)
	}
	return feedbacks, nil
}
