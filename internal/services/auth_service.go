package services

import (
	"context"
	"errors"

	"poolride/internal/models"
	"poolride/internal/repositories/interfaces"
	"poolride/internal/utils"
	"poolride/internal/validators"
	"poolride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, request *validators.SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error)
	GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, callerID, profileID primitive.ObjectID, request *validators.ProfileUpdateRequest) (*models.User, error)
}

type AuthResponse struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

type authService struct {
	userRepo   interfaces.UserRepository
	jwtSecret  string
	bcryptCost int
	logger     *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, jwtSecret string, bcryptCost int, log *logger.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = utils.BcryptCost
	}

	return &authService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.SignupRequest) (*AuthResponse, error) {
	if validationErrors := validators.ValidateSignup(request); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	_, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err == nil {
		return nil, utils.NewConflictError("USER_EXISTS", "user already exists with this email")
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, utils.NewInternalError("failed to check existing user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), s.bcryptCost)
	if err != nil {
		return nil, utils.NewInternalError("failed to hash password", err)
	}

	gender := models.Gender(request.Gender)
	if gender == "" {
		gender = models.GenderOther
	}

	community := request.Community
	if community == nil {
		community = []string{}
	}

	user := &models.User{
		Name:       request.Name,
		Email:      request.Email,
		Password:   string(hashed),
		Phone:      request.Phone,
		Gender:     gender,
		Community:  community,
		TrustScore: models.TrustScoreDefault,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, utils.NewConflictError("USER_EXISTS", "user already exists with this email")
		}
		return nil, utils.NewInternalError("failed to create user", err)
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue tokens", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventUserRegistered,
		"user_id": user.ID.Hex(),
	}).Info("user registered")

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error) {
	if validationErrors := validators.ValidateLogin(request); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewUnauthorizedError(utils.ErrInvalidCredentials)
		}
		return nil, utils.NewInternalError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		return nil, utils.NewUnauthorizedError(utils.ErrInvalidCredentials)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is informational.
		s.logger.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to update last login")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue tokens", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event":   utils.EventUserLogin,
		"user_id": user.ID.Hex(),
	}).Info("user logged in")

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, utils.NewNotFoundError("user")
		}
		return nil, utils.NewInternalError("failed to get user", err)
	}

	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, callerID, profileID primitive.ObjectID, request *validators.ProfileUpdateRequest) (*models.User, error) {
	if callerID != profileID {
		return nil, utils.NewForbiddenError("NOT_OWNER", "not authorized to update this profile")
	}

	if validationErrors := validators.ValidateProfileUpdate(request); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, validationErrors.Details())
	}

	updates := map[string]interface{}{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Phone != nil {
		updates["phone"] = *request.Phone
	}
	if request.Gender != nil {
		updates["gender"] = models.Gender(*request.Gender)
	}
	if request.Community != nil {
		updates["community"] = request.Community
	}
	if request.ProfilePicture != nil {
		updates["profile_picture"] = *request.ProfilePicture
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, profileID, updates); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, utils.NewNotFoundError("user")
			}
			return nil, utils.NewInternalError("failed to update profile", err)
		}
	}

	return s.GetCurrentUser(ctx, profileID)
}
