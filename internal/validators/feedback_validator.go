package validators

import "poolride/internal/models"

type FeedbackCreateRequest struct {
	RideID      string                 `json:"ride_id" validate:"required,object_id"`
	RatedUserID string                 `json:"rated_user_id" validate:"required,object_id"`
	Score       int                    `json:"score" validate:"required,min=1,max=5"`
	Comment     string                 `json:"comment" validate:"omitempty,max=500"`
	SafetyFlag  bool                   `json:"safety_flag"`
	Categories  *models.CategoryScores `json:"categories"`
}

func ValidateFeedbackCreate(req *FeedbackCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Categories != nil {
		if err := ValidateStruct(req.Categories); err != nil {
			errors = append(errors, err...)
		}
	}

	return errors
}
