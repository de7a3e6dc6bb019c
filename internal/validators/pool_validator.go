package validators

import (
	"time"

	"poolride/internal/models"
)

type PoolCreateRequest struct {
	Source       string             `json:"source" validate:"required"`
	Destination  string             `json:"destination" validate:"required"`
	SourceCoords models.Coordinates `json:"source_coords" validate:"required"`
	DestCoords   models.Coordinates `json:"dest_coords" validate:"required"`
	Date         time.Time          `json:"date" validate:"required"`
	Time         string             `json:"time" validate:"required,time_of_day"`
	MaxSeats     int                `json:"max_seats" validate:"required,min=2,max=6"`
	Fare         float64            `json:"fare" validate:"required,min=1"`
	Type         string             `json:"type" validate:"omitempty,pool_type"`
}

type PoolStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,pool_status"`
}

// PoolListQuery carries the server-side listing filters plus the opt-in
// visibility switch that applies the eligibility rules for the caller.
type PoolListQuery struct {
	Status  string `form:"status" validate:"omitempty,pool_status"`
	Type    string `form:"type" validate:"omitempty,pool_type"`
	Date    string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Visible bool   `form:"visible"`
}

func ValidatePoolCreate(req *PoolCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if err := ValidateStruct(&req.SourceCoords); err != nil {
		errors = append(errors, err...)
	}
	if err := ValidateStruct(&req.DestCoords); err != nil {
		errors = append(errors, err...)
	}

	return errors
}

func ValidatePoolStatusUpdate(req *PoolStatusUpdateRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidatePoolListQuery(req *PoolListQuery) ValidationErrors {
	return ValidateStruct(req)
}
