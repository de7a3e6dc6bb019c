package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryScores holds the optional per-category sub-ratings of a feedback
// record. Nil pointers mean the rater skipped that category.
type CategoryScores struct {
	Punctuality   *int `json:"punctuality" bson:"punctuality" validate:"omitempty,min=1,max=5"`
	Safety        *int `json:"safety" bson:"safety" validate:"omitempty,min=1,max=5"`
	Communication *int `json:"communication" bson:"communication" validate:"omitempty,min=1,max=5"`
	Vehicle       *int `json:"vehicle" bson:"vehicle" validate:"omitempty,min=1,max=5"`
}

// Feedback is one post-ride rating of one participant by another. Records are
// immutable once written; a unique index on (ride_id, rater_id, rated_user_id)
// backs the one-feedback-per-pair rule.
type Feedback struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID      primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	RaterID     primitive.ObjectID `json:"rater_id" bson:"rater_id"`
	RatedUserID primitive.ObjectID `json:"rated_user_id" bson:"rated_user_id"`
	Score       int                `json:"score" bson:"score" validate:"required,min=1,max=5"`
	Comment     string             `json:"comment" bson:"comment" validate:"omitempty,max=500"`
	SafetyFlag  bool               `json:"safety_flag" bson:"safety_flag" default:"false"`
	Categories  *CategoryScores    `json:"categories" bson:"categories"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
