package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

const (
	TrustScoreDefault = 50
	TrustScoreMin     = 0
	TrustScoreMax     = 100
)

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Email          string             `json:"email" bson:"email" validate:"required,email"`
	Password       string             `json:"-" bson:"password"`
	Phone          string             `json:"phone" bson:"phone" validate:"required,len=10,numeric"`
	Gender         Gender             `json:"gender" bson:"gender" default:"other"`
	Community      []string           `json:"community" bson:"community"`
	TrustScore     int                `json:"trust_score" bson:"trust_score" default:"50"`
	IsVerified     bool               `json:"is_verified" bson:"is_verified" default:"false"`
	ProfilePicture string             `json:"profile_picture" bson:"profile_picture"`
	LastLoginAt    *time.Time         `json:"last_login_at" bson:"last_login_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserSummary is the co-rider-facing projection of a user. It carries what
// participants of a shared pool are allowed to see about each other and
// nothing else.
type UserSummary struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Phone      string             `json:"phone" bson:"phone"`
	Gender     Gender             `json:"gender" bson:"gender"`
	Community  []string           `json:"community" bson:"community"`
	TrustScore int                `json:"trust_score" bson:"trust_score"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Gender:     u.Gender,
		Community:  u.Community,
		TrustScore: u.TrustScore,
	}
}
