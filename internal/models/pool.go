package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PoolStatus string
type PoolType string
type ParticipantStatus string

const (
	PoolStatusUpcoming  PoolStatus = "upcoming"
	PoolStatusOngoing   PoolStatus = "ongoing"
	PoolStatusCompleted PoolStatus = "completed"
	PoolStatusCancelled PoolStatus = "cancelled"

	PoolTypeOpen      PoolType = "open"
	PoolTypeWomenOnly PoolType = "women-only"
	PoolTypeCommunity PoolType = "community"

	ParticipantJoined  ParticipantStatus = "joined"
	ParticipantLeft    ParticipantStatus = "left"
	ParticipantRemoved ParticipantStatus = "removed"
)

const (
	MinSeats = 2
	MaxSeats = 6
	MinFare  = 1.0
)

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"required,latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"required,longitude"`
}

type Participant struct {
	UserID   primitive.ObjectID `json:"user_id" bson:"user_id"`
	JoinedAt time.Time          `json:"joined_at" bson:"joined_at"`
	Status   ParticipantStatus  `json:"status" bson:"status" default:"joined"`
}

type Pool struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Source       string             `json:"source" bson:"source" validate:"required"`
	Destination  string             `json:"destination" bson:"destination" validate:"required"`
	SourceCoords Coordinates        `json:"source_coords" bson:"source_coords"`
	DestCoords   Coordinates        `json:"dest_coords" bson:"dest_coords"`
	Date         time.Time          `json:"date" bson:"date" validate:"required"`
	Time         string             `json:"time" bson:"time" validate:"required"`
	MaxSeats     int                `json:"max_seats" bson:"max_seats" validate:"required,min=2,max=6"`
	Fare         float64            `json:"fare" bson:"fare" validate:"required,min=1"`
	Type         PoolType           `json:"type" bson:"type" default:"open"`
	Status       PoolStatus         `json:"status" bson:"status" default:"upcoming"`
	CreatedBy    primitive.ObjectID `json:"created_by" bson:"created_by"`
	Participants []Participant      `json:"participants" bson:"participants"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// ActiveParticipants returns the number of participants currently joined,
// the creator included.
func (p *Pool) ActiveParticipants() int {
	count := 0
	for _, participant := range p.Participants {
		if participant.Status == ParticipantJoined {
			count++
		}
	}
	return count
}

func (p *Pool) AvailableSeats() int {
	seats := p.MaxSeats - p.ActiveParticipants()
	if seats < 0 {
		return 0
	}
	return seats
}

func (p *Pool) IsFull() bool {
	return p.ActiveParticipants() >= p.MaxSeats
}

// FindParticipant returns the participant entry for the given user, active or
// not. There is at most one entry per user per pool.
func (p *Pool) FindParticipant(userID primitive.ObjectID) *Participant {
	for i := range p.Participants {
		if p.Participants[i].UserID == userID {
			return &p.Participants[i]
		}
	}
	return nil
}

func (p *Pool) HasJoined(userID primitive.ObjectID) bool {
	participant := p.FindParticipant(userID)
	return participant != nil && participant.Status == ParticipantJoined
}

func (p *Pool) IsCreator(userID primitive.ObjectID) bool {
	return p.CreatedBy == userID
}

func (p *Pool) IsTerminal() bool {
	return p.Status == PoolStatusCompleted || p.Status == PoolStatusCancelled
}
