// Package policy is the authoritative rule engine for pool lifecycle,
// visibility, and reputation. Everything here is pure: callers load state,
// policy judges it, services apply the outcome.
package policy

import (
	"time"

	"poolride/internal/models"
	"poolride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transition error codes surfaced to clients.
const (
	CodePoolNotUpcoming    = "POOL_NOT_UPCOMING"
	CodePoolFull           = "POOL_FULL"
	CodeAlreadyJoined      = "ALREADY_JOINED"
	CodeWomenOnly          = "WOMEN_ONLY"
	CodeCommunityOnly      = "COMMUNITY_ONLY"
	CodeCreatorCannotLeave = "CREATOR_CANNOT_LEAVE"
	CodeNotParticipant     = "NOT_PARTICIPANT"
	CodeDeparturePassed    = "DEPARTURE_PASSED"
	CodeNotDeparted        = "NOT_DEPARTED"
	CodeActiveCoRiders     = "ACTIVE_CO_RIDERS"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNotCreator         = "NOT_CREATOR"
)

var legalTransitions = map[models.PoolStatus][]models.PoolStatus{
	models.PoolStatusUpcoming: {models.PoolStatusOngoing, models.PoolStatusCancelled},
	models.PoolStatusOngoing:  {models.PoolStatusCompleted},
}

// CanTransition reports whether a pool may move from one status to another.
// Completed and cancelled are terminal.
func CanTransition(from, to models.PoolStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	// Completion is reachable directly from upcoming: a creator marking the
	// ride done after departure without ever flipping it to ongoing.
	return from == models.PoolStatusUpcoming && to == models.PoolStatusCompleted
}

// Departure resolves the pool's scheduled date+time into one instant.
func Departure(pool *models.Pool) (time.Time, error) {
	return utils.CombineDateTime(pool.Date, pool.Time)
}

// CheckCreate guards pool creation: women-only pools need a non-male creator,
// community pools need a creator with at least one affiliation, and the
// departure must not already be in the past beyond a short grace buffer.
func CheckCreate(creator *models.User, poolType models.PoolType, departure, now time.Time) error {
	if poolType == models.PoolTypeWomenOnly && creator.Gender == models.GenderMale {
		return utils.NewForbiddenError(CodeWomenOnly, "male users cannot create women-only pools")
	}

	if poolType == models.PoolTypeCommunity && len(creator.Community) == 0 {
		return utils.NewStateError(CodeCommunityOnly, "you must belong to at least one community to create a community pool")
	}

	if departure.Before(now.Add(-utils.CreateGracePeriod)) {
		return utils.NewStateError(CodeDeparturePassed, "departure time is already in the past")
	}

	return nil
}

// CheckJoin guards a join attempt against the pool's status, capacity, and
// eligibility rules. creator is the pool owner's profile, viewer the joiner's.
func CheckJoin(pool *models.Pool, creator, viewer *models.User) error {
	if pool.Status != models.PoolStatusUpcoming {
		return utils.NewStateError(CodePoolNotUpcoming, "cannot join a pool that is not upcoming")
	}

	if pool.HasJoined(viewer.ID) {
		return utils.NewStateError(CodeAlreadyJoined, "you are already a participant in this pool")
	}

	if pool.IsFull() {
		return utils.NewStateError(CodePoolFull, "pool is full")
	}

	if pool.Type == models.PoolTypeWomenOnly && viewer.Gender != models.GenderFemale {
		return utils.NewForbiddenError(CodeWomenOnly, "this pool is restricted to women only")
	}

	if pool.Type == models.PoolTypeCommunity && !SharesCommunity(creator.Community, viewer.Community) {
		return utils.NewForbiddenError(CodeCommunityOnly, "this pool is restricted to community members only")
	}

	return nil
}

// CheckLeave guards a voluntary leave. The creator must cancel instead.
func CheckLeave(pool *models.Pool, userID primitive.ObjectID) error {
	if pool.IsCreator(userID) {
		return utils.NewStateError(CodeCreatorCannotLeave, "pool creator cannot leave the pool, cancel it instead")
	}

	if pool.Status != models.PoolStatusUpcoming {
		return utils.NewStateError(CodePoolNotUpcoming, "cannot leave a pool that is not upcoming")
	}

	if !pool.HasJoined(userID) {
		return utils.NewStateError(CodeNotParticipant, "you are not a participant in this pool")
	}

	return nil
}

// LeavePenalty returns the trust deduction for leaving at the given moment:
// the flat late-cancellation penalty when the departure is still ahead but
// less than the notice window away, zero otherwise.
func LeavePenalty(departure, now time.Time) int {
	if departure.After(now) && departure.Sub(now) < utils.LateCancelNotice {
		return utils.LatePenaltyPoints
	}
	return 0
}

// CheckCancel guards a creator cancelling the whole pool.
func CheckCancel(pool *models.Pool, userID primitive.ObjectID) error {
	if !pool.IsCreator(userID) {
		return utils.NewForbiddenError(CodeNotCreator, "only the pool creator can cancel the pool")
	}

	if pool.IsTerminal() {
		return utils.NewStateError(CodeInvalidTransition, "pool is already "+string(pool.Status))
	}

	return nil
}

// CancelPenalty returns the creator's trust deduction for cancelling: flat
// and unconditional whenever committed co-riders exist, zero when the creator
// was riding alone.
func CancelPenalty(pool *models.Pool) int {
	if pool.ActiveParticipants() > 1 {
		return utils.LatePenaltyPoints
	}
	return 0
}

// CheckComplete guards marking a pool completed: creator only, and never
// before the scheduled departure has passed.
func CheckComplete(pool *models.Pool, userID primitive.ObjectID, departure, now time.Time) error {
	if !pool.IsCreator(userID) {
		return utils.NewForbiddenError(CodeNotCreator, "only the pool creator can update pool status")
	}

	if !CanTransition(pool.Status, models.PoolStatusCompleted) {
		return utils.NewStateError(CodeInvalidTransition, "pool cannot be completed from status "+string(pool.Status))
	}

	if departure.After(now) {
		return utils.NewStateError(CodeNotDeparted, "cannot complete a ride before its departure time")
	}

	return nil
}

// CheckDelete guards hard deletion: creator only, and only while the creator
// is the sole active participant.
func CheckDelete(pool *models.Pool, userID primitive.ObjectID) error {
	if !pool.IsCreator(userID) {
		return utils.NewForbiddenError(CodeNotCreator, "only the pool creator can delete the pool")
	}

	if pool.ActiveParticipants() > 1 {
		return utils.NewStateError(CodeActiveCoRiders, "cannot delete a pool with active participants, cancel it instead")
	}

	return nil
}
