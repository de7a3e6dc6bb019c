package policy

import (
	"time"

	"poolride/internal/models"
	"poolride/internal/utils"
)

// ListFilters are the caller-supplied filters layered on top of the
// visibility rules. Zero values mean "no filter".
type ListFilters struct {
	Type models.PoolType
	Date *time.Time
}

// SharesCommunity reports whether two affiliation sets intersect. One shared
// tag is sufficient; membership in many communities is expected.
func SharesCommunity(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	tags := make(map[string]struct{}, len(a))
	for _, tag := range a {
		tags[tag] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// Visible is the single authoritative predicate deciding whether a viewer may
// see (and therefore attempt to join) a listed pool. Rules are evaluated in
// order; any failure hides the pool.
func Visible(pool *models.Pool, creator, viewer *models.User, filters *ListFilters) bool {
	// 1. Already riding, or nothing left to join.
	if pool.HasJoined(viewer.ID) || pool.IsFull() {
		return false
	}

	// 2. Gender restriction.
	if pool.Type == models.PoolTypeWomenOnly && viewer.Gender != models.GenderFemale {
		return false
	}

	// 3. Community restriction: viewer must share at least one tag with the
	// creator, not match the whole set.
	if pool.Type == models.PoolTypeCommunity {
		if creator == nil || !SharesCommunity(creator.Community, viewer.Community) {
			return false
		}
	}

	// 4. Caller-supplied filters.
	if filters != nil {
		if filters.Type != "" && pool.Type != filters.Type {
			return false
		}
		if filters.Date != nil && !utils.SameDay(pool.Date, *filters.Date) {
			return false
		}
	}

	return true
}
