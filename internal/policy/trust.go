package policy

import (
	"math"
	"time"

	"poolride/internal/models"
)

// ComputeTrustScore derives a user's 0-100 trust score from their full
// feedback history. Each record is weighted by recency, w = 1/max(1, ageInDays),
// so fresh feedback dominates without older records ever dropping out. The
// weighted mean on the 1-5 scale is mapped to 0-100, clamped, and rounded.
//
// Returns the default score when the user has no feedback at all.
func ComputeTrustScore(feedbacks []models.Feedback, now time.Time) int {
	if len(feedbacks) == 0 {
		return models.TrustScoreDefault
	}

	var totalScore, totalWeight float64
	for _, feedback := range feedbacks {
		ageInDays := now.Sub(feedback.CreatedAt).Hours() / 24
		weight := 1 / math.Max(1, ageInDays)
		totalScore += float64(feedback.Score) * weight
		totalWeight += weight
	}

	mean := totalScore / totalWeight
	trust := mean / 5 * 100

	return ClampTrustScore(int(math.Round(trust)))
}

// ApplyPenalty deducts flat penalty points from a trust score, flooring at
// zero. Penalties are independent of the feedback-derived recompute; both
// write the same field and the later write wins.
func ApplyPenalty(current, points int) int {
	return ClampTrustScore(current - points)
}

func ClampTrustScore(score int) int {
	if score < models.TrustScoreMin {
		return models.TrustScoreMin
	}
	if score > models.TrustScoreMax {
		return models.TrustScoreMax
	}
	return score
}

// AverageScore is the plain (unweighted) mean of feedback scores, rounded to
// one decimal place. Used by the read path alongside the feedback list.
func AverageScore(feedbacks []models.Feedback) float64 {
	if len(feedbacks) == 0 {
		return 0
	}

	total := 0
	for _, feedback := range feedbacks {
		total += feedback.Score
	}

	return math.Round(float64(total)/float64(len(feedbacks))*10) / 10
}
