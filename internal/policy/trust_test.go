package policy

import (
	"testing"
	"time"

	"poolride/internal/models"
)

func feedbackAt(score int, createdAt time.Time) models.Feedback {
	return models.Feedback{Score: score, CreatedAt: createdAt}
}

func TestComputeTrustScore(t *testing.T) {
	now := time.Now()

	t.Run("no feedback keeps the default", func(t *testing.T) {
		if got := ComputeTrustScore(nil, now); got != models.TrustScoreDefault {
			t.Errorf("ComputeTrustScore(nil) = %d, want %d", got, models.TrustScoreDefault)
		}
	})

	t.Run("single fresh feedback maps score to percentage", func(t *testing.T) {
		tests := []struct {
			score int
			want  int
		}{
			{1, 20},
			{2, 40},
			{3, 60},
			{4, 80},
			{5, 100},
		}
		for _, tt := range tests {
			feedbacks := []models.Feedback{feedbackAt(tt.score, now.Add(-time.Hour))}
			if got := ComputeTrustScore(feedbacks, now); got != tt.want {
				t.Errorf("score %d => trust %d, want %d", tt.score, got, tt.want)
			}
		}
	})

	t.Run("recent feedback outweighs old feedback", func(t *testing.T) {
		feedbacks := []models.Feedback{
			feedbackAt(5, now.Add(-time.Hour)),
			feedbackAt(1, now.Add(-30*24*time.Hour)),
		}
		// Fresh 5 has weight 1, month-old 1 has weight 1/30: the mean sits
		// far above the midpoint of 60.
		got := ComputeTrustScore(feedbacks, now)
		if got <= 80 {
			t.Errorf("trust = %d, expected recency weighting to pull it above 80", got)
		}
	})

	t.Run("equal-age feedback averages evenly", func(t *testing.T) {
		createdAt := now.Add(-48 * time.Hour)
		feedbacks := []models.Feedback{
			feedbackAt(5, createdAt),
			feedbackAt(3, createdAt),
		}
		if got := ComputeTrustScore(feedbacks, now); got != 80 {
			t.Errorf("trust = %d, want 80 for evenly weighted 5 and 3", got)
		}
	})

	t.Run("result stays within bounds", func(t *testing.T) {
		low := []models.Feedback{feedbackAt(1, now), feedbackAt(1, now)}
		if got := ComputeTrustScore(low, now); got < models.TrustScoreMin || got > models.TrustScoreMax {
			t.Errorf("trust = %d, out of bounds", got)
		}
	})
}

func TestApplyPenalty(t *testing.T) {
	tests := []struct {
		name    string
		current int
		points  int
		want    int
	}{
		{"normal deduction", 50, 5, 45},
		{"floors at zero", 3, 5, 0},
		{"already zero", 0, 5, 0},
		{"zero points", 50, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyPenalty(tt.current, tt.points); got != tt.want {
				t.Errorf("ApplyPenalty(%d, %d) = %d, want %d", tt.current, tt.points, got, tt.want)
			}
		})
	}
}

func TestClampTrustScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, models.TrustScoreMin},
		{0, 0},
		{50, 50},
		{100, 100},
		{140, models.TrustScoreMax},
	}

	for _, tt := range tests {
		if got := ClampTrustScore(tt.in); got != tt.want {
			t.Errorf("ClampTrustScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAverageScore(t *testing.T) {
	now := time.Now()

	if got := AverageScore(nil); got != 0 {
		t.Errorf("AverageScore(nil) = %v, want 0", got)
	}

	feedbacks := []models.Feedback{
		feedbackAt(5, now),
		feedbackAt(4, now),
		feedbackAt(4, now),
	}
	if got := AverageScore(feedbacks); got != 4.3 {
		t.Errorf("AverageScore = %v, want 4.3", got)
	}
}
