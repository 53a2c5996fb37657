package services

import (
	"fmt"
	"math"
)

// MaxAmazingnessScore caps the composite score.
const MaxAmazingnessScore = 150

// AmazingnessBonusThreshold: completions scoring at or above this earn the
// half-again XP bonus.
const AmazingnessBonusThreshold = 110

// QualityMetrics are optional per-completion sub-ratings, all 1-5. Pace is
// centered: 3 is ideal and both rushing and dragging lose points.
type QualityMetrics struct {
	Clarity        int  `json:"clarity"`
	Usefulness     int  `json:"usefulness"`
	Pace           int  `json:"pace"`
	WouldRecommend bool `json:"would_recommend"`
}

// CompletionScoreInput feeds the amazingness scorer. Only PerformanceScore is
// required; the optional terms each add their capped share.
type CompletionScoreInput struct {
	PerformanceScore   int             `json:"performance_score"`             // 0-100
	SatisfactionRating *int            `json:"satisfaction_rating,omitempty"` // 1-5
	EngagementScore    *int            `json:"engagement_score,omitempty"`    // 1-10
	Quality            *QualityMetrics `json:"quality_metrics,omitempty"`
}

// ScoreCompletion computes the 0-150 composite amazingness score:
// base performance, up to 20 from satisfaction, up to 15 from engagement,
// up to 15 from averaged quality sub-ratings, and a flat 10 for a
// recommendation, capped at 150.
func ScoreCompletion(in CompletionScoreInput) (int, error) {
	if in.PerformanceScore < 0 || in.PerformanceScore > 100 {
		return 0, fmt.Errorf("%w: performance score must be 0-100, got %d", ErrInvalidInput, in.PerformanceScore)
	}

	total := float64(in.PerformanceScore)

	if in.SatisfactionRating != nil {
		r := *in.SatisfactionRating
		if r < 1 || r > 5 {
			return 0, fmt.Errorf("%w: satisfaction rating must be 1-5, got %d", ErrInvalidInput, r)
		}
		total += float64(r) / 5 * 20
	}

	if in.EngagementScore != nil {
		e := *in.EngagementScore
		if e < 1 || e > 10 {
			return 0, fmt.Errorf("%w: engagement score must be 1-10, got %d", ErrInvalidInput, e)
		}
		total += float64(e) / 10 * 15
	}

	if in.Quality != nil {
		q := *in.Quality
		if q.Clarity < 1 || q.Clarity > 5 || q.Usefulness < 1 || q.Usefulness > 5 || q.Pace < 1 || q.Pace > 5 {
			return 0, fmt.Errorf("%w: quality sub-ratings must be 1-5", ErrInvalidInput)
		}
		paceScore := 5 - int(math.Abs(float64(3-q.Pace)))
		qualityAvg := float64(q.Clarity+q.Usefulness+paceScore) / 3
		total += qualityAvg / 5 * 15
		if q.WouldRecommend {
			total += 10
		}
	}

	score := int(math.Round(total))
	if score > MaxAmazingnessScore {
		score = MaxAmazingnessScore
	}
	return score, nil
}

// QualityTier names the score band, checked top down.
func QualityTier(score int) string {
	switch {
	case score >= 130:
		return "Absolutely Amazing"
	case score >= 110:
		return "Amazing"
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Great"
	case score >= 60:
		return "Good"
	default:
		return "Improving"
	}
}

// PerformanceXP scales a lesson's base XP by the performance score.
func PerformanceXP(baseXP int64, performanceScore int) int64 {
	return baseXP * int64(performanceScore) / 100
}

// AmazingnessBonusXP returns the extra XP for high-amazingness completions:
// half the base award again, floored, once the score reaches the threshold.
func AmazingnessBonusXP(baseXPAwarded int64, amazingnessScore int) int64 {
	if amazingnessScore < AmazingnessBonusThreshold {
		return 0
	}
	return baseXPAwarded / 2
}
