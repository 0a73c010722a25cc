package analytics

import (
	"sort"
	"time"

	"spotlyvf/internal/domain"
	"spotlyvf/internal/sentiment"
)

// Fixed trend policy: the trailing window size and the minimum rating shift
// considered meaningfully non-noise on a 5-point scale.
const (
	trendWindowSize    = 5
	trendDeltaStars    = 0.3
	minRecentForTrend  = 3
	confidenceSaturate = 10.0
)

// ComputeMetrics derives the descriptive statistics for one analysis pass.
// Pure function: no I/O, no state, deterministic for a given now.
func ComputeMetrics(reviews []domain.Review, sentiments []domain.SentimentResult, now time.Time) domain.Metrics {
	total := len(reviews)
	if total == 0 {
		return domain.Metrics{
			AverageSentimentScore: 0.5,
			Trend:                 domain.TrendInsufficientData,
		}
	}

	var ratingSum int
	for _, r := range reviews {
		ratingSum += r.Rating
	}
	avgRating := float64(ratingSum) / float64(total)

	var positives int
	var scoreSum float64
	for _, s := range sentiments {
		if s.Label == domain.SentimentPositive {
			positives++
		}
		scoreSum += s.Score
	}
	avgScore := 0.5
	if len(sentiments) > 0 {
		avgScore = scoreSum / float64(len(sentiments))
	}

	recent := sentiment.RecentReviews(reviews, now)
	recentAvg := avgRating
	if len(recent) > 0 {
		var sum int
		for _, r := range recent {
			sum += r.Rating
		}
		recentAvg = float64(sum) / float64(len(recent))
	}

	confidence := float64(total) / confidenceSaturate
	if confidence > 1.0 {
		confidence = 1.0
	}

	return domain.Metrics{
		TotalReviews:           total,
		PositiveSentimentRatio: float64(positives) / float64(total),
		AverageRating:          avgRating,
		AverageSentimentScore:  avgScore,
		RecentReviewsCount:     len(recent),
		RecentAverageRating:    recentAvg,
		Trend:                  computeTrend(reviews, len(recent), now),
		ConfidenceLevel:        confidence,
	}
}

// computeTrend compares the newest ratings against everything before them.
// Requires at least 3 recent reviews and a non-empty baseline; the window is
// selected by timestamp so input order never changes the result.
func computeTrend(reviews []domain.Review, recentCount int, now time.Time) string {
	if recentCount < minRecentForTrend {
		return domain.TrendInsufficientData
	}

	ordered := make([]domain.Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	window := trendWindowSize
	if recentCount < window {
		window = recentCount
	}
	baseline := ordered[:len(ordered)-window]
	if len(baseline) == 0 {
		return domain.TrendInsufficientData
	}

	diff := meanRating(ordered[len(ordered)-window:]) - meanRating(baseline)
	switch {
	case diff > trendDeltaStars:
		return domain.TrendImproving
	case diff < -trendDeltaStars:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func meanRating(reviews []domain.Review) float64 {
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
