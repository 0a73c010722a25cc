package analytics

import "spotlyvf/internal/domain"

// ClassifyStatus applies the fixed decision policy over computed metrics.
// The table is evaluated top to bottom and the first match wins; the order
// encodes priority, so the rules must not be reordered or merged.
func ClassifyStatus(m domain.Metrics) domain.StatusResult {
	switch {
	case m.PositiveSentimentRatio >= 0.7 && m.AverageRating >= 4.0:
		return domain.StatusResult{
			Status:               domain.StatusSuccessful,
			Confidence:           m.ConfidenceLevel * 0.9,
			NeedsRecommendations: false,
			Summary:              "Business performing excellently with strong prospects",
		}
	case m.PositiveSentimentRatio >= 0.6 && m.AverageRating >= 3.5 &&
		(m.Trend == domain.TrendImproving || m.Trend == domain.TrendStable):
		return domain.StatusResult{
			Status:               domain.StatusRecovering,
			Confidence:           m.ConfidenceLevel * 0.8,
			NeedsRecommendations: true,
			Summary:              "Business heading in a good direction, with room to improve",
		}
	case m.PositiveSentimentRatio < 0.4 || m.AverageRating < 3.0 || m.Trend == domain.TrendDeclining:
		return domain.StatusResult{
			Status:               domain.StatusAtRisk,
			Confidence:           m.ConfidenceLevel * 0.85,
			NeedsRecommendations: true,
			Summary:              "Business requires immediate attention to avoid problems",
		}
	default:
		return domain.StatusResult{
			Status:               domain.StatusUncertain,
			Confidence:           m.ConfidenceLevel * 0.6,
			NeedsRecommendations: true,
			Summary:              "Analysis inconclusive, more information needed",
		}
	}
}

// ClassifyByRatingOnly is the degraded path used when no sentiment
// classifier is available at all: rating thresholds alone, with confidence
// capped below the full pipeline's ceiling.
func ClassifyByRatingOnly(totalReviews int, avgRating float64) domain.StatusResult {
	confidence := float64(totalReviews) / confidenceSaturate
	if confidence > 0.8 {
		confidence = 0.8
	}

	switch {
	case avgRating >= 4.0:
		return domain.StatusResult{
			Status:               domain.StatusSuccessful,
			Confidence:           confidence,
			NeedsRecommendations: false,
			Summary:              "Business performing well based on ratings alone",
		}
	case avgRating >= 3.5:
		return domain.StatusResult{
			Status:               domain.StatusRecovering,
			Confidence:           confidence,
			NeedsRecommendations: true,
			Summary:              "Ratings acceptable, sentiment analysis unavailable",
		}
	case avgRating < 3.0:
		return domain.StatusResult{
			Status:               domain.StatusAtRisk,
			Confidence:           confidence,
			NeedsRecommendations: true,
			Summary:              "Low ratings indicate the business needs attention",
		}
	default:
		return domain.StatusResult{
			Status:               domain.StatusUncertain,
			Confidence:           confidence,
			NeedsRecommendations: true,
			Summary:              "Ratings inconclusive, sentiment analysis unavailable",
		}
	}
}
