package predictor

import (
	"context"
	"log"
	"sort"
	"time"

	"spotlyvf/internal/analytics"
	"spotlyvf/internal/domain"
	"spotlyvf/internal/recommend"
	"spotlyvf/internal/sentiment"
)

// sampleReviewCount is how many of the newest reviews are offered to the
// recommendation engine as context.
const sampleReviewCount = 10

// Predictor runs the full analysis pipeline for one business: sentiment
// aggregation, metrics, status classification, recommendations. It holds no
// mutable state between calls and is safe to invoke concurrently for
// different businesses.
type Predictor struct {
	aggregator *sentiment.Aggregator
	engine     *recommend.Engine
}

// New wires a predictor. aggregator may be nil when no sentiment classifier
// is available; analysis then degrades to the rating-only path.
func New(aggregator *sentiment.Aggregator, engine *recommend.Engine) *Predictor {
	return &Predictor{aggregator: aggregator, engine: engine}
}

// Analyze runs the pipeline against the supplied reviews as of now.
func (p *Predictor) Analyze(ctx context.Context, businessName string, reviews []domain.Review) domain.Analysis {
	return p.AnalyzeAt(ctx, businessName, reviews, time.Now())
}

// AnalyzeAt is Analyze with an explicit analysis time. Every public path
// returns a well-formed Analysis; nothing escapes as an error.
func (p *Predictor) AnalyzeAt(ctx context.Context, businessName string, reviews []domain.Review, now time.Time) domain.Analysis {
	if len(reviews) == 0 {
		return domain.Analysis{
			Status: domain.StatusResult{
				Status:     domain.StatusUncertain,
				Confidence: 0.0,
				Summary:    "No reviews to analyze",
			},
			Metrics:    analytics.ComputeMetrics(nil, nil, now),
			AnalyzedAt: now,
		}
	}

	var metrics domain.Metrics
	var status domain.StatusResult

	if p.aggregator == nil {
		// No classifier at all: rating-only analysis with reduced confidence.
		metrics = analytics.ComputeMetrics(reviews, nil, now)
		status = analytics.ClassifyByRatingOnly(metrics.TotalReviews, metrics.AverageRating)
		log.Printf("analyze business=%q mode=rating-only reviews=%d status=%s", businessName, len(reviews), status.Status)
	} else {
		sentiments := p.aggregator.AnalyzeBatch(ctx, reviews)
		metrics = analytics.ComputeMetrics(reviews, sentiments, now)
		status = analytics.ClassifyStatus(metrics)
		log.Printf("analyze business=%q reviews=%d positive_ratio=%.2f avg_rating=%.2f trend=%s status=%s confidence=%.2f",
			businessName, len(reviews), metrics.PositiveSentimentRatio, metrics.AverageRating, metrics.Trend, status.Status, status.Confidence)
	}

	var recommendations []domain.Recommendation
	if status.NeedsRecommendations {
		recommendations = p.engine.Generate(ctx, businessName, status, metrics, sampleTexts(reviews))
	}

	return domain.Analysis{
		Status:          status,
		Metrics:         metrics,
		Recommendations: recommendations,
		AnalyzedAt:      now,
	}
}

// sampleTexts returns the contents of the newest reviews, newest first.
func sampleTexts(reviews []domain.Review) []string {
	ordered := make([]domain.Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	var texts []string
	for _, r := range ordered {
		if len(texts) >= sampleReviewCount {
			break
		}
		texts = append(texts, r.Content)
	}
	return texts
}
