package sentiment

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"spotlyvf/internal/domain"
)

// RecencyWindow separates "recent" reviews from historical ones for trend
// analysis. Fixed policy, not configurable per call.
const RecencyWindow = 90 * 24 * time.Hour

// Aggregator runs a Classifier over review batches. It holds no state
// between calls and is safe for concurrent use across businesses.
type Aggregator struct {
	classifier Classifier
	workers    int
}

func NewAggregator(classifier Classifier, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{classifier: classifier, workers: workers}
}

// AnalyzeBatch classifies every review and returns one result per input, in
// input order. A failing classification never aborts the batch: the review
// gets a neutral result carrying the error text.
func (a *Aggregator) AnalyzeBatch(ctx context.Context, reviews []domain.Review) []domain.SentimentResult {
	results := make([]domain.SentimentResult, len(reviews))
	if len(reviews) == 0 {
		return results
	}

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i, review := range reviews {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = a.classifyOne(ctx, text)
		}(i, review.Content)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) classifyOne(ctx context.Context, text string) domain.SentimentResult {
	result, err := a.classifier.Classify(ctx, text)
	if err != nil {
		log.Printf("sentiment classify failed, substituting neutral: %v", err)
		return domain.SentimentResult{
			Label:      domain.SentimentNeutral,
			Score:      0.5,
			Confidence: 0.0,
			Err:        err.Error(),
		}
	}
	return result
}

// RecentReviews returns the subset of reviews created within the recency
// window before now, ordered by timestamp ascending so the trailing trend
// window is deterministic regardless of input order.
func RecentReviews(reviews []domain.Review, now time.Time) []domain.Review {
	cutoff := now.Add(-RecencyWindow)
	var recent []domain.Review
	for _, r := range reviews {
		if !r.CreatedAt.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.Before(recent[j].CreatedAt)
	})
	return recent
}
