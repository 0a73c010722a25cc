package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"spotlyvf/internal/domain"
)

const maxRecommendations = 5
const sampleReviewLimit = 5
const sampleReviewMaxChars = 200

// ErrBackendUnconfigured marks the absence of any generative backend.
var ErrBackendUnconfigured = errors.New("no text generation backend configured")

// GenerationError distinguishes a failed backend call from unusable output,
// so fallback selection is an explicit match instead of a blanket catch.
type GenerationError struct {
	Stage string // "backend" or "parse"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("recommendation generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Engine produces actionable recommendations for a classified business.
// Stateless; safe for concurrent use across businesses.
type Engine struct {
	backend Backend
}

// NewEngine creates an engine. backend may be nil, in which case every
// Generate call serves the static fallback table.
func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Generate returns at most 5 recommendations for the business. It never
// fails: backend absence, call failure, and unusable output all degrade to
// the status-keyed fallback table.
func (e *Engine) Generate(ctx context.Context, businessName string, status domain.StatusResult, metrics domain.Metrics, sampleReviews []string) []domain.Recommendation {
	recs, err := e.generate(ctx, businessName, status, metrics, sampleReviews)
	if err != nil {
		var genErr *GenerationError
		switch {
		case errors.Is(err, ErrBackendUnconfigured):
			log.Printf("recommend fallback business=%q reason=unconfigured", businessName)
		case errors.As(err, &genErr):
			log.Printf("recommend fallback business=%q stage=%s err=%v", businessName, genErr.Stage, genErr.Err)
		default:
			log.Printf("recommend fallback business=%q err=%v", businessName, err)
		}
		return FallbackRecommendations(status.Status)
	}
	return recs
}

func (e *Engine) generate(ctx context.Context, businessName string, status domain.StatusResult, metrics domain.Metrics, sampleReviews []string) ([]domain.Recommendation, error) {
	if e.backend == nil {
		return nil, ErrBackendUnconfigured
	}

	systemPrompt, userPrompt := buildPrompts(businessName, status, metrics, sampleReviews)
	response, err := e.backend.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, &GenerationError{Stage: "backend", Err: err}
	}

	recs := ParseRecommendations(response)
	if len(recs) == 0 {
		return nil, &GenerationError{Stage: "parse", Err: fmt.Errorf("no recommendations extracted from %d-byte response", len(response))}
	}
	return recs, nil
}

func buildPrompts(businessName string, status domain.StatusResult, metrics domain.Metrics, sampleReviews []string) (string, string) {
	systemPrompt := `You are an expert business consultant specializing in restaurants and services.
Analyze the business information and provide specific, actionable recommendations.
Respond ALWAYS with JSON only (no markdown): an array of recommendations, each with:
- title: short, clear title
- description: detailed, specific description
- priority: 'high', 'medium' or 'low'
- category: one of ['service', 'food_quality', 'pricing', 'ambiance', 'cleanliness', 'marketing', 'operations']`

	var reviewLines strings.Builder
	for i, review := range sampleReviews {
		if i >= sampleReviewLimit {
			break
		}
		excerpt := strings.TrimSpace(review)
		if len(excerpt) > sampleReviewMaxChars {
			excerpt = excerpt[:sampleReviewMaxChars] + "..."
		}
		reviewLines.WriteString(fmt.Sprintf("- %q\n", excerpt))
	}
	reviewsBlock := "none"
	if reviewLines.Len() > 0 {
		reviewsBlock = reviewLines.String()
	}

	userPrompt := fmt.Sprintf(`Business: %s
Current status: %s

Metrics:
- Total reviews: %d
- Average rating: %.1f/5
- Positive sentiment: %.1f%%
- Trend: %s

Recent reviews:
%s
Provide 3-5 specific recommendations to improve this business.`,
		businessName, status.Status,
		metrics.TotalReviews, metrics.AverageRating,
		metrics.PositiveSentimentRatio*100, metrics.Trend,
		reviewsBlock,
	)

	return systemPrompt, userPrompt
}
