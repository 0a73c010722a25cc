package domain

import "time"

// Sentiment labels produced by a classifier. The classifier head is binary;
// neutral is reserved for failed or tied classifications.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentResult is the per-review output of a sentiment classifier.
// Score is the probability of the positive class; Confidence is the
// classifier's own certainty. Err carries a classification failure without
// aborting the batch the review belongs to.
type SentimentResult struct {
	Label      string
	Score      float64 // [0,1], probability of positive
	Confidence float64 // [0,1]
	Err        string  // empty unless classification failed
}

// Trend values for the recent-vs-baseline rating comparison.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Metrics are the descriptive statistics derived from one analysis pass.
// They are recomputed on every invocation and never cached here.
type Metrics struct {
	TotalReviews           int     `json:"total_reviews"`
	PositiveSentimentRatio float64 `json:"positive_sentiment_ratio"`
	AverageRating          float64 `json:"average_rating"`
	AverageSentimentScore  float64 `json:"average_sentiment_score"`
	RecentReviewsCount     int     `json:"recent_reviews_count"`
	RecentAverageRating    float64 `json:"recent_average_rating"`
	Trend                  string  `json:"trend"`
	ConfidenceLevel        float64 `json:"confidence_level"`
}

// Business status values, in decreasing order of health.
const (
	StatusSuccessful = "successful"
	StatusRecovering = "recovering"
	StatusAtRisk     = "at_risk"
	StatusUncertain  = "uncertain"
)

// StatusResult is the terminal output of status classification.
// Confidence is Metrics.ConfidenceLevel scaled by a status-specific
// multiplier (0.6-0.9), so it never exceeds ConfidenceLevel.
type StatusResult struct {
	Status               string  `json:"status"`
	Confidence           float64 `json:"confidence"`
	NeedsRecommendations bool    `json:"needs_recommendations"`
	Summary              string  `json:"summary"`
}

// Recommendation priorities and categories.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	CategoryService     = "service"
	CategoryFoodQuality = "food_quality"
	CategoryPricing     = "pricing"
	CategoryAmbiance    = "ambiance"
	CategoryCleanliness = "cleanliness"
	CategoryMarketing   = "marketing"
	CategoryOperations  = "operations"
)

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// Analysis is the full result of one pipeline invocation, as handed back to
// the caller. Persistence of the snapshot is the caller's responsibility.
type Analysis struct {
	Status          StatusResult     `json:"status"`
	Metrics         Metrics          `json:"metrics"`
	Recommendations []Recommendation `json:"recommendations"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryService, CategoryFoodQuality, CategoryPricing,
		CategoryAmbiance, CategoryCleanliness, CategoryMarketing, CategoryOperations:
		return true
	}
	return false
}
