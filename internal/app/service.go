// Package app holds the application service behind the HTTP API and the
// refresh job: it runs the prediction pipeline against stored reviews and
// persists the results.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"spotlyvf/internal/domain"
	"spotlyvf/internal/notify"
	"spotlyvf/internal/predictor"
	"spotlyvf/internal/storage/sqlite"
)

var ErrPlaceNotFound = errors.New("place not found")
var ErrAnalyticsNotFound = errors.New("analytics not found")

// trendPeriodDays is the aggregation window for one analytics_trends row.
// Period bounds are truncated to whole days so re-analysis within the same
// day updates nothing.
const trendPeriodDays = 7

type Service struct {
	db        *sql.DB
	predictor *predictor.Predictor
	notifier  notify.Notifier
	staleness time.Duration
}

func NewService(db *sql.DB, p *predictor.Predictor, notifier notify.Notifier, staleness time.Duration) *Service {
	return &Service{
		db:        db,
		predictor: p,
		notifier:  notifier,
		staleness: staleness,
	}
}

// AnalyzeResult is the outcome of an analyze request: the persisted snapshot
// plus its current recommendations. Cached is true when a fresh snapshot was
// served without re-running the pipeline.
type AnalyzeResult struct {
	Snapshot        sqlite.AnalyticsSnapshot
	Recommendations []sqlite.StoredRecommendation
	Cached          bool
}

// Analyze runs the pipeline for one place, unless a snapshot younger than
// the staleness window exists and forceRefresh is false.
func (s *Service) Analyze(ctx context.Context, placeID string, forceRefresh, includeRecommendations bool) (AnalyzeResult, error) {
	place, err := sqlite.GetPlace(s.db, placeID)
	if err == sql.ErrNoRows {
		return AnalyzeResult{}, ErrPlaceNotFound
	}
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("load place: %w", err)
	}

	now := time.Now().UTC()

	existing, err := sqlite.GetAnalyticsByPlace(s.db, placeID)
	switch {
	case err == nil:
		if !forceRefresh && now.Sub(existing.LastAnalysis) < s.staleness {
			result := AnalyzeResult{Snapshot: existing, Cached: true}
			if includeRecommendations {
				result.Recommendations, err = sqlite.ListRecommendations(s.db, existing.ID)
				if err != nil {
					return AnalyzeResult{}, fmt.Errorf("load recommendations: %w", err)
				}
			}
			return result, nil
		}
	case err == sql.ErrNoRows:
		// first analysis for this place
	default:
		return AnalyzeResult{}, fmt.Errorf("load analytics: %w", err)
	}

	reviews, err := sqlite.GetApprovedReviews(s.db, placeID)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("load reviews: %w", err)
	}

	analysis := s.predictor.AnalyzeAt(ctx, place.Name, reviews, now)

	snapshot := sqlite.SnapshotFromAnalysis(placeID, place.Name, analysis)
	analyticsID, err := sqlite.UpsertAnalytics(s.db, snapshot)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("save analytics: %w", err)
	}
	snapshot.ID = analyticsID

	if len(analysis.Recommendations) > 0 {
		if err := sqlite.ReplaceRecommendations(s.db, analyticsID, analysis.Recommendations, now); err != nil {
			return AnalyzeResult{}, fmt.Errorf("save recommendations: %w", err)
		}
	}

	if err := s.recordTrendPeriod(analyticsID, analysis.Metrics, now); err != nil {
		log.Printf("record trend period failed analytics=%s err=%v", analyticsID, err)
	}

	s.maybeAlert(place.Name, existing, analysis)

	result := AnalyzeResult{Snapshot: snapshot}
	if includeRecommendations {
		result.Recommendations, err = sqlite.ListRecommendations(s.db, analyticsID)
		if err != nil {
			return AnalyzeResult{}, fmt.Errorf("load recommendations: %w", err)
		}
	}
	return result, nil
}

func (s *Service) recordTrendPeriod(analyticsID string, m domain.Metrics, now time.Time) error {
	periodEnd := now.Truncate(24 * time.Hour)
	periodStart := periodEnd.AddDate(0, 0, -trendPeriodDays)
	return sqlite.RecordTrendPeriod(s.db, analyticsID, periodStart, periodEnd,
		m.RecentReviewsCount, m.RecentAverageRating, m.PositiveSentimentRatio)
}

// maybeAlert notifies only on the transition into at_risk, not on every
// at_risk analysis.
func (s *Service) maybeAlert(businessName string, previous sqlite.AnalyticsSnapshot, analysis domain.Analysis) {
	if s.notifier == nil || analysis.Status.Status != domain.StatusAtRisk {
		return
	}
	if previous.PredictedStatus == domain.StatusAtRisk {
		return
	}
	if err := s.notifier.BusinessAtRisk(businessName, analysis.Status, analysis.Metrics); err != nil {
		log.Printf("at_risk alert failed business=%q err=%v", businessName, err)
	}
}

// Dashboard aggregates all snapshots plus the analyses of the last 30 days.
type Dashboard struct {
	Summary sqlite.DashboardSummary
	Recent  []sqlite.AnalyticsSnapshot
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	summary, err := sqlite.GetDashboardSummary(s.db)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard summary: %w", err)
	}
	recent, err := sqlite.ListRecentAnalytics(s.db, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return Dashboard{}, fmt.Errorf("recent analytics: %w", err)
	}
	return Dashboard{Summary: summary, Recent: recent}, nil
}

// Insights are threshold-derived talking points for one snapshot.
type Insights struct {
	BusinessStatus   string
	ConfidenceScore  float64
	KeyInsights      []string
	ImprovementAreas []string
	Strengths        []string
	UrgentActions    []string
}

func (s *Service) Insights(ctx context.Context, analyticsID string) (Insights, error) {
	snap, err := sqlite.GetAnalyticsByID(s.db, analyticsID)
	if err == sql.ErrNoRows {
		return Insights{}, ErrAnalyticsNotFound
	}
	if err != nil {
		return Insights{}, fmt.Errorf("load analytics: %w", err)
	}
	return buildInsights(snap), nil
}

func buildInsights(snap sqlite.AnalyticsSnapshot) Insights {
	in := Insights{
		BusinessStatus:  snap.PredictedStatus,
		ConfidenceScore: snap.ConfidenceScore,
		KeyInsights: []string{
			fmt.Sprintf("Your business has %d reviews with an average of %.1f", snap.TotalReviews, snap.AverageRating),
			fmt.Sprintf("%.1f%% of sentiments are positive", sentimentPercentage(snap)),
		},
	}

	if snap.AverageRating < 4.0 {
		in.ImprovementAreas = append(in.ImprovementAreas, "Service quality")
	}
	if snap.SentimentScore < 0.6 {
		in.ImprovementAreas = append(in.ImprovementAreas, "Customer experience")
	}
	if snap.TotalReviews < 10 {
		in.ImprovementAreas = append(in.ImprovementAreas, "Visibility and marketing")
	}

	if snap.AverageRating >= 4.0 {
		in.Strengths = append(in.Strengths, "Excellent average rating")
	}
	if snap.SentimentScore >= 0.7 {
		in.Strengths = append(in.Strengths, "Very positive sentiment")
	}
	if snap.TotalReviews >= 20 {
		in.Strengths = append(in.Strengths, "Healthy volume of reviews")
	}

	if snap.PredictedStatus == domain.StatusAtRisk {
		in.UrgentActions = append(in.UrgentActions,
			"Review service quality immediately",
			"Train your staff")
	} else if snap.TotalReviews == 0 {
		in.UrgentActions = append(in.UrgentActions, "Ask customers for reviews")
	}
	return in
}

func sentimentPercentage(snap sqlite.AnalyticsSnapshot) float64 {
	total := snap.PositiveSentimentCount + snap.NegativeSentimentCount
	if total == 0 {
		return 0
	}
	return float64(snap.PositiveSentimentCount) / float64(total) * 100
}

// UpdateRecommendation marks one recommendation implemented (or not) with
// optional notes. The analytics ID scopes the lookup so a recommendation
// cannot be flipped through another business's snapshot.
func (s *Service) UpdateRecommendation(ctx context.Context, analyticsID, recommendationID string, implemented bool, notes string) error {
	recs, err := sqlite.ListRecommendations(s.db, analyticsID)
	if err != nil {
		return fmt.Errorf("load recommendations: %w", err)
	}
	for _, r := range recs {
		if r.ID == recommendationID {
			if err := sqlite.SetRecommendationImplemented(s.db, recommendationID, implemented, notes, time.Now().UTC()); err != nil {
				return fmt.Errorf("update recommendation: %w", err)
			}
			return nil
		}
	}
	return ErrAnalyticsNotFound
}

// AddReview stores one review, creating the place on first sight.
func (s *Service) AddReview(ctx context.Context, placeID, placeName, content string, rating int, author, source string) (int64, error) {
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	now := time.Now().UTC()

	_, err := sqlite.GetPlace(s.db, placeID)
	if err == sql.ErrNoRows {
		if placeName == "" {
			return 0, ErrPlaceNotFound
		}
		if err := sqlite.InsertPlace(s.db, domain.Place{ID: placeID, Name: placeName, CreatedAt: now}); err != nil {
			return 0, fmt.Errorf("create place: %w", err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("load place: %w", err)
	}

	if source == "" {
		source = "app"
	}
	id, err := sqlite.InsertReview(s.db, domain.Review{
		PlaceID:    placeID,
		Content:    content,
		Rating:     rating,
		Author:     author,
		Source:     source,
		IsApproved: true,
		CreatedAt:  now,
	})
	if err != nil {
		return 0, fmt.Errorf("save review: %w", err)
	}
	return id, nil
}

// RefreshStale re-analyzes every place whose snapshot is older than the
// staleness window. Used by the scheduled job.
func (s *Service) RefreshStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.staleness)
	placeIDs, err := sqlite.ListStalePlaceIDs(s.db, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale analytics: %w", err)
	}

	refreshed := 0
	for _, placeID := range placeIDs {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Analyze(ctx, placeID, true, false); err != nil {
			log.Printf("refresh failed place=%s err=%v", placeID, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
