package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"spotlyvf/internal/domain"
)

// AnalyticsSnapshot is the persisted result of one analysis run.
type AnalyticsSnapshot struct {
	ID                     string
	PlaceID                string
	BusinessName           string
	TotalReviews           int
	AverageRating          float64
	PositiveSentimentCount int
	NegativeSentimentCount int
	SentimentScore         float64
	PredictedStatus        string
	ConfidenceScore        float64
	Trend                  string
	LastAnalysis           time.Time
	CreatedAt              time.Time
}

// SnapshotFromAnalysis maps a pipeline result onto the persisted shape.
func SnapshotFromAnalysis(placeID, businessName string, a domain.Analysis) AnalyticsSnapshot {
	positive := int(a.Metrics.PositiveSentimentRatio * float64(a.Metrics.TotalReviews))
	return AnalyticsSnapshot{
		PlaceID:                placeID,
		BusinessName:           businessName,
		TotalReviews:           a.Metrics.TotalReviews,
		AverageRating:          a.Metrics.AverageRating,
		PositiveSentimentCount: positive,
		NegativeSentimentCount: a.Metrics.TotalReviews - positive,
		SentimentScore:         a.Metrics.AverageSentimentScore,
		PredictedStatus:        a.Status.Status,
		ConfidenceScore:        a.Status.Confidence,
		Trend:                  a.Metrics.Trend,
		LastAnalysis:           a.AnalyzedAt,
	}
}

// UpsertAnalytics writes the snapshot, keyed by place. Returns the stable
// analytics row ID.
func UpsertAnalytics(db *sql.DB, s AnalyticsSnapshot) (string, error) {
	var existingID string
	err := db.QueryRow(`SELECT id FROM business_analytics WHERE place_id = ?`, s.PlaceID).Scan(&existingID)
	if err == sql.ErrNoRows {
		id := uuid.NewString()
		_, err = db.Exec(
			`INSERT INTO business_analytics
			 (id, place_id, business_name, total_reviews, average_rating,
			  positive_sentiment_count, negative_sentiment_count, sentiment_score,
			  predicted_status, confidence_score, trend, last_analysis)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, s.PlaceID, s.BusinessName, s.TotalReviews, s.AverageRating,
			s.PositiveSentimentCount, s.NegativeSentimentCount, s.SentimentScore,
			s.PredictedStatus, s.ConfidenceScore, s.Trend, s.LastAnalysis,
		)
		return id, err
	}
	if err != nil {
		return "", err
	}

	_, err = db.Exec(
		`UPDATE business_analytics
		 SET business_name = ?, total_reviews = ?, average_rating = ?,
		     positive_sentiment_count = ?, negative_sentiment_count = ?, sentiment_score = ?,
		     predicted_status = ?, confidence_score = ?, trend = ?, last_analysis = ?
		 WHERE id = ?`,
		s.BusinessName, s.TotalReviews, s.AverageRating,
		s.PositiveSentimentCount, s.NegativeSentimentCount, s.SentimentScore,
		s.PredictedStatus, s.ConfidenceScore, s.Trend, s.LastAnalysis,
		existingID,
	)
	return existingID, err
}

func GetAnalyticsByPlace(db *sql.DB, placeID string) (AnalyticsSnapshot, error) {
	return scanSnapshot(db.QueryRow(
		`SELECT id, place_id, business_name, total_reviews, average_rating,
		        positive_sentiment_count, negative_sentiment_count, sentiment_score,
		        predicted_status, confidence_score, trend, last_analysis, created_at
		 FROM business_analytics WHERE place_id = ?`, placeID))
}

func GetAnalyticsByID(db *sql.DB, id string) (AnalyticsSnapshot, error) {
	return scanSnapshot(db.QueryRow(
		`SELECT id, place_id, business_name, total_reviews, average_rating,
		        positive_sentiment_count, negative_sentiment_count, sentiment_score,
		        predicted_status, confidence_score, trend, last_analysis, created_at
		 FROM business_analytics WHERE id = ?`, id))
}

func scanSnapshot(row *sql.Row) (AnalyticsSnapshot, error) {
	var s AnalyticsSnapshot
	err := row.Scan(
		&s.ID, &s.PlaceID, &s.BusinessName, &s.TotalReviews, &s.AverageRating,
		&s.PositiveSentimentCount, &s.NegativeSentimentCount, &s.SentimentScore,
		&s.PredictedStatus, &s.ConfidenceScore, &s.Trend, &s.LastAnalysis, &s.CreatedAt,
	)
	return s, err
}

// ListStalePlaceIDs returns places whose snapshot is older than the cutoff,
// plus places that have reviews but no snapshot at all.
func ListStalePlaceIDs(db *sql.DB, cutoff time.Time) ([]string, error) {
	rows, err := db.Query(
		`SELECT place_id FROM business_analytics WHERE last_analysis < ?
		 UNION
		 SELECT DISTINCT r.place_id FROM reviews r
		 LEFT JOIN business_analytics ba ON ba.place_id = r.place_id
		 WHERE ba.id IS NULL`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func ListRecentAnalytics(db *sql.DB, since time.Time) ([]AnalyticsSnapshot, error) {
	rows, err := db.Query(
		`SELECT id, place_id, business_name, total_reviews, average_rating,
		        positive_sentiment_count, negative_sentiment_count, sentiment_score,
		        predicted_status, confidence_score, trend, last_analysis, created_at
		 FROM business_analytics WHERE last_analysis >= ?
		 ORDER BY last_analysis DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalyticsSnapshot
	for rows.Next() {
		var s AnalyticsSnapshot
		if err := rows.Scan(
			&s.ID, &s.PlaceID, &s.BusinessName, &s.TotalReviews, &s.AverageRating,
			&s.PositiveSentimentCount, &s.NegativeSentimentCount, &s.SentimentScore,
			&s.PredictedStatus, &s.ConfidenceScore, &s.Trend, &s.LastAnalysis, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DashboardSummary aggregates the analytics table for the dashboard endpoint.
type DashboardSummary struct {
	TotalBusinesses      int
	SuccessfulBusinesses int
	AtRiskBusinesses     int
	AvgRating            float64
	TotalReviews         int
	StatusDistribution   map[string]int
}

func GetDashboardSummary(db *sql.DB) (DashboardSummary, error) {
	s := DashboardSummary{StatusDistribution: make(map[string]int)}

	err := db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN predicted_status = 'successful' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN predicted_status = 'at_risk' THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(average_rating), 0),
		        COALESCE(SUM(total_reviews), 0)
		 FROM business_analytics`,
	).Scan(&s.TotalBusinesses, &s.SuccessfulBusinesses, &s.AtRiskBusinesses, &s.AvgRating, &s.TotalReviews)
	if err != nil {
		return s, err
	}

	rows, err := db.Query(
		`SELECT predicted_status, COUNT(*) FROM business_analytics GROUP BY predicted_status`,
	)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return s, err
		}
		s.StatusDistribution[status] = count
	}
	return s, rows.Err()
}

// TrendPeriod is one row of the historical trend table.
type TrendPeriod struct {
	ID              string
	AnalyticsID     string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	ReviewsCount    int
	AvgRating       float64
	SentimentRatio  float64
	RatingChange    float64
	SentimentChange float64
}

// RecordTrendPeriod appends a period snapshot, computing deltas against the
// latest prior period for the same analytics row. Re-recording an identical
// period is a no-op.
func RecordTrendPeriod(db *sql.DB, analyticsID string, periodStart, periodEnd time.Time, reviewsCount int, avgRating, sentimentRatio float64) error {
	var prevRating, prevRatio float64
	var havePrev bool
	err := db.QueryRow(
		`SELECT avg_rating, sentiment_ratio FROM analytics_trends
		 WHERE analytics_id = ? ORDER BY period_end DESC LIMIT 1`,
		analyticsID,
	).Scan(&prevRating, &prevRatio)
	if err == nil {
		havePrev = true
	} else if err != sql.ErrNoRows {
		return err
	}

	ratingChange := 0.0
	sentimentChange := 0.0
	if havePrev {
		ratingChange = avgRating - prevRating
		sentimentChange = sentimentRatio - prevRatio
	}

	_, err = db.Exec(
		`INSERT OR IGNORE INTO analytics_trends
		 (id, analytics_id, period_start, period_end, reviews_count, avg_rating, sentiment_ratio, rating_change, sentiment_change)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), analyticsID, periodStart, periodEnd,
		reviewsCount, avgRating, sentimentRatio, ratingChange, sentimentChange,
	)
	return err
}

func GetTrendPeriods(db *sql.DB, analyticsID string, limit int) ([]TrendPeriod, error) {
	rows, err := db.Query(
		`SELECT id, analytics_id, period_start, period_end, reviews_count,
		        avg_rating, sentiment_ratio, rating_change, sentiment_change
		 FROM analytics_trends WHERE analytics_id = ?
		 ORDER BY period_end DESC LIMIT ?`,
		analyticsID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrendPeriod
	for rows.Next() {
		var t TrendPeriod
		if err := rows.Scan(
			&t.ID, &t.AnalyticsID, &t.PeriodStart, &t.PeriodEnd, &t.ReviewsCount,
			&t.AvgRating, &t.SentimentRatio, &t.RatingChange, &t.SentimentChange,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
