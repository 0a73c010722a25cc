package analytics

import (
	"math"
	"testing"

	"spotlyvf/internal/domain"
)

func TestClassifyStatusDecisionTable(t *testing.T) {
	cases := []struct {
		name       string
		metrics    domain.Metrics
		wantStatus string
		multiplier float64
		wantRecs   bool
	}{
		{
			name: "successful",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.75, AverageRating: 4.3,
				Trend: domain.TrendStable, ConfidenceLevel: 1.0,
			},
			wantStatus: domain.StatusSuccessful, multiplier: 0.9, wantRecs: false,
		},
		{
			name: "recovering",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.65, AverageRating: 3.7,
				Trend: domain.TrendImproving, ConfidenceLevel: 0.8,
			},
			wantStatus: domain.StatusRecovering, multiplier: 0.8, wantRecs: true,
		},
		{
			name: "at risk by ratio",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.3, AverageRating: 3.8,
				Trend: domain.TrendStable, ConfidenceLevel: 0.6,
			},
			wantStatus: domain.StatusAtRisk, multiplier: 0.85, wantRecs: true,
		},
		{
			name: "at risk by rating",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.5, AverageRating: 2.8,
				Trend: domain.TrendStable, ConfidenceLevel: 0.5,
			},
			wantStatus: domain.StatusAtRisk, multiplier: 0.85, wantRecs: true,
		},
		{
			name: "at risk by declining trend",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.5, AverageRating: 3.6,
				Trend: domain.TrendDeclining, ConfidenceLevel: 1.0,
			},
			wantStatus: domain.StatusAtRisk, multiplier: 0.85, wantRecs: true,
		},
		{
			name: "uncertain",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.5, AverageRating: 3.6,
				Trend: domain.TrendStable, ConfidenceLevel: 0.4,
			},
			wantStatus: domain.StatusUncertain, multiplier: 0.6, wantRecs: true,
		},
		{
			name: "insufficient data trend falls through to uncertain",
			metrics: domain.Metrics{
				PositiveSentimentRatio: 0.65, AverageRating: 3.7,
				Trend: domain.TrendInsufficientData, ConfidenceLevel: 0.7,
			},
			wantStatus: domain.StatusUncertain, multiplier: 0.6, wantRecs: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyStatus(tc.metrics)
			if got.Status != tc.wantStatus {
				t.Fatalf("status = %s, want %s", got.Status, tc.wantStatus)
			}
			want := tc.metrics.ConfidenceLevel * tc.multiplier
			if math.Abs(got.Confidence-want) > 1e-9 {
				t.Fatalf("confidence = %f, want %f", got.Confidence, want)
			}
			if got.Confidence > tc.metrics.ConfidenceLevel {
				t.Fatalf("confidence %f exceeds confidence level %f", got.Confidence, tc.metrics.ConfidenceLevel)
			}
			if got.NeedsRecommendations != tc.wantRecs {
				t.Fatalf("needs recommendations = %v, want %v", got.NeedsRecommendations, tc.wantRecs)
			}
			if got.Summary == "" {
				t.Fatal("summary must not be empty")
			}
		})
	}
}

func TestClassifyStatusFirstMatchWins(t *testing.T) {
	// A successful business on a declining trend still matches rule 1 first.
	m := domain.Metrics{
		PositiveSentimentRatio: 0.8, AverageRating: 4.5,
		Trend: domain.TrendDeclining, ConfidenceLevel: 1.0,
	}
	got := ClassifyStatus(m)
	if got.Status != domain.StatusSuccessful {
		t.Fatalf("status = %s, want successful (rule order matters)", got.Status)
	}
}

func TestClassifyByRatingOnly(t *testing.T) {
	cases := []struct {
		rating float64
		total  int
		want   string
	}{
		{4.5, 20, domain.StatusSuccessful},
		{3.7, 10, domain.StatusRecovering},
		{2.1, 5, domain.StatusAtRisk},
		{3.2, 8, domain.StatusUncertain},
	}
	for _, tc := range cases {
		got := ClassifyByRatingOnly(tc.total, tc.rating)
		if got.Status != tc.want {
			t.Fatalf("rating %f -> %s, want %s", tc.rating, got.Status, tc.want)
		}
		if got.Confidence > 0.8 {
			t.Fatalf("rating-only confidence %f must be capped at 0.8", got.Confidence)
		}
	}
}
