package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"spotlyvf/internal/app"
	"spotlyvf/internal/predictor"
	"spotlyvf/internal/recommend"
	"spotlyvf/internal/sentiment"
	"spotlyvf/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "api-test.db")
	db, err := sqlite.InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	aggregator := sentiment.NewAggregator(sentiment.KeywordClassifier{}, 2)
	engine := recommend.NewEngine(nil)
	service := app.NewService(db, predictor.New(aggregator, engine), nil, 24*time.Hour)

	srv := NewServer(":0", []string{"*"}, service)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, db
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func seedReviews(t *testing.T, ts *httptest.Server, placeID, placeName string, ratings []int, content string) {
	t.Helper()
	for _, rating := range ratings {
		resp := postJSON(t, ts.URL+"/api/v1/reviews", map[string]any{
			"place_id":   placeID,
			"place_name": placeName,
			"content":    content,
			"rating":     rating,
			"author":     "tester",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed review: expected 201, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestAnalyzeEndpointFullPipeline(t *testing.T) {
	ts, _ := newTestServer(t)
	seedReviews(t, ts, "cafe-1", "Cafe Uno", []int{1, 1, 2, 1, 2}, "terrible service, awful food")

	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{
		"place_id":                "cafe-1",
		"include_recommendations": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Analytics struct {
			PredictedStatus string  `json:"predicted_status"`
			TotalReviews    int     `json:"total_reviews"`
			AverageRating   float64 `json:"average_rating"`
		} `json:"analytics"`
		Recommendations []struct {
			Title    string `json:"title"`
			Priority string `json:"priority"`
		} `json:"recommendations"`
		Cached bool `json:"cached"`
	}
	decodeBody(t, resp, &body)

	if body.Analytics.PredictedStatus != "at_risk" {
		t.Fatalf("expected at_risk, got %s", body.Analytics.PredictedStatus)
	}
	if body.Analytics.TotalReviews != 5 {
		t.Fatalf("expected 5 reviews, got %d", body.Analytics.TotalReviews)
	}
	if body.Cached {
		t.Fatalf("first analysis must not be cached")
	}
	// nil backend: the static at_risk recommendations must be persisted
	if len(body.Recommendations) != 2 {
		t.Fatalf("expected 2 fallback recommendations, got %d", len(body.Recommendations))
	}
}

func TestAnalyzeEndpointStalenessGate(t *testing.T) {
	ts, db := newTestServer(t)
	seedReviews(t, ts, "cafe-1", "Cafe Uno", []int{5, 5, 4}, "excellent food, great service")

	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "cafe-1"})
	var first struct {
		Analytics struct {
			ID           string    `json:"id"`
			LastAnalysis time.Time `json:"last_analysis"`
		} `json:"analytics"`
		Cached bool `json:"cached"`
	}
	decodeBody(t, resp, &first)
	if first.Cached {
		t.Fatalf("first analysis must not be cached")
	}

	// Fresh snapshot, no force: served from cache.
	resp = postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "cafe-1"})
	var second struct {
		Analytics struct {
			ID string `json:"id"`
		} `json:"analytics"`
		Cached bool `json:"cached"`
	}
	decodeBody(t, resp, &second)
	if !second.Cached {
		t.Fatalf("expected cached result within staleness window")
	}
	if second.Analytics.ID != first.Analytics.ID {
		t.Fatalf("cached result must reuse the snapshot ID")
	}

	// force_refresh bypasses the gate.
	resp = postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "cafe-1", "force_refresh": true})
	var forced struct {
		Cached bool `json:"cached"`
	}
	decodeBody(t, resp, &forced)
	if forced.Cached {
		t.Fatalf("force_refresh must re-run the pipeline")
	}

	// Backdate the snapshot past the window: next call recomputes.
	if _, err := db.Exec(`UPDATE business_analytics SET last_analysis = ?`, time.Now().UTC().Add(-48*time.Hour)); err != nil {
		t.Fatalf("backdate snapshot failed: %v", err)
	}
	resp = postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "cafe-1"})
	var stale struct {
		Cached bool `json:"cached"`
	}
	decodeBody(t, resp, &stale)
	if stale.Cached {
		t.Fatalf("stale snapshot must be recomputed")
	}
}

func TestAnalyzeEndpointUnknownPlace(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "ghost"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAnalyzeEndpointMissingPlaceID(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	seedReviews(t, ts, "good", "Good Place", []int{5, 5, 5, 4}, "excellent experience")
	seedReviews(t, ts, "bad", "Bad Place", []int{1, 1, 2}, "horrible, dirty, rude staff")

	for _, placeID := range []string{"good", "bad"} {
		resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": placeID})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/analytics/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard failed: %v", err)
	}
	var body struct {
		TotalBusinesses    int              `json:"total_businesses"`
		AtRiskBusinesses   int              `json:"at_risk_businesses"`
		StatusDistribution map[string]int   `json:"status_distribution"`
		RecentAnalyses     []map[string]any `json:"recent_analyses"`
	}
	decodeBody(t, resp, &body)

	if body.TotalBusinesses != 2 {
		t.Fatalf("expected 2 businesses, got %d", body.TotalBusinesses)
	}
	if body.AtRiskBusinesses != 1 {
		t.Fatalf("expected 1 at_risk business, got %d", body.AtRiskBusinesses)
	}
	if len(body.RecentAnalyses) != 2 {
		t.Fatalf("expected 2 recent analyses, got %d", len(body.RecentAnalyses))
	}
}

func TestInsightsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	seedReviews(t, ts, "cafe-1", "Cafe Uno", []int{1, 1, 2}, "terrible, awful, dirty")

	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{"place_id": "cafe-1"})
	var analyzed struct {
		Analytics struct {
			ID string `json:"id"`
		} `json:"analytics"`
	}
	decodeBody(t, resp, &analyzed)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/analytics/%s/insights", ts.URL, analyzed.Analytics.ID))
	if err != nil {
		t.Fatalf("GET insights failed: %v", err)
	}
	var insights struct {
		BusinessStatus   string   `json:"business_status"`
		ImprovementAreas []string `json:"improvement_areas"`
		UrgentActions    []string `json:"urgent_actions"`
	}
	decodeBody(t, resp, &insights)

	if insights.BusinessStatus != "at_risk" {
		t.Fatalf("expected at_risk, got %s", insights.BusinessStatus)
	}
	if len(insights.UrgentActions) != 2 {
		t.Fatalf("at_risk must carry 2 urgent actions, got %v", insights.UrgentActions)
	}
	if len(insights.ImprovementAreas) == 0 {
		t.Fatalf("low-rated business must have improvement areas")
	}

	resp, err = http.Get(ts.URL + "/api/v1/analytics/missing/insights")
	if err != nil {
		t.Fatalf("GET insights failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown analytics, got %d", resp.StatusCode)
	}
}

func TestUpdateRecommendationEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	seedReviews(t, ts, "cafe-1", "Cafe Uno", []int{1, 2, 1}, "horrible experience")

	resp := postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{
		"place_id":                "cafe-1",
		"include_recommendations": true,
	})
	var analyzed struct {
		Analytics struct {
			ID string `json:"id"`
		} `json:"analytics"`
		Recommendations []struct {
			ID string `json:"id"`
		} `json:"recommendations"`
	}
	decodeBody(t, resp, &analyzed)
	if len(analyzed.Recommendations) == 0 {
		t.Fatalf("expected recommendations for at_risk business")
	}

	url := fmt.Sprintf("%s/api/v1/analytics/%s/recommendations/%s", ts.URL, analyzed.Analytics.ID, analyzed.Recommendations[0].ID)
	resp = postJSON(t, url, map[string]any{"implementation_notes": "done last week"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Re-analyze with include_recommendations and confirm the flag stuck.
	resp = postJSON(t, ts.URL+"/api/v1/analytics/analyze", map[string]any{
		"place_id":                "cafe-1",
		"include_recommendations": true,
	})
	var after struct {
		Recommendations []struct {
			ID            string `json:"id"`
			IsImplemented bool   `json:"is_implemented"`
		} `json:"recommendations"`
	}
	decodeBody(t, resp, &after)
	found := false
	for _, rec := range after.Recommendations {
		if rec.ID == analyzed.Recommendations[0].ID {
			found = true
			if !rec.IsImplemented {
				t.Fatalf("recommendation should be marked implemented")
			}
		}
	}
	if !found {
		t.Fatalf("updated recommendation missing from re-analysis")
	}

	// Wrong analytics scope: 404.
	wrong := fmt.Sprintf("%s/api/v1/analytics/other/recommendations/%s", ts.URL, analyzed.Recommendations[0].ID)
	resp = postJSON(t, wrong, map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for wrong analytics scope, got %d", resp.StatusCode)
	}
}

func TestAddReviewValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/reviews", map[string]any{
		"place_id": "cafe-1", "place_name": "Cafe Uno", "content": "ok", "rating": 9,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range rating, got %d", resp.StatusCode)
	}

	// Unknown place without a name cannot be auto-created.
	resp = postJSON(t, ts.URL+"/api/v1/reviews", map[string]any{
		"place_id": "ghost", "content": "ok", "rating": 4,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown place without name, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health failed: %v", err)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", body)
	}
}
