// Package api exposes the analytics pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"spotlyvf/internal/app"
	"spotlyvf/internal/storage/sqlite"
)

// Handler manages HTTP request handlers.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// SetupRoutes configures API routes.
func SetupRoutes(router *mux.Router, h *Handler) {
	router.HandleFunc("/analytics/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/analytics/analyze", h.Analyze).Methods("POST")
	router.HandleFunc("/analytics/{id}/insights", h.GetInsights).Methods("GET")
	router.HandleFunc("/analytics/{id}/recommendations/{recID}", h.UpdateRecommendation).Methods("POST")
	router.HandleFunc("/reviews", h.AddReview).Methods("POST")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")
}

type analyzeRequest struct {
	PlaceID                string `json:"place_id"`
	ForceRefresh           bool   `json:"force_refresh"`
	IncludeRecommendations bool   `json:"include_recommendations"`
}

type snapshotResponse struct {
	ID                     string    `json:"id"`
	PlaceID                string    `json:"place_id"`
	BusinessName           string    `json:"business_name"`
	TotalReviews           int       `json:"total_reviews"`
	AverageRating          float64   `json:"average_rating"`
	PositiveSentimentCount int       `json:"positive_sentiment_count"`
	NegativeSentimentCount int       `json:"negative_sentiment_count"`
	SentimentScore         float64   `json:"sentiment_score"`
	PredictedStatus        string    `json:"predicted_status"`
	ConfidenceScore        float64   `json:"confidence_score"`
	Trend                  string    `json:"trend"`
	LastAnalysis           time.Time `json:"last_analysis"`
}

type recommendationResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Priority            string    `json:"priority"`
	Category            string    `json:"category"`
	IsImplemented       bool      `json:"is_implemented"`
	ImplementationNotes string    `json:"implementation_notes,omitempty"`
	GeneratedAt         time.Time `json:"generated_at"`
}

type analyzeResponse struct {
	Analytics       snapshotResponse         `json:"analytics"`
	Recommendations []recommendationResponse `json:"recommendations,omitempty"`
	Cached          bool                     `json:"cached"`
}

// Analyze handles POST /analytics/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PlaceID == "" {
		respondError(w, http.StatusBadRequest, "place_id is required")
		return
	}

	result, err := h.service.Analyze(r.Context(), req.PlaceID, req.ForceRefresh, req.IncludeRecommendations)
	if errors.Is(err, app.ErrPlaceNotFound) {
		respondError(w, http.StatusNotFound, "place not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := analyzeResponse{
		Analytics: toSnapshotResponse(result.Snapshot),
		Cached:    result.Cached,
	}
	for _, rec := range result.Recommendations {
		resp.Recommendations = append(resp.Recommendations, toRecommendationResponse(rec))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetDashboard handles GET /analytics/dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recent := make([]snapshotResponse, 0, len(dash.Recent))
	for _, s := range dash.Recent {
		recent = append(recent, toSnapshotResponse(s))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_businesses":      dash.Summary.TotalBusinesses,
		"successful_businesses": dash.Summary.SuccessfulBusinesses,
		"at_risk_businesses":    dash.Summary.AtRiskBusinesses,
		"average_rating":        dash.Summary.AvgRating,
		"total_reviews":         dash.Summary.TotalReviews,
		"status_distribution":   dash.Summary.StatusDistribution,
		"recent_analyses":       recent,
	})
}

// GetInsights handles GET /analytics/{id}/insights.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	insights, err := h.service.Insights(r.Context(), id)
	if errors.Is(err, app.ErrAnalyticsNotFound) {
		respondError(w, http.StatusNotFound, "analytics not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"business_status":   insights.BusinessStatus,
		"confidence_score":  insights.ConfidenceScore,
		"key_insights":      insights.KeyInsights,
		"improvement_areas": insights.ImprovementAreas,
		"strengths":         insights.Strengths,
		"urgent_actions":    insights.UrgentActions,
	})
}

type updateRecommendationRequest struct {
	IsImplemented       *bool  `json:"is_implemented"`
	ImplementationNotes string `json:"implementation_notes"`
}

// UpdateRecommendation handles POST /analytics/{id}/recommendations/{recID}.
func (h *Handler) UpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req updateRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	implemented := true
	if req.IsImplemented != nil {
		implemented = *req.IsImplemented
	}

	err := h.service.UpdateRecommendation(r.Context(), vars["id"], vars["recID"], implemented, req.ImplementationNotes)
	if errors.Is(err, app.ErrAnalyticsNotFound) {
		respondError(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "recommendation updated"})
}

type addReviewRequest struct {
	PlaceID   string `json:"place_id"`
	PlaceName string `json:"place_name"`
	Content   string `json:"content"`
	Rating    int    `json:"rating"`
	Author    string `json:"author"`
	Source    string `json:"source"`
}

// AddReview handles POST /reviews.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PlaceID == "" {
		respondError(w, http.StatusBadRequest, "place_id is required")
		return
	}

	id, err := h.service.AddReview(r.Context(), req.PlaceID, req.PlaceName, req.Content, req.Rating, req.Author, req.Source)
	if errors.Is(err, app.ErrPlaceNotFound) {
		respondError(w, http.StatusNotFound, "place not found and no place_name given")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func toSnapshotResponse(s sqlite.AnalyticsSnapshot) snapshotResponse {
	return snapshotResponse{
		ID:                     s.ID,
		PlaceID:                s.PlaceID,
		BusinessName:           s.BusinessName,
		TotalReviews:           s.TotalReviews,
		AverageRating:          s.AverageRating,
		PositiveSentimentCount: s.PositiveSentimentCount,
		NegativeSentimentCount: s.NegativeSentimentCount,
		SentimentScore:         s.SentimentScore,
		PredictedStatus:        s.PredictedStatus,
		ConfidenceScore:        s.ConfidenceScore,
		Trend:                  s.Trend,
		LastAnalysis:           s.LastAnalysis,
	}
}

func toRecommendationResponse(r sqlite.StoredRecommendation) recommendationResponse {
	return recommendationResponse{
		ID:                  r.ID,
		Title:               r.Title,
		Description:         r.Description,
		Priority:            r.Priority,
		Category:            r.Category,
		IsImplemented:       r.IsImplemented,
		ImplementationNotes: r.ImplementationNotes,
		GeneratedAt:         r.GeneratedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
