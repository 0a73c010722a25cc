package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spotlyvf/internal/domain"
)

func TestHTTPClassifierParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Text != "great food" {
			t.Fatalf("unexpected text: %q", req.Text)
		}
		json.NewEncoder(w).Encode(classifyResponse{Label: "Positive", Score: 0.93, Confidence: 0.88})
	}))
	defer srv.Close()

	got, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "great food")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != domain.SentimentPositive {
		t.Fatalf("label = %q, want positive", got.Label)
	}
	if got.Score != 0.93 || got.Confidence != 0.88 {
		t.Fatalf("unexpected scores: %+v", got)
	}
}

func TestHTTPClassifierRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `boom`},
		{"unknown label", http.StatusOK, `{"label":"mixed","score":0.5,"confidence":0.5}`},
		{"score out of range", http.StatusOK, `{"label":"positive","score":1.7,"confidence":0.5}`},
		{"endpoint error field", http.StatusOK, `{"error":"model not loaded"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			if _, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "text"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
