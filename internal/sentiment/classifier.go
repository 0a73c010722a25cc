package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"spotlyvf/internal/domain"
	"spotlyvf/internal/httpx"
)

// Classifier scores a single piece of review text. Implementations may run
// in-process or call a remote inference endpoint; callers must treat every
// call as fallible.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.SentimentResult, error)
}

// --- Remote inference endpoint ---

// HTTPClassifier calls a sentiment inference service over HTTP.
// Request: {"text": "..."}; response: {"label": "...", "score": x, "confidence": y}.
type HTTPClassifier struct {
	Endpoint string
}

func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{Endpoint: endpoint}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (domain.SentimentResult, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpx.External().Do(req)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("sentiment endpoint error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SentimentResult{}, fmt.Errorf("sentiment endpoint status %d: %s", resp.StatusCode, respBody)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("parsing sentiment response: %w", err)
	}
	if parsed.Error != "" {
		return domain.SentimentResult{}, fmt.Errorf("sentiment endpoint error: %s", parsed.Error)
	}

	label := strings.ToLower(strings.TrimSpace(parsed.Label))
	switch label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
	default:
		return domain.SentimentResult{}, fmt.Errorf("unknown sentiment label %q", parsed.Label)
	}
	if parsed.Score < 0 || parsed.Score > 1 || parsed.Confidence < 0 || parsed.Confidence > 1 {
		return domain.SentimentResult{}, fmt.Errorf("sentiment scores out of range: score=%f confidence=%f", parsed.Score, parsed.Confidence)
	}

	return domain.SentimentResult{
		Label:      label,
		Score:      parsed.Score,
		Confidence: parsed.Confidence,
	}, nil
}

// --- Keyword fallback ---

// Word lists mirror the lightweight predictor the remote model replaced.
var positiveWords = []string{"bueno", "excelente", "genial", "perfecto", "increíble", "good", "excellent", "great", "perfect", "amazing", "delicious"}
var negativeWords = []string{"malo", "terrible", "horrible", "pésimo", "awful", "bad", "worst", "disgusting", "rude", "slow"}

// KeywordClassifier is the in-process fallback used when no inference
// endpoint is configured. It counts keyword hits and reports neutral on a tie.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text string) (domain.SentimentResult, error) {
	lower := strings.ToLower(text)

	var positives, negatives int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positives++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negatives++
		}
	}

	switch {
	case positives > negatives:
		return domain.SentimentResult{Label: domain.SentimentPositive, Score: 0.8, Confidence: 0.8}, nil
	case negatives > positives:
		return domain.SentimentResult{Label: domain.SentimentNegative, Score: 0.1, Confidence: 0.8}, nil
	default:
		return domain.SentimentResult{Label: domain.SentimentNeutral, Score: 0.5, Confidence: 0.4}, nil
	}
}
