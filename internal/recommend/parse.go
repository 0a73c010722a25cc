package recommend

import (
	"encoding/json"
	"strings"

	"spotlyvf/internal/domain"
)

type parsedRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

type wrappedRecommendations struct {
	Recommendations []parsedRecommendation `json:"recommendations"`
}

// ParseRecommendations turns backend output into recommendations, tolerating
// non-compliant responses. Structured JSON is attempted first (a top-level
// array, or an object with a "recommendations" array); anything else goes
// through the line-oriented extractor. The result is capped at 5 either way.
func ParseRecommendations(text string) []domain.Recommendation {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		if recs, ok := parseStructured(text); ok {
			return cap5(recs)
		}
	}
	return cap5(extractFromLines(text))
}

func parseStructured(text string) ([]domain.Recommendation, bool) {
	var list []parsedRecommendation
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return normalize(list), true
	}

	var wrapped wrappedRecommendations
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Recommendations != nil {
		return normalize(wrapped.Recommendations), true
	}
	return nil, false
}

func normalize(list []parsedRecommendation) []domain.Recommendation {
	var out []domain.Recommendation
	for _, p := range list {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}
		priority := strings.ToLower(strings.TrimSpace(p.Priority))
		if !domain.ValidPriority(priority) {
			priority = domain.PriorityMedium
		}
		category := strings.ToLower(strings.TrimSpace(p.Category))
		if !domain.ValidCategory(category) {
			category = domain.CategoryOperations
		}
		out = append(out, domain.Recommendation{
			Title:       title,
			Description: strings.TrimSpace(p.Description),
			Priority:    priority,
			Category:    category,
		})
	}
	return out
}

var lineMarkers = []string{"1.", "2.", "3.", "4.", "5.", "-", "•"}

// extractFromLines scans free text for numbered or bulleted items. A marker
// line starts a new recommendation titled with its first 50 characters;
// following non-marker lines accumulate into the description.
func extractFromLines(text string) []domain.Recommendation {
	var recs []domain.Recommendation
	var current *domain.Recommendation

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if startsWithMarker(line) {
			if current != nil {
				recs = append(recs, *current)
			}
			title := line
			if len(title) > 50 {
				title = title[:50]
			}
			current = &domain.Recommendation{
				Title:       title,
				Description: line,
				Priority:    domain.PriorityMedium,
				Category:    domain.CategoryOperations,
			}
		} else if current != nil && line != "" {
			current.Description += " " + line
		}
	}
	if current != nil {
		recs = append(recs, *current)
	}
	return recs
}

func startsWithMarker(line string) bool {
	for _, m := range lineMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

func cap5(recs []domain.Recommendation) []domain.Recommendation {
	if len(recs) > maxRecommendations {
		return recs[:maxRecommendations]
	}
	return recs
}
