package recommend

import "spotlyvf/internal/domain"

// FallbackRecommendations is the static, status-keyed table served when no
// generative backend is reachable. Deterministic: no network, no state.
func FallbackRecommendations(status string) []domain.Recommendation {
	switch status {
	case domain.StatusAtRisk:
		return []domain.Recommendation{
			{
				Title:       "Immediate service improvement",
				Description: "Train staff in customer service and reduce waiting times",
				Priority:    domain.PriorityHigh,
				Category:    domain.CategoryService,
			},
			{
				Title:       "Product quality review",
				Description: "Evaluate food quality and make improvements in the kitchen",
				Priority:    domain.PriorityHigh,
				Category:    domain.CategoryFoodQuality,
			},
		}
	case domain.StatusRecovering:
		return []domain.Recommendation{
			{
				Title:       "Maintain current quality",
				Description: "Keep up the practices that are working well",
				Priority:    domain.PriorityMedium,
				Category:    domain.CategoryOperations,
			},
			{
				Title:       "Increase promotion",
				Description: "Raise the business's visibility on social media",
				Priority:    domain.PriorityMedium,
				Category:    domain.CategoryMarketing,
			},
		}
	case domain.StatusSuccessful:
		return []domain.Recommendation{
			{
				Title:       "Expand your offering",
				Description: "Consider adding new products or services",
				Priority:    domain.PriorityLow,
				Category:    domain.CategoryOperations,
			},
		}
	default:
		return nil
	}
}
