// Package notify sends operator alerts when an analysis flags a business.
package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"spotlyvf/internal/domain"
)

// Notifier receives status-transition alerts. Implementations must be safe
// to call from the API handler and the refresh job.
type Notifier interface {
	BusinessAtRisk(businessName string, status domain.StatusResult, metrics domain.Metrics) error
}

// SlackNotifier posts at_risk alerts to a fixed channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(botToken),
		channel: channel,
	}
}

func (n *SlackNotifier) BusinessAtRisk(businessName string, status domain.StatusResult, metrics domain.Metrics) error {
	text := alertText(businessName, status, metrics)
	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post at_risk alert: %w", err)
	}
	log.Printf("alert sent channel=%s business=%q", n.channel, businessName)
	return nil
}

func alertText(businessName string, status domain.StatusResult, metrics domain.Metrics) string {
	return fmt.Sprintf(
		":rotating_light: *%s* is now *at risk* (confidence %.0f%%).\nAvg rating %.1f over %d reviews, positive sentiment %.0f%%, trend %s.\n> %s",
		businessName, status.Confidence*100,
		metrics.AverageRating, metrics.TotalReviews,
		metrics.PositiveSentimentRatio*100, metrics.Trend,
		status.Summary,
	)
}
