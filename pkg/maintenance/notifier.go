package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	goslack "github.com/slack-go/slack"
)

// Notifier posts the daily stub/coverage summary to Slack (§4.6). A nil
// client makes every post a silent no-op so the job always runs, with or
// without Slack configured.
type Notifier struct {
	client  *goslack.Client
	channel string
	logger  *slog.Logger
}

// NewNotifier creates a Notifier. If botToken is empty, the notifier is
// disabled and IsEnabled reports false.
func NewNotifier(botToken, channel string, logger *slog.Logger) *Notifier {
	var client *goslack.Client
	if botToken != "" {
		client = goslack.New(botToken)
	}
	return &Notifier{client: client, channel: channel, logger: logger}
}

// IsEnabled reports whether the notifier has a usable client and channel.
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.client != nil && n.channel != ""
}

// PostStubReport sends the daily summary as a single message.
func (n *Notifier) PostStubReport(ctx context.Context, report StubReport) error {
	if !n.IsEnabled() {
		return nil
	}

	text := fmt.Sprintf(
		"Cruise catalog stub report: %d cruise lines, %d ships, %d ports, %d regions still need review.",
		report.CruiseLines, report.Ships, report.Ports, report.Regions,
	)

	_, _, err := n.client.PostMessageContext(ctx, n.channel, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting stub report to slack: %w", err)
	}
	return nil
}
