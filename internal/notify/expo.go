package notify

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// ExpoNotifier sends push messages through the Expo push service.
type ExpoNotifier struct {
	client *expo.PushClient
}

var _ Notifier = (*ExpoNotifier)(nil)

// NewExpoNotifier creates a notifier backed by the Expo push API.
func NewExpoNotifier() *ExpoNotifier {
	return &ExpoNotifier{
		client: expo.NewPushClient(nil),
	}
}

// Send publishes a single push message to the given Expo token.
func (n *ExpoNotifier) Send(ctx context.Context, pushToken string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token, err := expo.NewExponentPushToken(pushToken)
	if err != nil {
		return fmt.Errorf("invalid push token: %w", err)
	}

	response, err := n.client.Publish(&expo.PushMessage{
		To:        []expo.ExponentPushToken{token},
		Title:     msg.Title,
		Body:      msg.Body,
		Data:      msg.Data,
		Sound:     "default",
		Priority:  expo.DefaultPriority,
		ChannelID: msg.ChannelID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish push message: %w", err)
	}

	if err := response.ValidateResponse(); err != nil {
		return fmt.Errorf("push message rejected: %w", err)
	}

	return nil
}

// ValidateToken checks the token against the provider's expected format.
func (n *ExpoNotifier) ValidateToken(pushToken string) error {
	if _, err := expo.NewExponentPushToken(pushToken); err != nil {
		return fmt.Errorf("invalid push token: %w", err)
	}
	return nil
}
