// Package notify wraps the push-notification provider behind a small
// interface so reminder logic can be tested with fakes.
package notify

import "context"

// Message is a provider-independent push payload.
type Message struct {
	Title     string
	Body      string
	Data      map[string]string
	ChannelID string
}

// Notifier delivers push messages to a device token.
type Notifier interface {
	// Send delivers the message to the device identified by pushToken.
	Send(ctx context.Context, pushToken string, msg Message) error
	// ValidateToken checks that a push token is syntactically well formed.
	ValidateToken(pushToken string) error
}
