// internal/notifications/channel.go
package notifications

import (
	"context"
	"fmt"
)

// Channel is a notification transport such as a Slack webhook or a NATS
// subject. Retry policy, if any, belongs to the implementation.
type Channel interface {
	// Name is the key looked up in the settings gate.
	Name() string

	Send(ctx context.Context, n Notification) error
}

// SendError reports a channel that failed to deliver a notification.
type SendError struct {
	Channel string
	Kind    Kind
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s via %s: %v", e.Kind, e.Channel, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
