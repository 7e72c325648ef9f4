// internal/circulation/service.go
package circulation

import (
	"context"

	"assetnexus/internal/events"
	"assetnexus/pkg/eventstore"

	"github.com/google/uuid"
)

// Service defines the checkout and checkin workflow.
type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error)
	Checkin(ctx context.Context, req CheckinRequest) (*Receipt, error)
}

// Journal records movements per checkoutable stream. *eventstore.Store
// satisfies it.
type Journal interface {
	Version(ctx context.Context, streamID uuid.UUID) (int, error)
	Append(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int, records []eventstore.Record) error
}

// Publisher delivers committed movements to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}
