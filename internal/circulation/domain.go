// internal/circulation/domain.go
package circulation

import (
	"time"

	"assetnexus/internal/inventory"

	"github.com/google/uuid"
)

// CheckoutRequest assigns an item to a target.
type CheckoutRequest struct {
	Item    inventory.Ref `json:"item"`
	Target  inventory.Ref `json:"target"`
	ActorID uuid.UUID     `json:"actor_id"`
	Note    string        `json:"note,omitempty"`
}

// CheckinRequest returns an item from whatever it is checked out to.
type CheckinRequest struct {
	Item    inventory.Ref `json:"item"`
	ActorID uuid.UUID     `json:"actor_id"`
	Note    string        `json:"note,omitempty"`
}

// Receipt describes a committed checkout or checkin.
type Receipt struct {
	Action     string        `json:"action"`
	Item       inventory.Ref `json:"item"`
	Target     inventory.Ref `json:"target"`
	ActorID    uuid.UUID     `json:"actor_id"`
	Note       string        `json:"note,omitempty"`
	Version    int           `json:"version"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// movementRecord is the journal payload of a checkout or checkin.
type movementRecord struct {
	Item       inventory.Ref `json:"item"`
	Target     inventory.Ref `json:"target"`
	ActorID    uuid.UUID     `json:"actor_id"`
	Note       string        `json:"note,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
