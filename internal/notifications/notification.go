// internal/notifications/notification.go
package notifications

import (
	"fmt"
	"strings"
	"time"

	"assetnexus/internal/events"
	"assetnexus/internal/inventory"

	"github.com/google/uuid"
)

// Entity describes an inventory entity inside a notification.
type Entity struct {
	Kind inventory.Kind `json:"kind"`
	ID   uuid.UUID      `json:"id"`
	Name string         `json:"name"`
}

type named interface {
	Ref() inventory.Ref
	DisplayName() string
}

func describe(e named) Entity {
	if e == nil {
		return Entity{}
	}
	ref := e.Ref()
	return Entity{Kind: ref.Kind, ID: ref.ID, Name: e.DisplayName()}
}

// Notification is the payload handed to a Channel. It is addressed to the
// channel as a whole, not to individual recipients.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Channel    string    `json:"channel"`
	Action     string    `json:"action"`
	Item       Entity    `json:"item"`
	Target     Entity    `json:"target"`
	Actor      Entity    `json:"actor"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newNotification(kind Kind, channel string, e events.Event) Notification {
	m := e.Details()
	n := Notification{
		ID:         uuid.New(),
		Kind:       kind,
		Channel:    channel,
		Action:     "checked in",
		Item:       describe(m.Checkoutable),
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	}
	if e.Kind() == events.KindCheckedOut {
		n.Action = "checked out"
	}
	if m.Target != nil {
		n.Target = describe(m.Target)
	}
	if m.Actor != nil {
		n.Actor = describe(m.Actor)
	}
	return n
}

// Text renders a one-line summary, e.g.
// "admin checked in accessory USB-C dock from user Jane Doe".
func (n Notification) Text() string {
	var b strings.Builder
	if n.Actor.Name != "" {
		b.WriteString(n.Actor.Name + " ")
	}
	b.WriteString(n.Action)
	fmt.Fprintf(&b, " %s %s", humanKind(n.Item.Kind), n.Item.Name)
	if n.Target.Kind != "" {
		prep := "from"
		if n.Action == "checked out" {
			prep = "to"
		}
		fmt.Fprintf(&b, " %s %s %s", prep, humanKind(n.Target.Kind), n.Target.Name)
	}
	if n.Note != "" {
		b.WriteString(": " + n.Note)
	}
	return b.String()
}

func humanKind(k inventory.Kind) string {
	return strings.ReplaceAll(string(k), "_", " ")
}
