// internal/events/domain.go
package events

import (
	"time"

	"assetnexus/internal/inventory"
)

// Kind identifies an event variant for subscription.
type Kind string

const (
	KindCheckedIn  Kind = "CheckoutableCheckedIn"
	KindCheckedOut Kind = "CheckoutableCheckedOut"
)

// Event is a domain event. The set is closed: CheckoutableCheckedIn and
// CheckoutableCheckedOut, or types embedding one of them.
type Event interface {
	Kind() Kind
	Details() Movement
	domainEvent()
}

// Movement is the data shared by checkin and checkout events.
type Movement struct {
	Checkoutable inventory.Checkoutable
	Target       inventory.Target
	Actor        *inventory.User
	Note         string
	OccurredAt   time.Time
}

func (m Movement) Details() Movement { return m }

// CheckoutableCheckedIn is raised once a checkin has been committed.
type CheckoutableCheckedIn struct {
	Movement
}

func (CheckoutableCheckedIn) Kind() Kind { return KindCheckedIn }
func (CheckoutableCheckedIn) domainEvent() {}

// CheckoutableCheckedOut is raised once a checkout has been committed.
type CheckoutableCheckedOut struct {
	Movement
}

func (CheckoutableCheckedOut) Kind() Kind { return KindCheckedOut }
func (CheckoutableCheckedOut) domainEvent() {}

func NewCheckedIn(item inventory.Checkoutable, from inventory.Target, actor *inventory.User, note string) CheckoutableCheckedIn {
	return CheckoutableCheckedIn{Movement{
		Checkoutable: item,
		Target:       from,
		Actor:        actor,
		Note:         note,
		OccurredAt:   time.Now().UTC(),
	}}
}

func NewCheckedOut(item inventory.Checkoutable, to inventory.Target, actor *inventory.User, note string) CheckoutableCheckedOut {
	return CheckoutableCheckedOut{Movement{
		Checkoutable: item,
		Target:       to,
		Actor:        actor,
		Note:         note,
		OccurredAt:   time.Now().UTC(),
	}}
}
