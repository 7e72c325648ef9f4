// internal/notifications/kind.go
package notifications

import (
	"errors"
	"fmt"

	"assetnexus/internal/events"
	"assetnexus/internal/inventory"
)

// Kind is the notification template chosen for an event.
type Kind string

const (
	CheckinAccessoryNotification   Kind = "CheckinAccessoryNotification"
	CheckinAssetNotification       Kind = "CheckinAssetNotification"
	CheckinComponentNotification   Kind = "CheckinComponentNotification"
	CheckinLicenseSeatNotification Kind = "CheckinLicenseSeatNotification"

	CheckoutAccessoryNotification   Kind = "CheckoutAccessoryNotification"
	CheckoutAssetNotification       Kind = "CheckoutAssetNotification"
	CheckoutComponentNotification   Kind = "CheckoutComponentNotification"
	CheckoutLicenseSeatNotification Kind = "CheckoutLicenseSeatNotification"
)

var (
	ErrUnknownCheckoutable = errors.New("notifications: unrecognized checkoutable")
	ErrUnknownEvent        = errors.New("notifications: unrecognized event")
)

// KindFor maps an event to its notification kind. Only the checkoutable's
// type matters; the target is payload data.
func KindFor(e events.Event) (Kind, error) {
	item := e.Details().Checkoutable
	if isNilCheckoutable(item) {
		return "", fmt.Errorf("%w: nil %T", ErrUnknownCheckoutable, item)
	}

	switch e.(type) {
	case events.CheckoutableCheckedIn:
		switch item.(type) {
		case *inventory.Accessory:
			return CheckinAccessoryNotification, nil
		case *inventory.Asset:
			return CheckinAssetNotification, nil
		case *inventory.Component:
			return CheckinComponentNotification, nil
		case *inventory.LicenseSeat:
			return CheckinLicenseSeatNotification, nil
		}
	case events.CheckoutableCheckedOut:
		switch item.(type) {
		case *inventory.Accessory:
			return CheckoutAccessoryNotification, nil
		case *inventory.Asset:
			return CheckoutAssetNotification, nil
		case *inventory.Component:
			return CheckoutComponentNotification, nil
		case *inventory.LicenseSeat:
			return CheckoutLicenseSeatNotification, nil
		}
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}

	return "", fmt.Errorf("%w: %T", ErrUnknownCheckoutable, item)
}

// isNilCheckoutable reports a nil interface or a typed nil pointer, which
// would otherwise match its type's case.
func isNilCheckoutable(item inventory.Checkoutable) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *inventory.Accessory:
		return v == nil
	case *inventory.Asset:
		return v == nil
	case *inventory.Component:
		return v == nil
	case *inventory.LicenseSeat:
		return v == nil
	}
	return false
}
