package notifications

import (
	"testing"

	"assetnexus/internal/events"
	"assetnexus/internal/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForIsTotalOverCheckoutables(t *testing.T) {
	user := inventory.NewUser("jdoe", "", "")
	cases := []struct {
		item     inventory.Checkoutable
		checkin  Kind
		checkout Kind
	}{
		{inventory.NewAccessory("Dock"), CheckinAccessoryNotification, CheckoutAccessoryNotification},
		{inventory.NewAsset("", "Laptop", nil), CheckinAssetNotification, CheckoutAssetNotification},
		{inventory.NewComponent("RAM"), CheckinComponentNotification, CheckoutComponentNotification},
		{inventory.NewLicenseSeat(inventory.NewLicense("IDE", 1)), CheckinLicenseSeatNotification, CheckoutLicenseSeatNotification},
	}

	for _, tc := range cases {
		t.Run(string(tc.item.Ref().Kind), func(t *testing.T) {
			got, err := KindFor(events.NewCheckedIn(tc.item, user, nil, ""))
			require.NoError(t, err)
			assert.Equal(t, tc.checkin, got)

			got, err = KindFor(events.NewCheckedOut(tc.item, user, nil, ""))
			require.NoError(t, err)
			assert.Equal(t, tc.checkout, got)
		})
	}
}

func TestKindForIgnoresTarget(t *testing.T) {
	item := inventory.NewComponent("SSD")
	for _, target := range []inventory.Target{
		inventory.NewUser("jdoe", "", ""),
		inventory.NewAsset("", "Server", nil),
		inventory.NewLocation("DC-1"),
		nil,
	} {
		got, err := KindFor(events.NewCheckedIn(item, target, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, CheckinComponentNotification, got)
	}
}

// auditEvent reuses the checkin payload under another kind.
type auditEvent struct {
	events.CheckoutableCheckedIn
}

func (auditEvent) Kind() events.Kind { return "AuditPerformed" }

func TestKindForRejectsUnknownEvent(t *testing.T) {
	e := auditEvent{events.NewCheckedIn(inventory.NewAccessory("Dock"), nil, nil, "")}
	_, err := KindFor(e)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestTextWithoutActorOrTarget(t *testing.T) {
	n := newNotification(CheckinComponentNotification, "webhook",
		events.NewCheckedIn(inventory.NewComponent("SSD"), nil, nil, ""))
	assert.Equal(t, "checked in component SSD", n.Text())
	assert.Equal(t, Entity{}, n.Target)
	assert.Equal(t, Entity{}, n.Actor)
}
