// internal/inventory/domain.go
package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names an entity type on the wire and in event streams.
type Kind string

const (
	KindAccessory   Kind = "accessory"
	KindAsset       Kind = "asset"
	KindComponent   Kind = "component"
	KindLicenseSeat Kind = "license_seat"
	KindUser        Kind = "user"
	KindLocation    Kind = "location"
)

// ParseKind validates a kind received from a client.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAccessory, KindAsset, KindComponent, KindLicenseSeat, KindUser, KindLocation:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Ref identifies any inventory entity.
type Ref struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// Checkoutable is an entity that can be checked out to a Target and checked
// back in. The set of implementations is closed: Accessory, Asset, Component
// and LicenseSeat.
type Checkoutable interface {
	Ref() Ref
	DisplayName() string
	checkoutable()
}

// Target is an entity a Checkoutable can be assigned to: User, Asset or Location.
type Target interface {
	Ref() Ref
	DisplayName() string
	assignable()
}

// Category groups asset models, accessories and components and carries
// per-category notification preferences.
type Category struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	CheckinEmail      bool      `json:"checkin_email"`
	RequireAcceptance bool      `json:"require_acceptance"`
	UseDefaultEULA    bool      `json:"use_default_eula"`
	EULAText          string    `json:"eula_text,omitempty"`
}

// AssetModel is the make/model of an Asset.
type AssetModel struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category *Category `json:"category,omitempty"`
}

type Accessory struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category *Category `json:"category,omitempty"`
}

func (a *Accessory) Ref() Ref            { return Ref{Kind: KindAccessory, ID: a.ID} }
func (a *Accessory) DisplayName() string { return a.Name }
func (*Accessory) checkoutable()         {}

// Asset is a tracked, individually tagged piece of hardware. Assets can be
// checked out themselves and can also receive other checkoutables.
type Asset struct {
	ID        uuid.UUID   `json:"id"`
	Tag       string      `json:"asset_tag"`
	Name      string      `json:"name"`
	Serial    string      `json:"serial,omitempty"`
	Model     *AssetModel `json:"model,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (a *Asset) Ref() Ref { return Ref{Kind: KindAsset, ID: a.ID} }

func (a *Asset) DisplayName() string {
	if a.Name == "" {
		return a.Tag
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Tag)
}

func (*Asset) checkoutable() {}
func (*Asset) assignable()   {}

// Category returns the category of the asset's model, if any.
func (a *Asset) Category() *Category {
	if a.Model == nil {
		return nil
	}
	return a.Model.Category
}

type Component struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Serial   string    `json:"serial,omitempty"`
	Category *Category `json:"category,omitempty"`
}

func (c *Component) Ref() Ref            { return Ref{Kind: KindComponent, ID: c.ID} }
func (c *Component) DisplayName() string { return c.Name }
func (*Component) checkoutable()         {}

type License struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Seats int       `json:"seats"`
}

// LicenseSeat is a single assignable seat of a License.
type LicenseSeat struct {
	ID      uuid.UUID `json:"id"`
	License *License  `json:"license"`
}

func (s *LicenseSeat) Ref() Ref { return Ref{Kind: KindLicenseSeat, ID: s.ID} }

func (s *LicenseSeat) DisplayName() string {
	if s.License == nil {
		return "license seat " + s.ID.String()
	}
	return s.License.Name
}

func (*LicenseSeat) checkoutable() {}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Superuser bool      `json:"superuser"`
}

func (u *User) Ref() Ref { return Ref{Kind: KindUser, ID: u.ID} }

func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

func (*User) assignable() {}

type Location struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city,omitempty"`
}

func (l *Location) Ref() Ref            { return Ref{Kind: KindLocation, ID: l.ID} }
func (l *Location) DisplayName() string { return l.Name }
func (*Location) assignable()           {}
