// internal/inventory/factory.go
package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func NewCategory(name string) *Category {
	return &Category{ID: uuid.New(), Name: name, CheckinEmail: true}
}

func NewAssetModel(name string, category *Category) *AssetModel {
	return &AssetModel{ID: uuid.New(), Name: name, Category: category}
}

func NewAccessory(name string) *Accessory {
	return &Accessory{ID: uuid.New(), Name: name}
}

// NewAsset creates an asset with a generated tag when tag is empty.
func NewAsset(tag, name string, model *AssetModel) *Asset {
	id := uuid.New()
	if tag == "" {
		tag = fmt.Sprintf("ASSET-%s", id.String()[:8])
	}
	return &Asset{ID: id, Tag: tag, Name: name, Model: model, CreatedAt: time.Now().UTC()}
}

func NewComponent(name string) *Component {
	return &Component{ID: uuid.New(), Name: name}
}

func NewLicense(name string, seats int) *License {
	return &License{ID: uuid.New(), Name: name, Seats: seats}
}

func NewLicenseSeat(license *License) *LicenseSeat {
	return &LicenseSeat{ID: uuid.New(), License: license}
}

// NewLicenseSeats creates one seat per license.Seats.
func NewLicenseSeats(license *License) []*LicenseSeat {
	seats := make([]*LicenseSeat, license.Seats)
	for i := range seats {
		seats[i] = NewLicenseSeat(license)
	}
	return seats
}

func NewUser(username, firstName, lastName string) *User {
	return &User{ID: uuid.New(), Username: username, FirstName: firstName, LastName: lastName}
}

func NewSuperuser(username string) *User {
	u := NewUser(username, "", "")
	u.Superuser = true
	return u
}

func NewLocation(name string) *Location {
	return &Location{ID: uuid.New(), Name: name}
}
