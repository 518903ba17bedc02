package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name      string `json:"name"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Password  string `json:"-"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarURL"`
	Role      string `json:"role" gorm:"type:varchar(20);default:'user';index"` // user, owner, admin
	IsBlocked bool   `json:"isBlocked" gorm:"default:false"`

	Listings        []Listing      `json:"listings,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	SavedListings   datatypes.JSON `json:"savedListings"`
	CompareListings datatypes.JSON `json:"compareListings"`
}

// Custom JSON marshaling to expose the JSON list columns as arrays
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		SavedListings   []uint    `json:"savedListings"`
		CompareListings []uint    `json:"compareListings"`
		Listings        []Listing `json:"listings,omitempty"`
		*Alias
	}{
		SavedListings:   []uint{},
		CompareListings: []uint{},
		Alias:           (*Alias)(u),
	}

	if u.SavedListings != nil {
		var saved []uint
		if err := json.Unmarshal(u.SavedListings, &saved); err == nil {
			aux.SavedListings = saved
		}
	}

	if u.CompareListings != nil {
		var compare []uint
		if err := json.Unmarshal(u.CompareListings, &compare); err == nil {
			aux.CompareListings = compare
		}
	}

	// Listings excluded unless explicitly preloaded
	if len(u.Listings) > 0 {
		aux.Listings = u.Listings
	}

	return json.Marshal(aux)
}
