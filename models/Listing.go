package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing type enum values
const (
	TypeApartment  = "Apartment"
	TypeVilla      = "Villa"
	TypePlot       = "Plot"
	TypeHouse      = "House"
	TypeCommercial = "Commercial"
	TypeOffice     = "Office"
)

// Moderation states. Owner-created listings start pending; only approved
// listings appear in public search.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Listing struct {
	gorm.Model
	OwnerID     uint    `json:"ownerID"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type" gorm:"type:varchar(20);default:'Apartment';index"`
	Price       float64 `json:"price"`
	PriceType   string  `json:"priceType" gorm:"type:varchar(10);default:'sale'"` // sale, rent

	Address string   `json:"address"`
	City    string   `json:"city" gorm:"index"`
	State   string   `json:"state"`
	Country string   `json:"country"`
	ZipCode string   `json:"zipCode"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`

	Bedrooms  *int     `json:"bedrooms"`
	Bathrooms *int     `json:"bathrooms"`
	AreaValue *float64 `json:"areaValue"`
	AreaUnit  string   `json:"areaUnit" gorm:"type:varchar(10);default:'sqft'"` // sqft, sqm

	Amenities  string         `json:"amenities"` // JSON array of strings
	Images     datatypes.JSON `json:"images"`    // JSON array of ListingImage
	Model3DURL string         `json:"model3DURL"`
	Tour360    datatypes.JSON `json:"tour360"` // JSON array of TourImage

	Featured bool   `json:"featured" gorm:"default:false"`
	Views    int64  `json:"views" gorm:"default:0"`
	Status   string `json:"status" gorm:"type:varchar(20);default:'available'"` // available, sold, rented, pending

	// Admin moderation fields
	Approval    string `json:"approval" gorm:"type:varchar(20);default:'pending';index"` // pending, approved, rejected
	ReviewNotes string `json:"reviewNotes" gorm:"type:text"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`
}

// ListingImage is one entry of the Images JSON column. Order in the array is
// the display order.
type ListingImage struct {
	URL       string `json:"url"`
	PublicID  string `json:"publicId,omitempty"`
	RoomType  string `json:"roomType,omitempty"` // bedroom, living-room, kitchen, ...
	ViewType  string `json:"viewType,omitempty"` // 2d, 3d, 360
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// TourImage is one room of a 360 tour.
type TourImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
	RoomName string `json:"roomName,omitempty"`
}

// Custom JSON marshaling to convert the JSON string columns to arrays
func (l *Listing) MarshalJSON() ([]byte, error) {
	type Alias Listing
	aux := &struct {
		Amenities []string       `json:"amenities"`
		Images    []ListingImage `json:"images"`
		Tour360   []TourImage    `json:"tour360"`
		Owner     *User          `json:"owner,omitempty"`
		*Alias
	}{
		Amenities: []string{},
		Images:    []ListingImage{},
		Tour360:   []TourImage{},
		Owner:     nil,
		Alias:     (*Alias)(l),
	}

	if l.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(l.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	if l.Images != nil {
		var images []ListingImage
		if err := json.Unmarshal(l.Images, &images); err == nil {
			aux.Images = images
		}
	}

	if l.Tour360 != nil {
		var tour []TourImage
		if err := json.Unmarshal(l.Tour360, &tour); err == nil {
			aux.Tour360 = tour
		}
	}

	// Only include owner if it was loaded, and strip its listings to avoid a
	// circular reference
	if l.Owner.ID > 0 {
		ownerCopy := l.Owner
		ownerCopy.Listings = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}

// ValidType reports whether t is one of the defined listing types.
func ValidType(t string) bool {
	switch t {
	case TypeApartment, TypeVilla, TypePlot, TypeHouse, TypeCommercial, TypeOffice:
		return true
	}
	return false
}
