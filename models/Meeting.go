package models

import (
	"time"

	"gorm.io/gorm"
)

// Meeting status values
const (
	MeetingScheduled   = "scheduled"
	MeetingCompleted   = "completed"
	MeetingCancelled   = "cancelled"
	MeetingRescheduled = "rescheduled"
)

type Meeting struct {
	gorm.Model
	UserID        uint      `json:"userID" gorm:"index"`
	OwnerID       uint      `json:"ownerID" gorm:"index"`
	ListingID     uint      `json:"listingID" gorm:"index"`
	ScheduledDate time.Time `json:"scheduledDate"`
	MeetLink      string    `json:"meetLink"`
	EventID       string    `json:"eventID"` // calendar event id, empty when link creation failed
	Status        string    `json:"status" gorm:"type:varchar(20);default:'scheduled'"`
	Notes         string    `json:"notes" gorm:"type:text"`
	Type          string    `json:"type" gorm:"type:varchar(20);default:'virtual'"` // virtual, in-person

	User    User    `json:"user" gorm:"foreignKey:UserID;references:ID"`
	Owner   User    `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`
	Listing Listing `json:"listing" gorm:"foreignKey:ListingID;references:ID"`
}
