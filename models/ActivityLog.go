package models

import (
	"time"
)

// Activity actions recorded by the log
const (
	ActionLogin          = "LOGIN"
	ActionRegister       = "REGISTER"
	ActionUploadListing  = "UPLOAD_LISTING"
	ActionUpdateListing  = "UPDATE_LISTING"
	ActionDeleteListing  = "DELETE_LISTING"
	ActionApproveListing = "APPROVE_LISTING"
	ActionScheduleVisit  = "SCHEDULE_MEETING"
	ActionBlockUser      = "BLOCK_USER"
	ActionUnblockUser    = "UNBLOCK_USER"
)

type ActivityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userID" gorm:"index;not null"`
	Action    string    `json:"action" gorm:"size:64;index"`
	Details   string    `json:"details" gorm:"type:text"`
	Metadata  string    `json:"metadata" gorm:"type:text"` // JSON map of extra ids (listingID, meetingID, ...)
	CreatedAt time.Time `json:"createdAt"`

	User User `json:"user" gorm:"foreignKey:UserID;references:ID"`
}
