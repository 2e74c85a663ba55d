package models

import (
	"time"
)

// NotificationPreference represents user notification preferences
type NotificationPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PushEnabled  bool `gorm:"column:push_enabled;not null" json:"pushEnabled"`
	EmailEnabled bool `gorm:"column:email_enabled;not null" json:"emailEnabled"`
}

// TableName specifies the table name for NotificationPreference
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns default notification preferences for a new user
func DefaultPreferences(userID uint) *NotificationPreference {
	return &NotificationPreference{
		UserID:       userID,
		PushEnabled:  true,
		EmailEnabled: true,
	}
}
