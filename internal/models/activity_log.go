package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is an immutable audit entry enriched with request metadata.
// UserID is deliberately not a foreign key: entries outlive the accounts
// they describe.
type ActivityLog struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action      string         `gorm:"not null;index" json:"action"`
	Description string         `json:"description"`
	IPAddress   string         `json:"ip_address"`
	Location    string         `json:"location"`
	Device      string         `json:"device"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
