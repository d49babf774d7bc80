package models

import (
	"time"
)

// LeadStatusHistory records every lead status change: acceptance through
// the assignment workflow as well as the audited admin override.
type LeadStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    uint      `gorm:"not null;index" json:"lead_id"`
	Lead      Lead      `gorm:"foreignKey:LeadID" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // the acting user
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	OldStatus string    `gorm:"not null" json:"old_status"`
	NewStatus string    `gorm:"not null" json:"new_status"`
	Reason    string    `json:"reason"` // optional, e.g. "bid 42 accepted"
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the LeadStatusHistory model
func (LeadStatusHistory) TableName() string {
	return "lead_status_histories"
}
