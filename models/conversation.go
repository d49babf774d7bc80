package models

import (
	"time"
)

// Conversation is a messaging channel bound to exactly one
// (lead, customer, painter) triple. The composite unique index backs the
// get-or-create guarantee: two racing creates for the same triple cannot
// both insert, the loser re-reads the winner's row.
type Conversation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LeadID     uint      `gorm:"not null;uniqueIndex:idx_conversation_triple" json:"lead_id"`
	Lead       Lead      `gorm:"foreignKey:LeadID" json:"-"`
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_conversation_triple" json:"customer_id"`
	Customer   User      `gorm:"foreignKey:CustomerID" json:"customer"`
	PainterID  uint      `gorm:"not null;uniqueIndex:idx_conversation_triple" json:"painter_id"`
	Painter    User      `gorm:"foreignKey:PainterID" json:"painter"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}
