package models

import (
	"time"

	"gorm.io/gorm"
)

// Bid statuses. Accepted, rejected and withdrawn are terminal: once a bid
// leaves pending it never returns, and it cannot move between terminal
// states except via explicit admin correction.
const (
	BidStatusPending   = "pending"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
)

// Bid represents a painter's price offer against a lead
type Bid struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	LeadID    uint           `gorm:"not null;index" json:"lead_id"` // foreign key to leads table
	Lead      Lead           `gorm:"foreignKey:LeadID" json:"-"`    // don't include full lead in JSON
	PainterID uint           `gorm:"not null;index" json:"painter_id"`
	Painter   User           `gorm:"foreignKey:PainterID" json:"painter"`
	BidAmount float64        `gorm:"not null;check:bid_amount >= 0" json:"bid_amount"`
	Message   string         `gorm:"type:text" json:"message"` // free-text proposal, optional
	Status    string         `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Bid model
func (Bid) TableName() string {
	return "bids"
}

// IsTerminal reports whether the bid has reached a terminal status
func (b *Bid) IsTerminal() bool {
	switch b.Status {
	case BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return true
	}
	return false
}

// IsValidBidStatus reports whether s is one of the bid status values
func IsValidBidStatus(s string) bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return true
	}
	return false
}
