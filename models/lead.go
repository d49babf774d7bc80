package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead statuses
const (
	LeadStatusOpen     = "open"
	LeadStatusAssigned = "assigned"
	LeadStatusClosed   = "closed"
)

// Lead represents a customer's job posting awaiting painter offers
type Lead struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	CustomerID     uint   `gorm:"not null;index" json:"customer_id"` // foreign key to users table
	Customer       User   `gorm:"foreignKey:CustomerID" json:"customer"`
	CustomerName   string `gorm:"not null" json:"customer_name"` // contact details denormalized from the posting user
	CustomerEmail  string `gorm:"not null;index" json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	JobTitle       string `gorm:"not null" json:"job_title"`
	JobDescription string `gorm:"type:text" json:"job_description"`
	Location       string `json:"location"`
	Postcode       string `gorm:"index" json:"postcode"`
	Status         string `gorm:"not null;default:'open';index" json:"status"` // open, assigned, closed
	// nullable, set when a bid is accepted
	AssignedPainterID *uint          `gorm:"index" json:"assigned_painter_id"`
	AssignedPainter   *User          `gorm:"foreignKey:AssignedPainterID" json:"assigned_painter,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}

// IsValidLeadStatus reports whether s is one of the lead status values
func IsValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusOpen, LeadStatusAssigned, LeadStatusClosed:
		return true
	}
	return false
}
