package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message in a lead conversation
type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"` // foreign key to conversations table
	Conversation   Conversation   `gorm:"foreignKey:ConversationID" json:"-"`    // don't include full conversation in JSON
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`       // foreign key to users table
	Sender         User           `gorm:"foreignKey:SenderID" json:"sender"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
