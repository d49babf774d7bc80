package services

import (
	"errors"

	"github.com/paintlink/paintlink-api/models"
	"gorm.io/gorm"
)

// ConversationService links one messaging channel to each
// (lead, customer, painter) triple.
type ConversationService struct {
	db *gorm.DB
}

// NewConversationService creates a new conversation service instance
func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// GetOrCreate returns the conversation for the triple, creating it when
// absent. The call is idempotent: repeated calls return the same row.
// Under a concurrent race the unique index rejects the second insert and
// the loser re-reads the winner's row.
func (s *ConversationService) GetOrCreate(leadID, customerID, painterID uint) (*models.Conversation, *ServiceError) {
	var conversation models.Conversation

	err := s.db.
		Where("lead_id = ? AND customer_id = ? AND painter_id = ?", leadID, customerID, painterID).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, AsServiceError(err)
	}

	conversation = models.Conversation{
		LeadID:     leadID,
		CustomerID: customerID,
		PainterID:  painterID,
	}
	if err := s.db.Create(&conversation).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the winner's row is the result.
			var existing models.Conversation
			if err := s.db.
				Where("lead_id = ? AND customer_id = ? AND painter_id = ?", leadID, customerID, painterID).
				First(&existing).Error; err != nil {
				return nil, AsServiceError(err)
			}
			return &existing, nil
		}
		return nil, AsServiceError(err)
	}

	return &conversation, nil
}
