package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/models"
	"github.com/paintlink/paintlink-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetOrCreateConversation handles POST /api/v1/leads/:id/conversation -
// returns the messaging channel for the lead's assignment triple, creating
// it on first call. Repeated calls return the same conversation.
func GetOrCreateConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var lead models.Lead
	if err := db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_FOUND",
				"message": "Lead not found",
			},
		})
		return
	}

	if lead.AssignedPainterID == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_ASSIGNED",
				"message": "A conversation requires an assigned painter",
			},
		})
		return
	}

	// Participants only: the lead's customer, the assigned painter, admins
	isParticipant := user.IsAdmin() ||
		(user.Role == models.RoleCustomer && lead.CustomerID == user.ID) ||
		(user.Role == models.RolePainter && *lead.AssignedPainterID == user.ID)
	if !isParticipant {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_FOUND",
				"message": "Lead not found",
			},
		})
		return
	}

	conversation, svcErr := services.NewConversationService(db).
		GetOrCreate(lead.ID, lead.CustomerID, *lead.AssignedPainterID)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversation,
	})
}

// GetConversation handles GET /api/v1/conversations/:id
func GetConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversation, ok := loadConversationForUser(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversation,
	})
}

// SendMessage handles POST /api/v1/conversations/:id/messages - sends a
// message in a conversation (participants only)
func SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversation, ok := loadConversationForUser(c, user)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.PureJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       user.ID,
		Text:           req.Text,
	}

	if err := db.Create(&message).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create message",
			},
		})
		return
	}

	if err := db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load message details",
			},
		})
		return
	}

	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/conversations/:id/messages - lists
// messages in a conversation (participants only)
func ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conversation, ok := loadConversationForUser(c, user)
	if !ok {
		return
	}

	db := config.GetDB()
	var messages []models.Message
	if err := db.Where("conversation_id = ?", conversation.ID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.PureJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}

// loadConversationForUser fetches the conversation from the :id parameter
// and checks the caller participates in it. Non-participants get the same
// not-found response as a missing conversation.
func loadConversationForUser(c *gin.Context, user *models.User) (*models.Conversation, bool) {
	db := config.GetDB()
	var conversation models.Conversation
	if err := db.Preload("Customer").Preload("Painter").First(&conversation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSATION_NOT_FOUND",
				"message": "Conversation not found",
			},
		})
		return nil, false
	}

	isParticipant := user.IsAdmin() ||
		conversation.CustomerID == user.ID ||
		conversation.PainterID == user.ID
	if !isParticipant {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONVERSATION_NOT_FOUND",
				"message": "Conversation not found",
			},
		})
		return nil, false
	}

	return &conversation, true
}
