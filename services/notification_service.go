package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paintlink/paintlink-api/config"
)

// BidAcceptedEvent is the domain event emitted after a bid acceptance
// commits. The notification collaborator consumes it to email both
// parties; delivery retries are its concern, not ours.
type BidAcceptedEvent struct {
	LeadID    uint `json:"lead_id"`
	BidID     uint `json:"bid_id"`
	PainterID uint `json:"painter_id"`
}

// NotificationService defines the interface for the notification collaborator
type NotificationService interface {
	NotifyBidAccepted(event BidAcceptedEvent) error
}

// notificationServiceInstance is the singleton notification service instance
var notificationServiceInstance NotificationService

// GetNotificationService returns the notification service instance,
// defaulting to a webhook service built from the loaded configuration
func GetNotificationService() NotificationService {
	if notificationServiceInstance == nil {
		notificationServiceInstance = NewWebhookNotificationService(config.GetConfig())
	}
	return notificationServiceInstance
}

// SetNotificationService sets the notification service instance (used for testing)
func SetNotificationService(service NotificationService) {
	notificationServiceInstance = service
}

// WebhookNotificationService delivers domain events by POSTing them to the
// configured webhook URL. With no URL configured it is a no-op.
type WebhookNotificationService struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookNotificationService creates a new webhook notification service instance
func NewWebhookNotificationService(cfg *config.Config) *WebhookNotificationService {
	url := ""
	if cfg != nil {
		url = cfg.NotifyWebhookURL
	}
	return &WebhookNotificationService{
		webhookURL: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyBidAccepted delivers a BidAccepted event to the webhook
func (s *WebhookNotificationService) NotifyBidAccepted(event BidAcceptedEvent) error {
	if s.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":  "bid_accepted",
		"event": event,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to call notification webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	return nil
}
