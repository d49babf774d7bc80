package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentService owns the lead/bid state machine. Lead statuses move
// open -> assigned -> closed (closed may also be reached directly by the
// admin override, which models cancellation). Bid statuses move from
// pending to exactly one terminal status.
type AssignmentService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAssignmentService creates a new assignment service instance
func NewAssignmentService(db *gorm.DB, cfg *config.Config) *AssignmentService {
	return &AssignmentService{db: db, cfg: cfg}
}

// lockForUpdate adds a row lock on databases that support it. SQLite
// (used in tests) has no SELECT ... FOR UPDATE; its write transactions
// are serialized already.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// AcceptBid accepts a pending bid on an open lead. The lead transition
// (status, assigned painter), the bid transition and the audit row commit
// as one transaction: two concurrent accepts on the same lead cannot both
// succeed, the loser observes a non-open lead and gets LEAD_NOT_OPEN.
//
// Sibling pending bids stay pending unless AutoRejectSiblingBids is set;
// the customer may still want to negotiate with a second painter before
// finalizing.
func (s *AssignmentService) AcceptBid(bidID uint, actor *models.User) (*models.Bid, *ServiceError) {
	var accepted models.Bid

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := lockForUpdate(tx).First(&bid, bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("BID_NOT_FOUND", "Bid not found")
			}
			return err
		}

		if bid.Status != models.BidStatusPending {
			return NewConflictError("BID_NOT_PENDING",
				fmt.Sprintf("Cannot accept a bid with status %q", bid.Status))
		}

		var lead models.Lead
		if err := lockForUpdate(tx).First(&lead, bid.LeadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("LEAD_NOT_FOUND", "Lead not found")
			}
			return err
		}

		if lead.Status != models.LeadStatusOpen {
			return NewConflictError("LEAD_NOT_OPEN",
				fmt.Sprintf("Cannot accept a bid on a lead with status %q", lead.Status))
		}

		if err := tx.Model(&lead).Updates(map[string]interface{}{
			"status":              models.LeadStatusAssigned,
			"assigned_painter_id": bid.PainterID,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&bid).Update("status", models.BidStatusAccepted).Error; err != nil {
			return err
		}

		if s.cfg != nil && s.cfg.AutoRejectSiblingBids {
			if err := tx.Model(&models.Bid{}).
				Where("lead_id = ? AND id != ? AND status = ?", lead.ID, bid.ID, models.BidStatusPending).
				Update("status", models.BidStatusRejected).Error; err != nil {
				return err
			}
		}

		history := models.LeadStatusHistory{
			LeadID:    lead.ID,
			UserID:    actor.ID,
			OldStatus: models.LeadStatusOpen,
			NewStatus: models.LeadStatusAssigned,
			Reason:    fmt.Sprintf("bid %d accepted", bid.ID),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		accepted = bid
		accepted.Status = models.BidStatusAccepted
		return nil
	})
	if err != nil {
		return nil, AsServiceError(err)
	}

	// The state transition is committed; a failing notification collaborator
	// must not roll it back. Delivery retries belong to that collaborator.
	event := BidAcceptedEvent{
		LeadID:    accepted.LeadID,
		BidID:     accepted.ID,
		PainterID: accepted.PainterID,
	}
	if err := GetNotificationService().NotifyBidAccepted(event); err != nil {
		log.Printf("Failed to notify bid accepted event (lead %d, bid %d): %v",
			event.LeadID, event.BidID, err)
	}

	return &accepted, nil
}

// RejectBid moves a pending bid to rejected. The lead is not touched.
func (s *AssignmentService) RejectBid(bidID uint, actor *models.User) (*models.Bid, *ServiceError) {
	return s.resolveBid(bidID, models.BidStatusRejected)
}

// WithdrawBid moves a pending bid to withdrawn. The lead is not touched.
func (s *AssignmentService) WithdrawBid(bidID uint, actor *models.User) (*models.Bid, *ServiceError) {
	return s.resolveBid(bidID, models.BidStatusWithdrawn)
}

func (s *AssignmentService) resolveBid(bidID uint, newStatus string) (*models.Bid, *ServiceError) {
	var resolved models.Bid

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := lockForUpdate(tx).First(&bid, bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("BID_NOT_FOUND", "Bid not found")
			}
			return err
		}

		if bid.IsTerminal() {
			return NewConflictError("BID_NOT_PENDING",
				fmt.Sprintf("Bid already resolved with status %q", bid.Status))
		}

		if err := tx.Model(&bid).Update("status", newStatus).Error; err != nil {
			return err
		}

		resolved = bid
		resolved.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, AsServiceError(err)
	}

	return &resolved, nil
}

// SetLeadStatus is the audited admin escape hatch: it overrides a lead's
// status directly, without requiring an accepted bid. Only enum membership
// is enforced. Forcing a lead back to open clears its painter assignment.
func (s *AssignmentService) SetLeadStatus(leadID uint, newStatus, reason string, actor *models.User) (*models.Lead, *ServiceError) {
	if !models.IsValidLeadStatus(newStatus) {
		return nil, NewValidationError("INVALID_LEAD_STATUS",
			fmt.Sprintf("Status must be one of open, assigned, closed; got %q", newStatus))
	}

	var updated models.Lead

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := lockForUpdate(tx).First(&lead, leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("LEAD_NOT_FOUND", "Lead not found")
			}
			return err
		}

		oldStatus := lead.Status

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.LeadStatusOpen {
			updates["assigned_painter_id"] = nil
		}
		if err := tx.Model(&lead).Updates(updates).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:    lead.ID,
			UserID:    actor.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Reason:    reason,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		updated = lead
		updated.Status = newStatus
		if newStatus == models.LeadStatusOpen {
			updated.AssignedPainterID = nil
		}
		return nil
	})
	if err != nil {
		return nil, AsServiceError(err)
	}

	return &updated, nil
}

// DeleteBid deletes a bid. Deleting an accepted bid would silently orphan
// an assignment, so it is refused.
func (s *AssignmentService) DeleteBid(bidID uint) *ServiceError {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := lockForUpdate(tx).First(&bid, bidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("BID_NOT_FOUND", "Bid not found")
			}
			return err
		}

		if bid.Status == models.BidStatusAccepted {
			return NewConflictError("BID_ACCEPTED_DELETE_FORBIDDEN",
				"Cannot delete an accepted bid")
		}

		return tx.Delete(&bid).Error
	})
	if err != nil {
		return AsServiceError(err)
	}
	return nil
}

// DeleteLead deletes a lead. A lead with any bids referencing it cannot be
// deleted; the bids must be deleted first.
func (s *AssignmentService) DeleteLead(leadID uint) *ServiceError {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := lockForUpdate(tx).First(&lead, leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("LEAD_NOT_FOUND", "Lead not found")
			}
			return err
		}

		var bidCount int64
		if err := tx.Model(&models.Bid{}).Where("lead_id = ?", lead.ID).Count(&bidCount).Error; err != nil {
			return err
		}
		if bidCount > 0 {
			return NewConflictError("LEAD_HAS_BIDS",
				fmt.Sprintf("Cannot delete a lead with %d bids referencing it", bidCount))
		}

		return tx.Delete(&lead).Error
	})
	if err != nil {
		return AsServiceError(err)
	}
	return nil
}
