package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/models"
	"github.com/paintlink/paintlink-api/services"
)

// CreateBidRequest represents the request body for submitting a bid.
// BidAmount is a pointer so that a zero quote still passes "required".
type CreateBidRequest struct {
	BidAmount *float64 `json:"bid_amount" binding:"required,gte=0"`
	Message   string   `json:"message" binding:"omitempty"`
}

// UpdateBidRequest represents the request body for a partial bid update
type UpdateBidRequest struct {
	BidAmount *float64 `json:"bid_amount" binding:"omitempty,gte=0"`
	Message   *string  `json:"message" binding:"omitempty"`
}

// CreateBid handles POST /api/v1/leads/:id/bids - submits an offer against
// an open lead (painters only)
func CreateBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RolePainter {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only painters can submit bids",
			},
		})
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

	if lead.Status != models.LeadStatusOpen {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_OPEN",
				"message": "Bids can only be submitted against open leads",
			},
		})
		return
	}

	var req CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	bid := models.Bid{
		LeadID:    lead.ID,
		PainterID: user.ID,
		BidAmount: *req.BidAmount,
		Message:   req.Message,
		Status:    models.BidStatusPending,
	}

	if err := db.Create(&bid).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create bid",
			},
		})
		return
	}

	if err := db.Preload("Painter").First(&bid, bid.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load bid details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bid,
	})
}

// ListBids handles GET /api/v1/leads/:id/bids - lists bids on a lead.
// The lead's customer and admins see all bids; a painter sees only their
// own. Supports ?status=, free-text ?search= over painter name/email and
// bid message, and ?sort=amount|amount_desc|created (insertion order by
// default).
func ListBids(c *gin.Context) {
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

	query := db.Model(&models.Bid{}).Where("bids.lead_id = ?", lead.ID).Preload("Painter")

	switch user.Role {
	case models.RoleAdmin:
		// all bids
	case models.RoleCustomer:
		if lead.CustomerID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "LEAD_NOT_FOUND",
					"message": "Lead not found",
				},
			})
			return
		}
	case models.RolePainter:
		// A painter with no stake in a closed-off lead must not learn it
		// exists from an empty list.
		visible, err := canViewLead(user, &lead)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to check lead visibility",
				},
			})
			return
		}
		if !visible {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "LEAD_NOT_FOUND",
					"message": "Lead not found",
				},
			})
			return
		}
		query = query.Where("bids.painter_id = ?", user.ID)
	default:
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Unknown role",
			},
		})
		return
	}

	if status := c.Query("status"); status != "" {
		if !models.IsValidBidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_BID_STATUS",
					"message": "Status must be one of pending, accepted, rejected, withdrawn",
				},
			})
			return
		}
		query = query.Where("bids.status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.
			Joins("JOIN users ON users.id = bids.painter_id").
			Where("users.name LIKE ? OR users.email LIKE ? OR bids.message LIKE ?", like, like, like)
	}

	switch c.Query("sort") {
	case "", "created":
		query = query.Order("bids.id ASC")
	case "amount":
		query = query.Order("bids.bid_amount ASC")
	case "amount_desc":
		query = query.Order("bids.bid_amount DESC")
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SORT",
				"message": "Sort must be one of created, amount, amount_desc",
			},
		})
		return
	}

	var bids []models.Bid
	if err := query.Find(&bids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch bids",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bids,
	})
}

// GetBidStats handles GET /api/v1/leads/:id/bids/stats - aggregate
// statistics over a lead's bid set (lead customer and admins only, so
// painters cannot see competitor pricing)
func GetBidStats(c *gin.Context) {
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

	if !user.IsAdmin() && !(user.Role == models.RoleCustomer && lead.CustomerID == user.ID) {
		// Leads the caller cannot see stay hidden; leads they can see
		// refuse the aggregate outright so painters never read
		// competitor pricing.
		visible, err := canViewLead(user, &lead)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to check lead visibility",
				},
			})
			return
		}
		if visible {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Bid statistics are only available to the lead's customer",
				},
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_FOUND",
				"message": "Lead not found",
			},
		})
		return
	}

	query := db.Where("lead_id = ?", lead.ID)
	if status := c.Query("status"); status != "" {
		if !models.IsValidBidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_BID_STATUS",
					"message": "Status must be one of pending, accepted, rejected, withdrawn",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var bids []models.Bid
	if err := query.Find(&bids).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch bids",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.ComputeBidStats(bids),
	})
}

// UpdateBid handles PATCH /api/v1/bids/:id - partial update of a pending
// bid (the bidding painter, or an admin)
func UpdateBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var bid models.Bid
	if err := db.First(&bid, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	// A painter editing someone else's bid learns nothing: not-found
	if !user.IsAdmin() && !(user.Role == models.RolePainter && bid.PainterID == user.ID) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	if bid.Status != models.BidStatusPending {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_PENDING",
				"message": "Only pending bids can be edited",
			},
		})
		return
	}

	var req UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.BidAmount != nil {
		updates["bid_amount"] = *req.BidAmount
	}
	if req.Message != nil {
		updates["message"] = *req.Message
	}

	if len(updates) > 0 {
		if err := db.Model(&bid).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update bid",
				},
			})
			return
		}
	}

	if err := db.Preload("Painter").First(&bid, bid.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load bid details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bid,
	})
}

// DeleteBid handles DELETE /api/v1/bids/:id - deletes a bid (admins only,
// accepted bids refused)
func DeleteBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can delete bids",
			},
		})
		return
	}

	bidID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := assignmentService().DeleteBid(bidID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// AcceptBid handles POST /api/v1/bids/:id/accept - the lead's customer (or
// an admin) accepts a pending bid, assigning the painter to the lead
func AcceptBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bidID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := authorizeBidDecision(c, user, bidID); err != nil {
		return
	}

	bid, svcErr := assignmentService().AcceptBid(bidID, user)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bid,
	})
}

// RejectBid handles POST /api/v1/bids/:id/reject - the lead's customer (or
// an admin) rejects a pending bid. The lead is not affected.
func RejectBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bidID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := authorizeBidDecision(c, user, bidID); err != nil {
		return
	}

	bid, svcErr := assignmentService().RejectBid(bidID, user)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bid,
	})
}

// WithdrawBid handles POST /api/v1/bids/:id/withdraw - the bidding painter
// withdraws a pending bid
func WithdrawBid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bidID, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var bid models.Bid
	if err := db.First(&bid, bidID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	if !user.IsAdmin() && !(user.Role == models.RolePainter && bid.PainterID == user.ID) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	withdrawn, svcErr := assignmentService().WithdrawBid(bidID, user)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawn,
	})
}

// authorizeBidDecision checks that the acting user may accept or reject
// the bid: the customer who owns the parent lead, or an admin. It writes
// the error response and returns a non-nil error when the check fails.
func authorizeBidDecision(c *gin.Context, user *models.User, bidID uint) error {
	db := config.GetDB()

	var bid models.Bid
	if err := db.First(&bid, bidID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return err
	}

	if user.IsAdmin() {
		return nil
	}

	var lead models.Lead
	if err := db.First(&lead, bid.LeadID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_FOUND",
				"message": "Lead not found",
			},
		})
		return err
	}

	if user.Role == models.RoleCustomer && lead.CustomerID == user.ID {
		return nil
	}

	if user.Role == models.RolePainter && bid.PainterID == user.ID {
		// The painter can see their own bid but may not decide on it
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the lead's customer can decide on a bid",
			},
		})
		return errForbidden
	}

	// Anyone else learns nothing about the bid
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "BID_NOT_FOUND",
			"message": "Bid not found",
		},
	})
	return errForbidden
}
