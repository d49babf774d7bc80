package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/models"
	"github.com/paintlink/paintlink-api/utils"
)

// CreateLeadRequest represents the request body for posting a job
type CreateLeadRequest struct {
	JobTitle       string `json:"job_title" binding:"required"`
	JobDescription string `json:"job_description" binding:"omitempty"`
	Location       string `json:"location" binding:"omitempty"`
	Postcode       string `json:"postcode" binding:"required"`
}

// SetLeadStatusRequest represents the request body for the admin status override
type SetLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"omitempty"`
}

// CreateLead handles POST /api/v1/leads - posts a new job (customers only)
func CreateLead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Only customers post jobs
	if user.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can post leads",
			},
		})
		return
	}

	var req CreateLeadRequest
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

	if !utils.IsValidPostcode(req.Postcode) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_POSTCODE",
				"message": "Postcode is not a valid UK postcode",
			},
		})
		return
	}

	// Contact details are denormalized from the posting user so painters
	// see them even if the profile changes later
	lead := models.Lead{
		CustomerID:     user.ID,
		CustomerName:   user.Name,
		CustomerEmail:  user.Email,
		CustomerPhone:  user.Phone,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Location:       req.Location,
		Postcode:       utils.NormalizePostcode(req.Postcode),
		Status:         models.LeadStatusOpen,
	}

	db := config.GetDB()
	if err := db.Create(&lead).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create lead",
			},
		})
		return
	}

	if err := db.Preload("Customer").First(&lead, lead.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load lead details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    lead,
	})
}

// ListLeads handles GET /api/v1/leads - lists leads visible to the caller.
// Supports ?status= equality and ?search= free text over job fields.
func ListLeads(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Model(&models.Lead{}).Preload("Customer").Preload("AssignedPainter")

	// Ownership filtering: never leak other tenants' leads
	switch user.Role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", user.ID)
	case models.RolePainter:
		query = query.Where(
			"status = ? OR assigned_painter_id = ? OR id IN (SELECT lead_id FROM bids WHERE painter_id = ?)",
			models.LeadStatusOpen, user.ID, user.ID,
		)
	case models.RoleAdmin:
		// admins see everything
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
		if !models.IsValidLeadStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LEAD_STATUS",
					"message": "Status must be one of open, assigned, closed",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"job_title LIKE ? OR job_description LIKE ? OR location LIKE ? OR postcode LIKE ?",
			like, like, like, like,
		)
	}

	var leads []models.Lead
	if err := query.Order("id ASC").Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch leads",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    leads,
	})
}

// GetLead handles GET /api/v1/leads/:id - fetches one lead
func GetLead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var lead models.Lead
	if err := db.Preload("Customer").Preload("AssignedPainter").First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEAD_NOT_FOUND",
				"message": "Lead not found",
			},
		})
		return
	}

	// Cross-tenant lookups are normalized to not-found so existence does
	// not leak
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

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lead,
	})
}

// DeleteLead handles DELETE /api/v1/leads/:id - deletes a lead (admins only).
// A lead with bids referencing it cannot be deleted.
func DeleteLead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can delete leads",
			},
		})
		return
	}

	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := assignmentService().DeleteLead(leadID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// SetLeadStatus handles PUT /api/v1/leads/:id/status - the audited admin
// override. It bypasses the assignment workflow on purpose.
func SetLeadStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can override lead status",
			},
		})
		return
	}

	var req SetLeadStatusRequest
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

	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	lead, svcErr := assignmentService().SetLeadStatus(leadID, req.Status, req.Reason, user)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lead,
	})
}

// GetLeadHistory handles GET /api/v1/leads/:id/history - the audit trail
// of status changes (admins only)
func GetLeadHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can view the lead audit trail",
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

	var history []models.LeadStatusHistory
	if err := db.Where("lead_id = ?", lead.ID).
		Preload("User").
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch lead history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
	})
}
