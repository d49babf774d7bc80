package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/middleware"
	"github.com/paintlink/paintlink-api/models"
	"github.com/paintlink/paintlink-api/services"
)

// errForbidden signals that a response has already been written for an
// authorization failure
var errForbidden = errors.New("forbidden")

// currentUser resolves the acting user from the validated JWT. On failure
// it writes the error response and returns false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// parseID parses a positive integer URL parameter. On failure it writes
// the error response and returns false.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError writes the uniform error body for a service error
func respondServiceError(c *gin.Context, err *services.ServiceError) {
	c.JSON(err.HTTPStatus(), gin.H{
		"success": false,
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	})
}

// assignmentService builds the assignment engine on the current database
// and configuration
func assignmentService() *services.AssignmentService {
	return services.NewAssignmentService(config.GetDB(), config.GetConfig())
}

// canViewLead reports whether the user may see the lead at all. Customers
// see their own leads; painters see open leads plus leads they have bid on
// or are assigned to; admins see everything. A non-nil error means the
// bid lookup failed and visibility could not be determined.
func canViewLead(user *models.User, lead *models.Lead) (bool, error) {
	switch user.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleCustomer:
		return lead.CustomerID == user.ID, nil
	case models.RolePainter:
		if lead.Status == models.LeadStatusOpen {
			return true, nil
		}
		if lead.AssignedPainterID != nil && *lead.AssignedPainterID == user.ID {
			return true, nil
		}
		var count int64
		err := config.GetDB().Model(&models.Bid{}).
			Where("lead_id = ? AND painter_id = ?", lead.ID, user.ID).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}
	return false, nil
}
