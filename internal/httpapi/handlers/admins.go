package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

func (h *Handler) ListAdmins(c *gin.Context) {
	var admins []models.Admin
	if err := h.DB.WithContext(c.Request.Context()).Find(&admins).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, gin.H{"admins": admins})
}

type addAdminReq struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddAdmin grants the admin role. The checks run in a fixed order: a caller
// naming themself is rejected before anything else, then the caller's own
// role, then the target's existence, then an existing grant.
func (h *Handler) AddAdmin(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var req addAdminReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "user_id required")
		return
	}

	if req.UserID == identity.UserID {
		common.Fail(c, http.StatusUnauthorized, "You can't add yourself as admin")
		return
	}
	if !identity.Admin {
		common.Fail(c, http.StatusForbidden, "Forbidden")
		return
	}

	ctx := c.Request.Context()

	var target models.User
	if err := h.DB.WithContext(ctx).First(&target, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "No user found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	var grants int64
	if err := h.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("user_id = ?", req.UserID).
		Count(&grants).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if grants > 0 {
		common.Fail(c, http.StatusBadRequest, "User is already admin")
		return
	}

	if err := h.DB.WithContext(ctx).Create(&models.Admin{UserID: req.UserID}).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	common.OK(c, gin.H{"message": fmt.Sprintf("User %s is now admin", req.UserID)})
}

// RemoveAdmin revokes a grant. Revoking your own grant is rejected the same
// way self-promotion is.
func (h *Handler) RemoveAdmin(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	targetID := c.Param("user_id")
	if targetID == identity.UserID {
		common.Fail(c, http.StatusUnauthorized, "You can't remove yourself as admin")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", targetID).
		Delete(&models.Admin{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No admin found")
		return
	}
	common.OK(c, gin.H{"message": fmt.Sprintf("User %s is no longer admin", targetID)})
}
