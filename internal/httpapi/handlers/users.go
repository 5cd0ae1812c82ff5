package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

// GetProfile returns the caller's own profile row.
func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).
		First(&user, "id = ?", identity.UserID).Error; err != nil {
		common.FailStore(c, err, "No user found")
		return
	}

	common.OK(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"admin":      identity.Admin,
		"created_at": user.CreatedAt,
	})
}

type updateProfileReq struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "username required")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", identity.UserID).
		Update("username", req.Username)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No user found")
		return
	}
	common.OK(c, gin.H{"message": "Profile updated"})
}

// DeleteProfile removes the caller's profile row and any admin grant. The
// auth-service account itself is out of our hands.
func (h *Handler) DeleteProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	ctx := c.Request.Context()
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", identity.UserID).
		Delete(&models.Admin{}).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	res := h.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", identity.UserID)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No user found")
		return
	}
	common.OK(c, gin.H{"message": "Profile deleted"})
}
