package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

func (h *Handler) ListLevels(c *gin.Context) {
	var levels []models.Level
	if err := h.DB.WithContext(c.Request.Context()).Order("threshold ASC").Find(&levels).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, gin.H{"levels": levels})
}

type updateLevelReq struct {
	Threshold *int64 `json:"threshold" binding:"required"`
}

func (h *Handler) UpdateLevel(c *gin.Context) {
	var req updateLevelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "threshold required")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.Level{}).
		Where("name = ?", c.Param("name")).
		Update("threshold", *req.Threshold)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No level found")
		return
	}
	common.OK(c, gin.H{"message": "Level updated"})
}
