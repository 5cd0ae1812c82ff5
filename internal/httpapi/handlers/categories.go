package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

func (h *Handler) ListCategories(c *gin.Context) {
	var cats []models.Category
	if err := h.DB.WithContext(c.Request.Context()).Find(&cats).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, gin.H{"categories": cats})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var cat models.Category
	if err := h.DB.WithContext(c.Request.Context()).First(&cat, id).Error; err != nil {
		common.FailStore(c, err, "No category found")
		return
	}
	common.OK(c, cat)
}

type categoryReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "name required")
		return
	}

	cat := models.Category{Name: req.Name, Description: req.Description}
	if err := h.DB.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "name required")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.Category{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": req.Name, "description": req.Description})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No category found")
		return
	}
	common.OK(c, gin.H{"message": "Category updated"})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.Category{}, id)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No category found")
		return
	}
	common.OK(c, gin.H{"message": "Category deleted"})
}
