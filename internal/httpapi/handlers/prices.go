package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

func (h *Handler) ListPrices(c *gin.Context) {
	var prices []models.Price
	if err := h.DB.WithContext(c.Request.Context()).Find(&prices).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, gin.H{"prices": prices})
}

func (h *Handler) GetPrice(c *gin.Context) {
	var price models.Price
	if err := h.DB.WithContext(c.Request.Context()).
		First(&price, "name = ?", c.Param("name")).Error; err != nil {
		common.FailStore(c, err, "No price found")
		return
	}
	common.OK(c, price)
}

type createPriceReq struct {
	Name    string   `json:"name" binding:"required"`
	Credits *float64 `json:"credits" binding:"required"`
}

func (h *Handler) CreatePrice(c *gin.Context) {
	var req createPriceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "name and credits required")
		return
	}

	price := models.Price{Name: req.Name, Credits: *req.Credits}
	if err := h.DB.WithContext(c.Request.Context()).Create(&price).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, price)
}

type updatePriceReq struct {
	Credits *float64 `json:"credits" binding:"required"`
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	var req updatePriceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "credits required")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.Price{}).
		Where("name = ?", c.Param("name")).
		Update("credits", *req.Credits)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No price found")
		return
	}
	common.OK(c, gin.H{"message": "Price updated"})
}

func (h *Handler) DeletePrice(c *gin.Context) {
	res := h.DB.WithContext(c.Request.Context()).
		Where("name = ?", c.Param("name")).
		Delete(&models.Price{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, "No price found")
		return
	}
	common.OK(c, gin.H{"message": "Price deleted"})
}
