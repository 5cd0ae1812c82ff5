package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Fail writes the uniform failure body and aborts the handler chain so
// middleware can use it too.
func Fail(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"error": msg})
}

// FailStore classifies a store error: no matching row -> 404 with the
// resource message, anything else -> 500 carrying the store's message.
func FailStore(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		Fail(c, http.StatusNotFound, notFoundMsg)
		return
	}
	Fail(c, http.StatusInternalServerError, err.Error())
}
