package handlers

import (
	"errors"
	"net/http"

	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto the API's error taxonomy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), models.ErrorResponse(err.Error()))
}
