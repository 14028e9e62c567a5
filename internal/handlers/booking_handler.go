package handlers

import (
	"net/http"

	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/gin-gonic/gin"
)

func CreateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := bs.Create(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func VerifyPayment(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := bs.VerifyPayment(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !result.Success {
			c.JSON(http.StatusBadRequest, result)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetUserBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := bs.GetUserBookings(c.Request.Context(), c.Param("userId"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}
