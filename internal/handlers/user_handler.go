package handlers

import (
	"net/http"

	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/gin-gonic/gin"
)

func SyncUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.SyncUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		user, err := us.Sync(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func ToggleWishlist(ws *services.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID   string `json:"user_id" binding:"required"`
			ItemID   string `json:"item_id" binding:"required"`
			ItemType string `json:"item_type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := ws.Toggle(c.Request.Context(), req.UserID, req.ItemID, req.ItemType)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetWishlist(ws *services.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ws.Get(c.Request.Context(), c.Param("clerkId"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
