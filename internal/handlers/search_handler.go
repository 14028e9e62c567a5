package handlers

import (
	"net/http"

	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/gin-gonic/gin"
)

func Search(ss *services.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := ss.Search(c.Request.Context(), c.Query("q"), c.Query("city"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}
