package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/gin-gonic/gin"
)

func ListCities(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, err := cs.ListCities(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, cities)
	}
}

// ListCatalog serves GET /api/{kind}?city=<slug>&<kind filters>.
func ListCatalog(cs *services.CatalogService, kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]string{}
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		docs, err := cs.List(c.Request.Context(), kind, c.Query("city"), params)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func GetCatalog(cs *services.CatalogService, kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := cs.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// UpsertCatalog serves the admin bulk import. The body is either a single
// record or an array of records.
func UpsertCatalog(cs *services.CatalogService, kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw json.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		var records []map[string]interface{}
		if err := json.Unmarshal(raw, &records); err != nil {
			var single map[string]interface{}
			if err := json.Unmarshal(raw, &single); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "expected a record or an array of records"})
				return
			}
			records = []map[string]interface{}{single}
		}

		result, err := cs.Upsert(c.Request.Context(), kind, records)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(result, "import complete"))
	}
}

// ListScreenings serves GET /api/screenings/:movieSlug/:citySlug.
func ListScreenings(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := cs.Screenings(c.Request.Context(), c.Param("movieSlug"), c.Param("citySlug"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}
