package routes

import (
	"github.com/cityvibe/cityvibe/internal/container"
	"github.com/cityvibe/cityvibe/internal/handlers"
	"github.com/cityvibe/cityvibe/internal/middleware"
	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "x-api-key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Identity(container.Config.ClerkJWKSURL, container.Logger))
	r.Use(gin.Recovery())

	admin := middleware.AdminKey(container.Config.AdminAPIKey)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "cityvibe-api",
			})
		})

		// Catalog reads, one route set per kind; admin bulk import on POST.
		for _, kind := range append(models.BookableKinds(), models.KindVenue) {
			group := api.Group("/" + kind.RouteName())
			group.GET("", handlers.ListCatalog(container.CatalogService, kind))
			group.GET("/:id", handlers.GetCatalog(container.CatalogService, kind))
			group.POST("", admin, handlers.UpsertCatalog(container.CatalogService, kind))
		}

		api.GET("/cities", handlers.ListCities(container.CatalogService))
		api.POST("/cities", admin, handlers.UpsertCatalog(container.CatalogService, models.KindCity))

		api.GET("/screenings/:movieSlug/:citySlug", handlers.ListScreenings(container.CatalogService))
		api.POST("/screenings", admin, handlers.UpsertCatalog(container.CatalogService, models.KindScreening))

		bookingRoutes := api.Group("/bookings")
		{
			bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
			bookingRoutes.POST("/verify-payment", handlers.VerifyPayment(container.BookingService))
			bookingRoutes.GET("/user/:userId", handlers.GetUserBookings(container.BookingService))
		}

		userRoutes := api.Group("/users")
		{
			userRoutes.POST("/sync", handlers.SyncUser(container.UserService))
			userRoutes.POST("/wishlist/toggle", handlers.ToggleWishlist(container.WishlistService))
			userRoutes.GET("/wishlist/:clerkId", handlers.GetWishlist(container.WishlistService))
		}

		api.GET("/search", handlers.Search(container.SearchService))
	}

	return r
}
