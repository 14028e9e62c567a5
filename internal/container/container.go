package container

import (
	"log/slog"
	"time"

	"github.com/cityvibe/cityvibe/internal/config"
	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/cityvibe/cityvibe/internal/payment"
	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config

	MongoDBClient *mongo.Client
	RedisClient   *redis.Client
	Gateway       payment.Gateway

	CatalogService  *services.CatalogService
	BookingService  *services.BookingService
	WishlistService *services.WishlistService
	UserService     *services.UserService
	SearchService   *services.SearchService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	gateway payment.Gateway,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)
	cache := services.NewResponseCache(redisClient, 30*time.Second)

	return &Container{
		Logger:          logger,
		Config:          cfg,
		MongoDBClient:   mongoDBClient,
		RedisClient:     redisClient,
		Gateway:         gateway,
		CatalogService:  services.NewCatalogService(repo, cache),
		BookingService:  services.NewBookingService(repo, repo, gateway),
		WishlistService: services.NewWishlistService(repo, repo),
		UserService:     services.NewUserService(repo),
		SearchService:   services.NewSearchService(repo, cache),
	}
}
