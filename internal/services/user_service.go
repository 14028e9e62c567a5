package services

import (
	"context"
	"fmt"

	"github.com/cityvibe/cityvibe/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

type SyncUserRequest struct {
	ClerkID string `json:"clerk_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// Sync upserts the local mirror of an identity-provider account. It also
// repairs the placeholder email left behind by a lazy wishlist-toggle
// creation.
func (us *UserService) Sync(ctx context.Context, req *SyncUserRequest) (*models.User, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}

	fields := bson.M{"email": req.Email}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	return us.userRepo.UpsertUser(ctx, req.ClerkID, fields)
}
