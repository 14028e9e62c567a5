package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const UserColName = "users"

// WishlistItem is an (item id, item type) pair. The pair is the set-membership
// key: $addToSet/$pull operate on the exact pair, which is why the struct
// carries nothing else.
type WishlistItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	ItemType EntityKind         `bson:"item_type" json:"item_type"`
}

// User is the local mirror of an identity-provider account, keyed by the
// provider's subject id.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID   string             `bson:"clerk_id" json:"clerk_id"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Wishlist  []WishlistItem     `bson:"wishlist" json:"wishlist"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type UserRepo interface {
	// UpsertUser creates or refreshes the local record for an external id.
	UpsertUser(ctx context.Context, clerkID string, fields bson.M) (*User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*User, error)
	// RemoveWishlistItem reports whether the pair was present (and removed).
	RemoveWishlistItem(ctx context.Context, clerkID string, item WishlistItem) (bool, error)
	// AddWishlistItem appends the pair, lazily creating the user record, and
	// returns the updated user.
	AddWishlistItem(ctx context.Context, clerkID string, item WishlistItem) (*User, error)
}
