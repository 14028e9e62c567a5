package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cityvibe/cityvibe/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	wishlistAddedMessage   = "Added to Hotlist"
	wishlistRemovedMessage = "Removed from Hotlist"
)

type WishlistService struct {
	userRepo    models.UserRepo
	catalogRepo models.CatalogRepo
}

func NewWishlistService(userRepo models.UserRepo, catalogRepo models.CatalogRepo) *WishlistService {
	return &WishlistService{
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
	}
}

type ToggleResult struct {
	Wishlist []models.WishlistItem `json:"wishlist"`
	Message  string                `json:"message"`
}

// Toggle removes the (item id, item type) pair when present, otherwise appends
// it, lazily creating the user record on first use. The human-readable message
// is the only discriminator between the two outcomes.
func (ws *WishlistService) Toggle(ctx context.Context, clerkID, itemIDHex, itemType string) (*ToggleResult, error) {
	if strings.TrimSpace(clerkID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", models.ErrInvalid)
	}
	kind, err := models.ParseBookableKind(itemType)
	if err != nil {
		return nil, err
	}
	itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(itemIDHex))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid item id %q", models.ErrInvalid, itemIDHex)
	}
	item := models.WishlistItem{ItemID: itemID, ItemType: kind}

	removed, err := ws.userRepo.RemoveWishlistItem(ctx, clerkID, item)
	if err != nil {
		return nil, err
	}
	if removed {
		user, err := ws.userRepo.GetUserByClerkID(ctx, clerkID)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Wishlist: user.Wishlist, Message: wishlistRemovedMessage}, nil
	}

	user, err := ws.userRepo.AddWishlistItem(ctx, clerkID, item)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Wishlist: user.Wishlist, Message: wishlistAddedMessage}, nil
}

type WishlistEntry struct {
	models.WishlistItem
	Details models.CatalogDoc `json:"details"`
}

// Get resolves each wishlist entry to its full catalog document. Entries whose
// referenced document no longer exists are dropped silently, so the result can
// be shorter than the stored wishlist.
func (ws *WishlistService) Get(ctx context.Context, clerkID string) ([]WishlistEntry, error) {
	if strings.TrimSpace(clerkID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", models.ErrInvalid)
	}

	user, err := ws.userRepo.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return []WishlistEntry{}, nil
		}
		return nil, err
	}

	idsByKind := map[models.EntityKind][]primitive.ObjectID{}
	for _, item := range user.Wishlist {
		idsByKind[item.ItemType] = append(idsByKind[item.ItemType], item.ItemID)
	}

	details := map[models.EntityKind]map[primitive.ObjectID]models.CatalogDoc{}
	for kind, ids := range idsByKind {
		docs, err := ws.catalogRepo.CatalogByIDs(ctx, kind, ids)
		if err != nil {
			return nil, err
		}
		byID := map[primitive.ObjectID]models.CatalogDoc{}
		for _, doc := range docs {
			if id, ok := doc["_id"].(primitive.ObjectID); ok {
				byID[id] = doc
			}
		}
		details[kind] = byID
	}

	entries := []WishlistEntry{}
	for _, item := range user.Wishlist {
		doc, ok := details[item.ItemType][item.ItemID]
		if !ok {
			continue // stale reference
		}
		entries = append(entries, WishlistEntry{WishlistItem: item, Details: doc})
	}
	return entries, nil
}
