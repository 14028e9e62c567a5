package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The removal update also touches updated_at, so the filter itself must pin
// down the pair: a user without it must not match at all, or every toggle on
// an existing user would report a removal.
func TestWishlistPairFilterRequiresThePair(t *testing.T) {
	item := WishlistItem{ItemID: primitive.NewObjectID(), ItemType: KindMovie}
	filter := wishlistPairFilter("user_2abc", item)

	assert.Equal(t, "user_2abc", filter["clerk_id"])

	wl, ok := filter["wishlist"].(bson.M)
	require.True(t, ok, "filter must constrain the wishlist array")
	elem, ok := wl["$elemMatch"].(bson.M)
	require.True(t, ok, "pair must match a single array element")
	assert.Equal(t, item.ItemID, elem["item_id"])
	assert.Equal(t, KindMovie, elem["item_type"])
}
