package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) UpsertUser(ctx context.Context, clerkID string, fields bson.M) (*User, error) {
	now := time.Now()
	set := bson.M{"updated_at": now}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"clerk_id":   clerkID,
			"wishlist":   []WishlistItem{},
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user User
	err := mdb.collection(UserColName).FindOneAndUpdate(ctx, bson.M{"clerk_id": clerkID}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %v", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByClerkID(ctx context.Context, clerkID string) (*User, error) {
	var user User
	err := mdb.collection(UserColName).FindOne(ctx, bson.M{"clerk_id": clerkID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, clerkID)
		}
		return nil, fmt.Errorf("error finding user: %v", err)
	}
	return &user, nil
}

// wishlistPairFilter matches the user only when the wishlist actually holds
// the (item id, item type) pair, so a match is exactly "the pair was present"
// and the updated_at write cannot pollute the result.
func wishlistPairFilter(clerkID string, item WishlistItem) bson.M {
	return bson.M{
		"clerk_id": clerkID,
		"wishlist": bson.M{"$elemMatch": bson.M{"item_id": item.ItemID, "item_type": item.ItemType}},
	}
}

// RemoveWishlistItem is an atomic $pull so two concurrent toggles cannot both
// observe the pair and both remove it.
func (mdb *MongodbRepo) RemoveWishlistItem(ctx context.Context, clerkID string, item WishlistItem) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"wishlist": bson.M{"item_id": item.ItemID, "item_type": item.ItemType}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := mdb.collection(UserColName).UpdateOne(ctx, wishlistPairFilter(clerkID, item), update)
	if err != nil {
		return false, fmt.Errorf("error removing wishlist item: %v", err)
	}
	return res.MatchedCount > 0, nil
}

// AddWishlistItem uses $addToSet so the at-most-one-entry-per-pair invariant
// holds even under concurrent adds. The upsert lazily creates the user record
// with a placeholder email that the next identity sync overwrites.
func (mdb *MongodbRepo) AddWishlistItem(ctx context.Context, clerkID string, item WishlistItem) (*User, error) {
	now := time.Now()
	update := bson.M{
		"$addToSet": bson.M{"wishlist": item},
		"$set":      bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"clerk_id":   clerkID,
			"email":      clerkID + "@placeholder.local",
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user User
	err := mdb.collection(UserColName).FindOneAndUpdate(ctx, bson.M{"clerk_id": clerkID}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("error adding wishlist item: %v", err)
	}
	return &user, nil
}
