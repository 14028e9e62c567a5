package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) GetCityBySlug(ctx context.Context, slug string) (*City, error) {
	var city City
	err := mdb.collection(KindCity.Collection()).FindOne(ctx, bson.M{"slug": slug}).Decode(&city)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: city %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("error finding city by slug: %v", err)
	}
	return &city, nil
}

func (mdb *MongodbRepo) ListCities(ctx context.Context) ([]*City, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := mdb.collection(KindCity.Collection()).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing cities: %v", err)
	}
	defer cursor.Close(ctx)

	cities := []*City{}
	for cursor.Next(ctx) {
		var city City
		if err := cursor.Decode(&city); err != nil {
			return nil, fmt.Errorf("error decoding city: %v", err)
		}
		cities = append(cities, &city)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return cities, nil
}

func (mdb *MongodbRepo) ListCatalog(ctx context.Context, kind EntityKind, filter bson.M) ([]CatalogDoc, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := mdb.collection(kind.Collection()).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %v", kind.Collection(), err)
	}
	defer cursor.Close(ctx)

	docs := []CatalogDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s: %v", kind.Collection(), err)
	}
	return docs, nil
}

func (mdb *MongodbRepo) GetCatalogByID(ctx context.Context, kind EntityKind, id primitive.ObjectID) (CatalogDoc, error) {
	var doc CatalogDoc
	err := mdb.collection(kind.Collection()).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id.Hex())
		}
		return nil, fmt.Errorf("error finding %s by id: %v", kind, err)
	}
	return doc, nil
}

func (mdb *MongodbRepo) GetCatalogBySlug(ctx context.Context, kind EntityKind, slug string) (CatalogDoc, error) {
	var doc CatalogDoc
	err := mdb.collection(kind.Collection()).FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, slug)
		}
		return nil, fmt.Errorf("error finding %s by slug: %v", kind, err)
	}
	return doc, nil
}

func (mdb *MongodbRepo) CatalogByIDs(ctx context.Context, kind EntityKind, ids []primitive.ObjectID) ([]CatalogDoc, error) {
	if len(ids) == 0 {
		return []CatalogDoc{}, nil
	}
	cursor, err := mdb.collection(kind.Collection()).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding %s by ids: %v", kind.Collection(), err)
	}
	defer cursor.Close(ctx)

	docs := []CatalogDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s: %v", kind.Collection(), err)
	}
	return docs, nil
}

// BulkUpsertCatalog writes the batch as slug-keyed update-or-insert so repeated
// imports are idempotent per slug. Docs must already carry a slug and resolved
// foreign keys; the service layer takes care of that before calling in.
func (mdb *MongodbRepo) BulkUpsertCatalog(ctx context.Context, kind EntityKind, docs []bson.M) (*UpsertResult, error) {
	if len(docs) == 0 {
		return &UpsertResult{}, nil
	}

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		slug, _ := doc["slug"].(string)
		if slug == "" {
			return nil, fmt.Errorf("%w: record without slug in %s import", ErrInvalid, kind.Collection())
		}
		doc["updated_at"] = now
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"slug": slug}).
			SetUpdate(bson.M{
				"$set":         doc,
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}

	res, err := mdb.collection(kind.Collection()).BulkWrite(ctx, writes)
	if err != nil {
		return nil, fmt.Errorf("error bulk upserting %s: %v", kind.Collection(), err)
	}
	return &UpsertResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
		Upserted: res.UpsertedCount,
	}, nil
}

// SearchCatalog runs a case-insensitive substring match over the display
// fields. cityID is ignored for kinds that are not city scoped.
func (mdb *MongodbRepo) SearchCatalog(ctx context.Context, kind EntityKind, pattern string, cityID *primitive.ObjectID, limit int64) ([]CatalogDoc, error) {
	regex := primitive.Regex{Pattern: pattern, Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": regex},
		bson.M{"name": regex},
		bson.M{"description": regex},
		bson.M{"tags": regex},
	}}
	if cityID != nil && kind.CityScoped() {
		filter["city_id"] = *cityID
	}

	opts := options.Find().SetLimit(limit)
	cursor, err := mdb.collection(kind.Collection()).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error searching %s: %v", kind.Collection(), err)
	}
	defer cursor.Close(ctx)

	docs := []CatalogDoc{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s search results: %v", kind.Collection(), err)
	}
	return docs, nil
}

func (mdb *MongodbRepo) ListScreenings(ctx context.Context, movieID, cityID primitive.ObjectID) ([]*Screening, error) {
	filter := bson.M{"movie_id": movieID, "city_id": cityID}
	cursor, err := mdb.collection(KindScreening.Collection()).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing screenings: %v", err)
	}
	defer cursor.Close(ctx)

	screenings := []*Screening{}
	for cursor.Next(ctx) {
		var s Screening
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("error decoding screening: %v", err)
		}
		screenings = append(screenings, &s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return screenings, nil
}

func (mdb *MongodbRepo) GetVenueBySlug(ctx context.Context, slug string) (*Venue, error) {
	var venue Venue
	err := mdb.collection(KindVenue.Collection()).FindOne(ctx, bson.M{"slug": slug}).Decode(&venue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: venue %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("error finding venue by slug: %v", err)
	}
	return &venue, nil
}

func (mdb *MongodbRepo) VenuesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Venue, error) {
	out := map[primitive.ObjectID]*Venue{}
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := mdb.collection(KindVenue.Collection()).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding venues by ids: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var v Venue
		if err := cursor.Decode(&v); err != nil {
			return nil, fmt.Errorf("error decoding venue: %v", err)
		}
		out[v.ID] = &v
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return out, nil
}

func (mdb *MongodbRepo) CitiesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*City, error) {
	out := map[primitive.ObjectID]*City{}
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := mdb.collection(KindCity.Collection()).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding cities by ids: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var c City
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("error decoding city: %v", err)
		}
		out[c.ID] = &c
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return out, nil
}
