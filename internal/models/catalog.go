package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogDoc is the generic representation of a catalog document. The five
// bookable collections are schemaless beyond the fields the platform itself
// touches (slug, price, city_id, venue_id, title/name, tags), so list/search
// results keep whatever display attributes the admin import seeded.
type CatalogDoc = bson.M

type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Slug      string             `bson:"slug" json:"slug"`
	State     string             `bson:"state,omitempty" json:"state,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type Venue struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name" validate:"required"`
	Slug       string              `bson:"slug" json:"slug"`
	CityID     *primitive.ObjectID `bson:"city_id,omitempty" json:"city_id,omitempty"`
	Address    string              `bson:"address,omitempty" json:"address,omitempty"`
	Facilities []string            `bson:"facilities,omitempty" json:"facilities,omitempty"`
	CreatedAt  time.Time           `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt  time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type Screening struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Slug     string              `bson:"slug" json:"slug"`
	MovieID  primitive.ObjectID  `bson:"movie_id" json:"movie_id"`
	CityID   primitive.ObjectID  `bson:"city_id" json:"city_id"`
	VenueID  *primitive.ObjectID `bson:"venue_id,omitempty" json:"venue_id,omitempty"`
	Date     string              `bson:"date,omitempty" json:"date,omitempty"`
	Time     string              `bson:"time,omitempty" json:"time,omitempty"`
	Format   string              `bson:"format,omitempty" json:"format,omitempty"`
	Language string              `bson:"language,omitempty" json:"language,omitempty"`
	Price    int64               `bson:"price,omitempty" json:"price,omitempty"`

	// Populated on reads, never persisted.
	Venue *Venue `bson:"-" json:"venue,omitempty"`
}

// UpsertResult reports the aggregate outcome of a bulk slug-keyed import.
type UpsertResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
	Upserted int64 `json:"upserted"`
}

type CatalogRepo interface {
	// GetCityBySlug returns ErrNotFound for an unknown slug; callers on the
	// read path translate that to an empty result set rather than an error.
	GetCityBySlug(ctx context.Context, slug string) (*City, error)
	ListCities(ctx context.Context) ([]*City, error)

	ListCatalog(ctx context.Context, kind EntityKind, filter bson.M) ([]CatalogDoc, error)
	GetCatalogByID(ctx context.Context, kind EntityKind, id primitive.ObjectID) (CatalogDoc, error)
	GetCatalogBySlug(ctx context.Context, kind EntityKind, slug string) (CatalogDoc, error)
	CatalogByIDs(ctx context.Context, kind EntityKind, ids []primitive.ObjectID) ([]CatalogDoc, error)
	BulkUpsertCatalog(ctx context.Context, kind EntityKind, docs []bson.M) (*UpsertResult, error)
	SearchCatalog(ctx context.Context, kind EntityKind, pattern string, cityID *primitive.ObjectID, limit int64) ([]CatalogDoc, error)

	ListScreenings(ctx context.Context, movieID, cityID primitive.ObjectID) ([]*Screening, error)

	GetVenueBySlug(ctx context.Context, slug string) (*Venue, error)
	VenuesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Venue, error)
	CitiesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*City, error)
}
