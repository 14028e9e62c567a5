package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cityvibe/cityvibe/internal/helpers"
	"github.com/cityvibe/cityvibe/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// kindFilters whitelists the extra query filters each kind accepts, mapping
// the query parameter to the document field it matches. Equality on an array
// field is membership in Mongo, which is exactly what cuisine/genre want.
var kindFilters = map[models.EntityKind]map[string]string{
	models.KindMovie:      {"genre": "genres", "language": "languages"},
	models.KindEvent:      {"category": "category"},
	models.KindRestaurant: {"cuisine": "cuisines"},
	models.KindStore:      {"category": "category"},
	models.KindActivity:   {"category": "category", "difficulty": "difficulty"},
}

type CatalogService struct {
	catalogRepo models.CatalogRepo
	cache       *ResponseCache
}

func NewCatalogService(catalogRepo models.CatalogRepo, cache *ResponseCache) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		cache:       cache,
	}
}

func (cs *CatalogService) ListCities(ctx context.Context) ([]*models.City, error) {
	return cs.catalogRepo.ListCities(ctx)
}

// List returns the kind's documents, optionally scoped to a city and filtered
// by the kind's whitelisted query parameters. An unknown city slug yields an
// empty list, not an error.
func (cs *CatalogService) List(ctx context.Context, kind models.EntityKind, citySlug string, params map[string]string) ([]models.CatalogDoc, error) {
	filter := bson.M{}
	if citySlug != "" && kind.CityScoped() {
		city, err := cs.catalogRepo.GetCityBySlug(ctx, citySlug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return []models.CatalogDoc{}, nil
			}
			return nil, err
		}
		filter["city_id"] = city.ID
	}
	for param, field := range kindFilters[kind] {
		if v := strings.TrimSpace(params[param]); v != "" {
			filter[field] = v
		}
	}

	key := listCacheKey(kind, citySlug, params)
	cached := []models.CatalogDoc{}
	if cs.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	docs, err := cs.catalogRepo.ListCatalog(ctx, kind, filter)
	if err != nil {
		return nil, err
	}
	if err := cs.resolveRefs(ctx, docs); err != nil {
		return nil, err
	}
	cs.cache.Set(ctx, key, docs)
	return docs, nil
}

func (cs *CatalogService) Get(ctx context.Context, kind models.EntityKind, idHex string) (models.CatalogDoc, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(idHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", models.ErrNotFound, kind, idHex)
	}
	doc, err := cs.catalogRepo.GetCatalogByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := cs.resolveRefs(ctx, []models.CatalogDoc{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upsert imports one batch of records for a kind. Slugs are derived from the
// title/name when absent, and city_slug/venue_slug/movie_slug convenience
// fields are resolved to real foreign keys before the batch write, so a single
// bad reference fails the whole batch.
func (cs *CatalogService) Upsert(ctx context.Context, kind models.EntityKind, records []map[string]interface{}) (*models.UpsertResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to import", models.ErrInvalid)
	}

	docs := make([]bson.M, 0, len(records))
	for _, record := range records {
		doc := bson.M(record)
		if err := cs.resolveImportRefs(ctx, kind, doc); err != nil {
			return nil, err
		}
		if err := ensureSlug(kind, doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return cs.catalogRepo.BulkUpsertCatalog(ctx, kind, docs)
}

// Screenings resolves a movie and a city by slug and returns the screenings
// linking them, with venues populated.
func (cs *CatalogService) Screenings(ctx context.Context, movieSlug, citySlug string) (*ScreeningListing, error) {
	movie, err := cs.catalogRepo.GetCatalogBySlug(ctx, models.KindMovie, movieSlug)
	if err != nil {
		return nil, err
	}
	city, err := cs.catalogRepo.GetCityBySlug(ctx, citySlug)
	if err != nil {
		return nil, err
	}
	movieID, ok := movie["_id"].(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("movie %q has no object id", movieSlug)
	}

	screenings, err := cs.catalogRepo.ListScreenings(ctx, movieID, city.ID)
	if err != nil {
		return nil, err
	}

	venueIDs := make([]primitive.ObjectID, 0, len(screenings))
	for _, s := range screenings {
		if s.VenueID != nil {
			venueIDs = append(venueIDs, *s.VenueID)
		}
	}
	venues, err := cs.catalogRepo.VenuesByIDs(ctx, venueIDs)
	if err != nil {
		return nil, err
	}
	for _, s := range screenings {
		if s.VenueID != nil {
			s.Venue = venues[*s.VenueID]
		}
	}

	return &ScreeningListing{Movie: movie, City: city, Screenings: screenings}, nil
}

type ScreeningListing struct {
	Movie      models.CatalogDoc   `json:"movie"`
	City       *models.City        `json:"city"`
	Screenings []*models.Screening `json:"screenings"`
}

// resolveRefs attaches the referenced city and venue documents inline.
func (cs *CatalogService) resolveRefs(ctx context.Context, docs []models.CatalogDoc) error {
	var cityIDs, venueIDs []primitive.ObjectID
	for _, doc := range docs {
		if id, ok := doc["city_id"].(primitive.ObjectID); ok {
			cityIDs = append(cityIDs, id)
		}
		if id, ok := doc["venue_id"].(primitive.ObjectID); ok {
			venueIDs = append(venueIDs, id)
		}
	}
	if len(cityIDs) == 0 && len(venueIDs) == 0 {
		return nil
	}

	cities, err := cs.catalogRepo.CitiesByIDs(ctx, cityIDs)
	if err != nil {
		return err
	}
	venues, err := cs.catalogRepo.VenuesByIDs(ctx, venueIDs)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if id, ok := doc["city_id"].(primitive.ObjectID); ok {
			if city := cities[id]; city != nil {
				doc["city"] = city
			}
		}
		if id, ok := doc["venue_id"].(primitive.ObjectID); ok {
			if venue := venues[id]; venue != nil {
				doc["venue"] = venue
			}
		}
	}
	return nil
}

func (cs *CatalogService) resolveImportRefs(ctx context.Context, kind models.EntityKind, doc bson.M) error {
	cityRef, _ := doc["city_slug"].(string)
	venueRef, _ := doc["venue_slug"].(string)

	if slug, ok := doc["city_slug"].(string); ok {
		city, err := cs.catalogRepo.GetCityBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: unknown city slug %q", models.ErrInvalid, slug)
			}
			return err
		}
		delete(doc, "city_slug")
		doc["city_id"] = city.ID
	}
	if slug, ok := doc["venue_slug"].(string); ok {
		venue, err := cs.catalogRepo.GetVenueBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: unknown venue slug %q", models.ErrInvalid, slug)
			}
			return err
		}
		delete(doc, "venue_slug")
		doc["venue_id"] = venue.ID
	}
	if kind == models.KindScreening {
		slug, ok := doc["movie_slug"].(string)
		if !ok {
			return fmt.Errorf("%w: screening record without movie_slug", models.ErrInvalid)
		}
		movie, err := cs.catalogRepo.GetCatalogBySlug(ctx, models.KindMovie, slug)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: unknown movie slug %q", models.ErrInvalid, slug)
			}
			return err
		}
		delete(doc, "movie_slug")
		doc["movie_id"] = movie["_id"]

		// Screenings carry no title; derive the slug from what identifies one.
		if s, _ := doc["slug"].(string); s == "" {
			date, _ := doc["date"].(string)
			showTime, _ := doc["time"].(string)
			doc["slug"] = helpers.Slugify(slug, cityRef, venueRef, date, showTime)
		}
	}
	return nil
}

func ensureSlug(kind models.EntityKind, doc bson.M) error {
	if slug, _ := doc["slug"].(string); slug != "" {
		return nil
	}
	title, _ := doc["title"].(string)
	if title == "" {
		title, _ = doc["name"].(string)
	}
	slug := helpers.Slugify(title)
	if slug == "" {
		return fmt.Errorf("%w: %s record needs a slug or a title/name to derive one", models.ErrInvalid, kind)
	}
	doc["slug"] = slug
	return nil
}

func listCacheKey(kind models.EntityKind, citySlug string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range kindFilters[kind] {
		if params[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("catalog:")
	b.WriteString(kind.RouteName())
	b.WriteString(":")
	b.WriteString(citySlug)
	for _, k := range keys {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}
