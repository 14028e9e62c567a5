package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/cityvibe/cityvibe/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const searchLimit = 5

type SearchService struct {
	catalogRepo models.CatalogRepo
	cache       *ResponseCache
}

func NewSearchService(catalogRepo models.CatalogRepo, cache *ResponseCache) *SearchService {
	return &SearchService{
		catalogRepo: catalogRepo,
		cache:       cache,
	}
}

type SearchResults struct {
	Movies      []models.CatalogDoc `json:"movies"`
	Events      []models.CatalogDoc `json:"events"`
	Restaurants []models.CatalogDoc `json:"restaurants"`
	Stores      []models.CatalogDoc `json:"stores"`
	Activities  []models.CatalogDoc `json:"activities"`
	Total       int                 `json:"total"`
}

func emptySearchResults() *SearchResults {
	return &SearchResults{
		Movies:      []models.CatalogDoc{},
		Events:      []models.CatalogDoc{},
		Restaurants: []models.CatalogDoc{},
		Stores:      []models.CatalogDoc{},
		Activities:  []models.CatalogDoc{},
	}
}

// Search runs the same case-insensitive substring filter across the five
// catalog collections in parallel, each capped at five results. Queries under
// two characters (after trimming) return the empty shape without touching the
// store. The city filter applies only to the city-scoped kinds; movies reach
// cities through screenings and are searched unscoped.
func (ss *SearchService) Search(ctx context.Context, query, citySlug string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return emptySearchResults(), nil
	}

	cacheKey := "search:" + citySlug + ":" + query
	cached := &SearchResults{}
	if ss.cache.Get(ctx, cacheKey, cached) {
		return cached, nil
	}

	var cityID *primitive.ObjectID
	cityKnown := true
	if citySlug != "" {
		city, err := ss.catalogRepo.GetCityBySlug(ctx, citySlug)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
			// Unknown city: scoped kinds have nothing in it, like list().
			cityKnown = false
		} else {
			cityID = &city.ID
		}
	}

	pattern := regexp.QuoteMeta(query)
	kindList := models.BookableKinds()
	buckets := make([][]models.CatalogDoc, len(kindList))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kindList {
		if !cityKnown && kind.CityScoped() {
			buckets[i] = []models.CatalogDoc{}
			continue
		}
		g.Go(func() error {
			docs, err := ss.catalogRepo.SearchCatalog(gctx, kind, pattern, cityID, searchLimit)
			if err != nil {
				return err
			}
			buckets[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := &SearchResults{
		Movies:      buckets[0],
		Events:      buckets[1],
		Restaurants: buckets[2],
		Stores:      buckets[3],
		Activities:  buckets[4],
	}
	results.Total = len(results.Movies) + len(results.Events) + len(results.Restaurants) +
		len(results.Stores) + len(results.Activities)

	ss.cache.Set(ctx, cacheKey, results)
	return results, nil
}
