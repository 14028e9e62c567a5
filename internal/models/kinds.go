package models

import "fmt"

// EntityKind is the tagged union over the five bookable/wishlistable catalog
// categories plus the supporting reference collections (venues, cities,
// screenings). Every place that needs to go from a kind to a collection goes
// through this type instead of switching on raw strings.
type EntityKind string

const (
	KindMovie      EntityKind = "Movie"
	KindEvent      EntityKind = "Event"
	KindRestaurant EntityKind = "Restaurant"
	KindStore      EntityKind = "Store"
	KindActivity   EntityKind = "Activity"
	KindVenue      EntityKind = "Venue"
	KindCity       EntityKind = "City"
	KindScreening  EntityKind = "Screening"
)

const DBName = "cityvibe"

type kindInfo struct {
	collection string
	routeName  string
	bookable   bool
	// cityScoped kinds carry a city_id and accept the ?city= filter. Movies
	// reach cities only through screenings, so they are not city scoped.
	cityScoped bool
}

var kinds = map[EntityKind]kindInfo{
	KindMovie:      {collection: "movies", routeName: "movies", bookable: true},
	KindEvent:      {collection: "events", routeName: "events", bookable: true, cityScoped: true},
	KindRestaurant: {collection: "restaurants", routeName: "restaurants", bookable: true, cityScoped: true},
	KindStore:      {collection: "stores", routeName: "stores", bookable: true, cityScoped: true},
	KindActivity:   {collection: "activities", routeName: "activities", bookable: true, cityScoped: true},
	KindVenue:      {collection: "venues", routeName: "venues", cityScoped: true},
	KindCity:       {collection: "cities", routeName: "cities"},
	KindScreening:  {collection: "screenings", routeName: "screenings"},
}

// BookableKinds lists the five kinds a booking or wishlist entry may reference,
// in a stable order used by the search aggregator's result shape.
func BookableKinds() []EntityKind {
	return []EntityKind{KindMovie, KindEvent, KindRestaurant, KindStore, KindActivity}
}

// ParseEntityKind accepts the canonical name ("Movie") used in request bodies.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if _, ok := kinds[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalid, s)
}

// ParseRouteKind accepts the plural route segment ("movies") used in URLs.
func ParseRouteKind(s string) (EntityKind, error) {
	for k, info := range kinds {
		if info.routeName == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown catalog route %q", ErrInvalid, s)
}

// ParseBookableKind accepts only the five bookable/wishlistable kinds.
func ParseBookableKind(s string) (EntityKind, error) {
	k, err := ParseEntityKind(s)
	if err != nil {
		return "", err
	}
	if !kinds[k].bookable {
		return "", fmt.Errorf("%w: %q is not a bookable entity kind", ErrInvalid, s)
	}
	return k, nil
}

func (k EntityKind) Collection() string { return kinds[k].collection }
func (k EntityKind) RouteName() string  { return kinds[k].routeName }
func (k EntityKind) Bookable() bool     { return kinds[k].bookable }
func (k EntityKind) CityScoped() bool   { return kinds[k].cityScoped }
