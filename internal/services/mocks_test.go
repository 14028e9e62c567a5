package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/cityvibe/cityvibe/internal/payment"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock implementations for testing

type mockCatalogRepo struct {
	cities       map[string]*models.City
	docs         map[models.EntityKind]map[primitive.ObjectID]models.CatalogDoc
	venues       map[primitive.ObjectID]*models.Venue
	venuesBySlug map[string]*models.Venue
	screenings   []*models.Screening
	upserted     map[models.EntityKind][]bson.M

	lastListFilter bson.M
	shouldFailOn   string
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		cities:       map[string]*models.City{},
		docs:         map[models.EntityKind]map[primitive.ObjectID]models.CatalogDoc{},
		venues:       map[primitive.ObjectID]*models.Venue{},
		venuesBySlug: map[string]*models.Venue{},
		upserted:     map[models.EntityKind][]bson.M{},
	}
}

func (m *mockCatalogRepo) addCity(name, slug string) *models.City {
	city := &models.City{ID: primitive.NewObjectID(), Name: name, Slug: slug}
	m.cities[slug] = city
	return city
}

func (m *mockCatalogRepo) addVenue(name, slug string) *models.Venue {
	venue := &models.Venue{ID: primitive.NewObjectID(), Name: name, Slug: slug}
	m.venues[venue.ID] = venue
	m.venuesBySlug[slug] = venue
	return venue
}

func (m *mockCatalogRepo) addDoc(kind models.EntityKind, doc models.CatalogDoc) primitive.ObjectID {
	id := primitive.NewObjectID()
	doc["_id"] = id
	if m.docs[kind] == nil {
		m.docs[kind] = map[primitive.ObjectID]models.CatalogDoc{}
	}
	m.docs[kind][id] = doc
	return id
}

func (m *mockCatalogRepo) GetCityBySlug(ctx context.Context, slug string) (*models.City, error) {
	if city, ok := m.cities[slug]; ok {
		return city, nil
	}
	return nil, fmt.Errorf("%w: city %q", models.ErrNotFound, slug)
}

func (m *mockCatalogRepo) ListCities(ctx context.Context) ([]*models.City, error) {
	cities := []*models.City{}
	for _, city := range m.cities {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, nil
}

func (m *mockCatalogRepo) ListCatalog(ctx context.Context, kind models.EntityKind, filter bson.M) ([]models.CatalogDoc, error) {
	if m.shouldFailOn == "ListCatalog" {
		return nil, errors.New("list failed")
	}
	m.lastListFilter = filter
	docs := []models.CatalogDoc{}
	for _, doc := range m.docs[kind] {
		if cityID, ok := filter["city_id"].(primitive.ObjectID); ok && doc["city_id"] != cityID {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *mockCatalogRepo) GetCatalogByID(ctx context.Context, kind models.EntityKind, id primitive.ObjectID) (models.CatalogDoc, error) {
	if doc, ok := m.docs[kind][id]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id.Hex())
}

func (m *mockCatalogRepo) GetCatalogBySlug(ctx context.Context, kind models.EntityKind, slug string) (models.CatalogDoc, error) {
	for _, doc := range m.docs[kind] {
		if doc["slug"] == slug {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", models.ErrNotFound, kind, slug)
}

func (m *mockCatalogRepo) CatalogByIDs(ctx context.Context, kind models.EntityKind, ids []primitive.ObjectID) ([]models.CatalogDoc, error) {
	docs := []models.CatalogDoc{}
	for _, id := range ids {
		if doc, ok := m.docs[kind][id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *mockCatalogRepo) BulkUpsertCatalog(ctx context.Context, kind models.EntityKind, docs []bson.M) (*models.UpsertResult, error) {
	m.upserted[kind] = append(m.upserted[kind], docs...)
	return &models.UpsertResult{Upserted: int64(len(docs))}, nil
}

func (m *mockCatalogRepo) SearchCatalog(ctx context.Context, kind models.EntityKind, pattern string, cityID *primitive.ObjectID, limit int64) ([]models.CatalogDoc, error) {
	if m.shouldFailOn == "SearchCatalog" {
		return nil, errors.New("search failed")
	}
	needle := strings.ToLower(pattern)
	docs := []models.CatalogDoc{}
	for _, doc := range m.docs[kind] {
		if cityID != nil && kind.CityScoped() && doc["city_id"] != *cityID {
			continue
		}
		title, _ := doc["title"].(string)
		if title == "" {
			title, _ = doc["name"].(string)
		}
		if strings.Contains(strings.ToLower(title), needle) {
			docs = append(docs, doc)
		}
		if int64(len(docs)) == limit {
			break
		}
	}
	return docs, nil
}

func (m *mockCatalogRepo) ListScreenings(ctx context.Context, movieID, cityID primitive.ObjectID) ([]*models.Screening, error) {
	out := []*models.Screening{}
	for _, s := range m.screenings {
		if s.MovieID == movieID && s.CityID == cityID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetVenueBySlug(ctx context.Context, slug string) (*models.Venue, error) {
	if venue, ok := m.venuesBySlug[slug]; ok {
		return venue, nil
	}
	return nil, fmt.Errorf("%w: venue %q", models.ErrNotFound, slug)
}

func (m *mockCatalogRepo) VenuesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Venue, error) {
	out := map[primitive.ObjectID]*models.Venue{}
	for _, id := range ids {
		if venue, ok := m.venues[id]; ok {
			out[id] = venue
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) CitiesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.City, error) {
	out := map[primitive.ObjectID]*models.City{}
	for _, city := range m.cities {
		for _, id := range ids {
			if city.ID == id {
				out[id] = city
			}
		}
	}
	return out, nil
}

type mockBookingRepo struct {
	bookings     map[primitive.ObjectID]*models.Booking
	insertOrder  []primitive.ObjectID
	shouldFailOn string
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: map[primitive.ObjectID]*models.Booking{}}
}

func (m *mockBookingRepo) InsertBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if m.shouldFailOn == "InsertBooking" {
		return nil, errors.New("insert failed")
	}
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	m.insertOrder = append(m.insertOrder, booking.ID)
	return booking, nil
}

func (m *mockBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if booking, ok := m.bookings[id]; ok {
		copied := *booking
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: booking %s", models.ErrNotFound, id.Hex())
}

func (m *mockBookingRepo) SetPaymentResult(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, paymentStatus models.PaymentStatus, paymentID, signature string) (*models.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", models.ErrNotFound, id.Hex())
	}
	// Only a pending booking transitions; re-applying the same terminal state
	// is a no-op and anything else leaves the stored state untouched.
	if booking.Status != models.BookingPending && booking.Status != status {
		copied := *booking
		return &copied, nil
	}
	booking.Status = status
	booking.PaymentStatus = paymentStatus
	booking.PaymentID = paymentID
	booking.PaymentSignature = signature
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	out := []*models.Booking{}
	// Newest first: iterate insertion order backwards.
	for i := len(m.insertOrder) - 1; i >= 0; i-- {
		booking := m.bookings[m.insertOrder[i]]
		if booking.UserID == userID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*models.User{}}
}

func (m *mockUserRepo) UpsertUser(ctx context.Context, clerkID string, fields bson.M) (*models.User, error) {
	user, ok := m.users[clerkID]
	if !ok {
		user = &models.User{ID: primitive.NewObjectID(), ClerkID: clerkID, Wishlist: []models.WishlistItem{}}
		m.users[clerkID] = user
	}
	if email, ok := fields["email"].(string); ok {
		user.Email = email
	}
	if name, ok := fields["name"].(string); ok {
		user.Name = name
	}
	if phone, ok := fields["phone"].(string); ok {
		user.Phone = phone
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	if user, ok := m.users[clerkID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: user %q", models.ErrNotFound, clerkID)
}

func (m *mockUserRepo) RemoveWishlistItem(ctx context.Context, clerkID string, item models.WishlistItem) (bool, error) {
	user, ok := m.users[clerkID]
	if !ok {
		return false, nil
	}
	for i, existing := range user.Wishlist {
		if existing == item {
			user.Wishlist = append(user.Wishlist[:i], user.Wishlist[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) AddWishlistItem(ctx context.Context, clerkID string, item models.WishlistItem) (*models.User, error) {
	user, ok := m.users[clerkID]
	if !ok {
		user = &models.User{
			ID:      primitive.NewObjectID(),
			ClerkID: clerkID,
			Email:   clerkID + "@placeholder.local",
		}
		m.users[clerkID] = user
	}
	present := false
	for _, existing := range user.Wishlist {
		if existing == item {
			present = true
			break
		}
	}
	if !present {
		user.Wishlist = append(user.Wishlist, item)
	}
	copied := *user
	return &copied, nil
}

type mockGateway struct {
	secret       string
	orders       int
	lastAmount   int64
	lastCurrency string
	lastNotes    map[string]string
	shouldFail   bool
}

func (m *mockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*payment.Order, error) {
	if m.shouldFail {
		return nil, errors.New("gateway unreachable")
	}
	m.orders++
	m.lastAmount = amountMinor
	m.lastCurrency = currency
	m.lastNotes = notes
	return &payment.Order{
		ID:       fmt.Sprintf("order_mock_%d", m.orders),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.ComputeSignature(orderID, paymentID, m.secret) == signature
}
