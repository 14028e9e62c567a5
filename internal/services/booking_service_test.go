package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/cityvibe/cityvibe/internal/payment"
	"github.com/cityvibe/cityvibe/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture() (*services.BookingService, *mockBookingRepo, *mockCatalogRepo, *mockGateway) {
	bookings := newMockBookingRepo()
	catalog := newMockCatalogRepo()
	gateway := &mockGateway{secret: "test_secret"}
	return services.NewBookingService(bookings, catalog, gateway), bookings, catalog, gateway
}

func TestCreateBookingRestaurant(t *testing.T) {
	svc, bookings, catalog, gateway := newBookingFixture()
	restaurantID := catalog.addDoc(models.KindRestaurant, models.CatalogDoc{
		"name": "Pind Balluchi", "slug": "pind-balluchi", "price": int64(100),
	})

	// 3 guests at a 100-per-person reservation fee.
	result, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    restaurantID.Hex(),
		EntityType:  "Restaurant",
		Date:        "2026-09-12",
		Quantity:    3,
		TotalAmount: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, result.Booking.Status)
	assert.Equal(t, models.PaymentPending, result.Booking.PaymentStatus)
	assert.NotEmpty(t, result.Booking.PaymentOrderID)
	assert.Equal(t, result.Order.ID, result.Booking.PaymentOrderID)
	assert.Equal(t, int64(300), result.Booking.TotalAmount)

	// The gateway sees minor units.
	assert.Equal(t, int64(30000), gateway.lastAmount)
	assert.Equal(t, "INR", gateway.lastCurrency)
	assert.Equal(t, "Restaurant", gateway.lastNotes["entity_type"])
	assert.Equal(t, "user_2abc", gateway.lastNotes["user_id"])
	assert.Len(t, bookings.bookings, 1)
}

func TestCreateBookingMovieSeats(t *testing.T) {
	svc, _, catalog, gateway := newBookingFixture()
	movieID := catalog.addDoc(models.KindMovie, models.CatalogDoc{
		"title": "Inception", "slug": "inception", "price": int64(150),
	})

	result, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    movieID.Hex(),
		EntityType:  "Movie",
		Seats:       []string{"F4", "F5"},
		TotalAmount: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"F4", "F5"}, result.Booking.Seats)
	assert.Equal(t, int64(30000), gateway.lastAmount)
}

func TestCreateBookingMovieWithoutSeats(t *testing.T) {
	svc, _, catalog, gateway := newBookingFixture()
	movieID := catalog.addDoc(models.KindMovie, models.CatalogDoc{
		"title": "Inception", "slug": "inception", "price": int64(150),
	})

	_, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    movieID.Hex(),
		EntityType:  "Movie",
		TotalAmount: 150,
	})
	assert.ErrorIs(t, err, models.ErrInvalid)
	assert.Zero(t, gateway.orders)
}

func TestCreateBookingAmountMismatch(t *testing.T) {
	svc, bookings, catalog, gateway := newBookingFixture()
	restaurantID := catalog.addDoc(models.KindRestaurant, models.CatalogDoc{
		"name": "Pind Balluchi", "slug": "pind-balluchi", "price": int64(100),
	})

	_, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    restaurantID.Hex(),
		EntityType:  "Restaurant",
		Quantity:    3,
		TotalAmount: 1, // forged
	})
	assert.ErrorIs(t, err, models.ErrInvalid)
	assert.Zero(t, gateway.orders)
	assert.Empty(t, bookings.bookings)
}

func TestCreateBookingUnknownEntity(t *testing.T) {
	svc, _, catalog, _ := newBookingFixture()
	ghostID := catalog.addDoc(models.KindEvent, models.CatalogDoc{"title": "gone", "price": int64(10)})

	_, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    ghostID.Hex(),
		EntityType:  "Movie", // wrong kind for this id
		Seats:       []string{"A1"},
		TotalAmount: 10,
	})
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestCreateBookingGatewayFailure(t *testing.T) {
	svc, bookings, catalog, gateway := newBookingFixture()
	gateway.shouldFail = true
	eventID := catalog.addDoc(models.KindEvent, models.CatalogDoc{
		"title": "Sunburn", "slug": "sunburn", "price": int64(2000),
	})

	_, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    eventID.Hex(),
		EntityType:  "Event",
		Quantity:    2,
		TotalAmount: 4000,
	})
	require.Error(t, err)
	// Order creation precedes persistence, so nothing is left behind.
	assert.Empty(t, bookings.bookings)
}

func createConfirmableBooking(t *testing.T, svc *services.BookingService, catalog *mockCatalogRepo) *models.Booking {
	t.Helper()
	eventID := catalog.addDoc(models.KindEvent, models.CatalogDoc{
		"title": "Sunburn", "slug": "sunburn", "price": int64(2000),
	})
	result, err := svc.Create(context.Background(), &services.CreateBookingRequest{
		UserID:      "user_2abc",
		Email:       "guest@example.com",
		EntityID:    eventID.Hex(),
		EntityType:  "Event",
		Quantity:    1,
		TotalAmount: 2000,
	})
	require.NoError(t, err)
	return result.Booking
}

func TestVerifyPaymentConfirms(t *testing.T) {
	svc, _, catalog, _ := newBookingFixture()
	booking := createConfirmableBooking(t, svc, catalog)

	req := &services.VerifyPaymentRequest{
		BookingID: booking.ID.Hex(),
		OrderID:   booking.PaymentOrderID,
		PaymentID: "pay_123",
		Signature: payment.ComputeSignature(booking.PaymentOrderID, "pay_123", "test_secret"),
	}
	result, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.BookingConfirmed, result.Booking.Status)
	assert.Equal(t, models.PaymentCompleted, result.Booking.PaymentStatus)
	assert.Equal(t, "pay_123", result.Booking.PaymentID)
	assert.Equal(t, req.Signature, result.Booking.PaymentSignature)

	// Verifying again with the same valid inputs is idempotent.
	again, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.Equal(t, models.BookingConfirmed, again.Booking.Status)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	svc, _, catalog, _ := newBookingFixture()
	booking := createConfirmableBooking(t, svc, catalog)

	result, err := svc.VerifyPayment(context.Background(), &services.VerifyPaymentRequest{
		BookingID: booking.ID.Hex(),
		OrderID:   booking.PaymentOrderID,
		PaymentID: "pay_123",
		Signature: "deadbeef",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, models.BookingFailed, result.Booking.Status)
	assert.Equal(t, models.PaymentFailed, result.Booking.PaymentStatus)
}

func TestVerifyPaymentLateBadSignatureKeepsConfirmed(t *testing.T) {
	svc, bookings, catalog, _ := newBookingFixture()
	booking := createConfirmableBooking(t, svc, catalog)

	confirmed, err := svc.VerifyPayment(context.Background(), &services.VerifyPaymentRequest{
		BookingID: booking.ID.Hex(),
		OrderID:   booking.PaymentOrderID,
		PaymentID: "pay_123",
		Signature: payment.ComputeSignature(booking.PaymentOrderID, "pay_123", "test_secret"),
	})
	require.NoError(t, err)
	require.True(t, confirmed.Success)

	// A late callback with a bad signature must not undo the confirmation.
	late, err := svc.VerifyPayment(context.Background(), &services.VerifyPaymentRequest{
		BookingID: booking.ID.Hex(),
		OrderID:   booking.PaymentOrderID,
		PaymentID: "pay_123",
		Signature: "deadbeef",
	})
	require.NoError(t, err)
	assert.False(t, late.Success)
	assert.Equal(t, models.BookingConfirmed, late.Booking.Status)

	stored, err := bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
	assert.Equal(t, models.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, "pay_123", stored.PaymentID)
}

func TestVerifyPaymentUnknownBooking(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.VerifyPayment(context.Background(), &services.VerifyPaymentRequest{
		BookingID: "64b000000000000000000000",
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "sig",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVerifyPaymentOrderMismatch(t *testing.T) {
	svc, bookings, catalog, _ := newBookingFixture()
	booking := createConfirmableBooking(t, svc, catalog)

	_, err := svc.VerifyPayment(context.Background(), &services.VerifyPaymentRequest{
		BookingID: booking.ID.Hex(),
		OrderID:   "order_of_someone_else",
		PaymentID: "pay_123",
		Signature: payment.ComputeSignature("order_of_someone_else", "pay_123", "test_secret"),
	})
	assert.ErrorIs(t, err, models.ErrInvalid)

	// No state change on a mismatched callback.
	stored, err := bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.Status)
}

func TestGetUserBookingsNewestFirstWithVenue(t *testing.T) {
	svc, _, catalog, _ := newBookingFixture()
	venue := catalog.addVenue("PVR Forum Mall", "pvr-forum-mall")
	eventID := catalog.addDoc(models.KindEvent, models.CatalogDoc{
		"title": "Sunburn", "slug": "sunburn", "price": int64(500),
	})

	for range 2 {
		_, err := svc.Create(context.Background(), &services.CreateBookingRequest{
			UserID:      "user_2abc",
			Email:       "guest@example.com",
			EntityID:    eventID.Hex(),
			EntityType:  "Event",
			VenueID:     venue.ID.Hex(),
			Quantity:    1,
			TotalAmount: 500,
		})
		require.NoError(t, err)
	}

	list, err := svc.GetUserBookings(context.Background(), "user_2abc")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, b := range list {
		require.NotNil(t, b.Venue)
		assert.Equal(t, "pvr-forum-mall", b.Venue.Slug)
	}
	// Newest first.
	assert.Equal(t, "order_mock_2", list[0].PaymentOrderID)
	assert.Equal(t, "order_mock_1", list[1].PaymentOrderID)

	_, err = svc.GetUserBookings(context.Background(), " ")
	assert.True(t, errors.Is(err, models.ErrInvalid))
}
