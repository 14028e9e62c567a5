package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cityvibe/cityvibe/internal/models"
	"github.com/cityvibe/cityvibe/internal/payment"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const bookingCurrency = "INR"

type BookingService struct {
	bookingRepo models.BookingRepo
	catalogRepo models.CatalogRepo
	gateway     payment.Gateway
}

func NewBookingService(bookingRepo models.BookingRepo, catalogRepo models.CatalogRepo, gateway payment.Gateway) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		gateway:     gateway,
	}
}

type CreateBookingRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	EntityID   string   `json:"entity_id" validate:"required"`
	EntityType string   `json:"entity_type" validate:"required"`
	VenueID    string   `json:"venue_id"`
	Date       string   `json:"date"`
	Seats      []string `json:"seats"`
	Quantity   int      `json:"quantity"`
	// TotalAmount is what the client believes it owes, in major units. It is
	// checked against the catalog price, never trusted.
	TotalAmount int64 `json:"total_amount" validate:"required"`
}

type OrderInfo struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateBookingResult struct {
	Booking *models.Booking `json:"booking"`
	Order   OrderInfo       `json:"order"`
}

// Create validates the entity reference and the amount, opens a gateway order
// for the amount in minor units, and only then persists the booking in
// pending/pending. A gateway failure therefore leaves nothing behind.
func (bs *BookingService) Create(ctx context.Context, req *CreateBookingRequest) (*CreateBookingResult, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}
	kind, err := models.ParseBookableKind(req.EntityType)
	if err != nil {
		return nil, err
	}
	entityID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.EntityID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid entity id %q", models.ErrInvalid, req.EntityID)
	}

	entity, err := bs.catalogRepo.GetCatalogByID(ctx, kind, entityID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s with id %s", models.ErrInvalid, kind, entityID.Hex())
		}
		return nil, err
	}

	units, err := bookingUnits(kind, req)
	if err != nil {
		return nil, err
	}
	price, err := unitPrice(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", models.ErrInvalid, kind, entityID.Hex(), err)
	}
	expected := price * int64(units)
	if req.TotalAmount != expected {
		return nil, fmt.Errorf("%w: total_amount %d does not match %d (%d x %d)",
			models.ErrInvalid, req.TotalAmount, expected, price, units)
	}

	var venueID *primitive.ObjectID
	if strings.TrimSpace(req.VenueID) != "" {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.VenueID))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid venue id %q", models.ErrInvalid, req.VenueID)
		}
		venueID = &id
	}

	order, err := bs.gateway.CreateOrder(ctx, expected*100, bookingCurrency, uuid.NewString(), map[string]string{
		"user_id":     req.UserID,
		"entity_type": string(kind),
		"entity_id":   entityID.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	booking := &models.Booking{
		UserID:         req.UserID,
		Email:          req.Email,
		EntityID:       entityID,
		EntityType:     kind,
		VenueID:        venueID,
		Date:           req.Date,
		Seats:          req.Seats,
		Quantity:       req.Quantity,
		TotalAmount:    expected,
		Status:         models.BookingPending,
		PaymentOrderID: order.ID,
		PaymentStatus:  models.PaymentPending,
	}
	booking, err = bs.bookingRepo.InsertBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	return &CreateBookingResult{
		Booking: booking,
		Order: OrderInfo{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
	}, nil
}

type VerifyPaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyPaymentResult struct {
	Success bool            `json:"success"`
	Booking *models.Booking `json:"booking"`
}

// VerifyPayment applies the booking's single transition. The callback order id
// must match the one stored at creation; a mismatch changes nothing, since a
// signature valid for some other order proves nothing about this booking.
// A failed signature check is not an error: it moves a still-pending booking
// to failed/failed and reports success=false. A booking already settled keeps
// its state; the repo refuses conflicting transitions.
func (bs *BookingService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*VerifyPaymentResult, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}
	bookingID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.BookingID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking id %q", models.ErrInvalid, req.BookingID)
	}

	booking, err := bs.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentOrderID != req.OrderID {
		return nil, fmt.Errorf("%w: order %s does not belong to booking %s",
			models.ErrInvalid, req.OrderID, bookingID.Hex())
	}

	if bs.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		updated, err := bs.bookingRepo.SetPaymentResult(ctx, bookingID,
			models.BookingConfirmed, models.PaymentCompleted, req.PaymentID, req.Signature)
		if err != nil {
			return nil, err
		}
		return &VerifyPaymentResult{Success: true, Booking: updated}, nil
	}

	updated, err := bs.bookingRepo.SetPaymentResult(ctx, bookingID,
		models.BookingFailed, models.PaymentFailed, req.PaymentID, req.Signature)
	if err != nil {
		return nil, err
	}
	return &VerifyPaymentResult{Success: false, Booking: updated}, nil
}

// GetUserBookings returns all of a user's bookings, newest first, with the
// venue joined in.
func (bs *BookingService) GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", models.ErrInvalid)
	}

	bookings, err := bs.bookingRepo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	venueIDs := make([]primitive.ObjectID, 0, len(bookings))
	for _, b := range bookings {
		if b.VenueID != nil {
			venueIDs = append(venueIDs, *b.VenueID)
		}
	}
	venues, err := bs.catalogRepo.VenuesByIDs(ctx, venueIDs)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.VenueID != nil {
			b.Venue = venues[*b.VenueID]
		}
	}
	return bookings, nil
}

func bookingUnits(kind models.EntityKind, req *CreateBookingRequest) (int, error) {
	if kind == models.KindMovie {
		if len(req.Seats) == 0 {
			return 0, fmt.Errorf("%w: movie bookings need at least one seat", models.ErrInvalid)
		}
		return len(req.Seats), nil
	}
	if req.Quantity < 1 {
		return 0, fmt.Errorf("%w: quantity must be at least 1", models.ErrInvalid)
	}
	return req.Quantity, nil
}

// unitPrice reads the integer price a catalog document carries, tolerating the
// numeric types the bson decoder may produce.
func unitPrice(doc models.CatalogDoc) (int64, error) {
	switch v := doc["price"].(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, errors.New("entity has no price")
	default:
		return 0, fmt.Errorf("unsupported price type %T", v)
	}
}
