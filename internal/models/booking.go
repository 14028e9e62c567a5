package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingFailed    BookingStatus = "failed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

const BookingColName = "bookings"

// Booking is created in pending/pending the moment a user asks to book, before
// the payment actually completes, so a row exists even for abandoned checkouts.
// It transitions exactly once, on the payment callback.
type Booking struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     string              `bson:"user_id" json:"user_id"`
	Email      string              `bson:"email" json:"email"`
	EntityID   primitive.ObjectID  `bson:"entity_id" json:"entity_id"`
	EntityType EntityKind          `bson:"entity_type" json:"entity_type"`
	VenueID    *primitive.ObjectID `bson:"venue_id,omitempty" json:"venue_id,omitempty"`

	Date     string   `bson:"date,omitempty" json:"date,omitempty"`
	Seats    []string `bson:"seats,omitempty" json:"seats,omitempty"`
	Quantity int      `bson:"quantity,omitempty" json:"quantity,omitempty"`

	// TotalAmount is in major currency units; the gateway order carries paise.
	TotalAmount int64         `bson:"total_amount" json:"total_amount"`
	Status      BookingStatus `bson:"status" json:"status"`

	PaymentID        string        `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	PaymentOrderID   string        `bson:"payment_order_id" json:"payment_order_id"`
	PaymentSignature string        `bson:"payment_signature,omitempty" json:"payment_signature,omitempty"`
	PaymentStatus    PaymentStatus `bson:"payment_status" json:"payment_status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Populated on reads, never persisted.
	Venue *Venue `bson:"-" json:"venue,omitempty"`
}

type BookingRepo interface {
	InsertBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	// SetPaymentResult applies the single status transition and returns the
	// updated booking. Re-applying the same terminal state is harmless.
	SetPaymentResult(ctx context.Context, id primitive.ObjectID, status BookingStatus, paymentStatus PaymentStatus, paymentID, signature string) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error)
}
