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

func (mdb *MongodbRepo) InsertBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	now := time.Now()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := mdb.collection(BookingColName).InsertOne(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var booking Booking
	err := mdb.collection(BookingColName).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

// paymentTransitionFilter matches a booking still pending or already in the
// target state, so the lifecycle transition applies at most once and
// re-applying the same terminal state stays idempotent.
func paymentTransitionFilter(id primitive.ObjectID, status BookingStatus) bson.M {
	return bson.M{
		"_id":    id,
		"status": bson.M{"$in": []BookingStatus{BookingPending, status}},
	}
}

func (mdb *MongodbRepo) SetPaymentResult(ctx context.Context, id primitive.ObjectID, status BookingStatus, paymentStatus PaymentStatus, paymentID, signature string) (*Booking, error) {
	update := bson.M{
		"$set": bson.M{
			"status":            status,
			"payment_status":    paymentStatus,
			"payment_id":        paymentID,
			"payment_signature": signature,
			"updated_at":        time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err := mdb.collection(BookingColName).FindOneAndUpdate(ctx, paymentTransitionFilter(id, status), update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Unknown booking, or one already settled in a different terminal
			// state. The stored state wins over a late callback.
			return mdb.GetBookingByID(ctx, id)
		}
		return nil, fmt.Errorf("error updating booking payment result: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := mdb.collection(BookingColName).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %v", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %v", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return bookings, nil
}
