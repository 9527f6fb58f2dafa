package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"hotel-booking/availability"
	"hotel-booking/models"
	"hotel-booking/repository"
)

type CreateBookingInput struct {
	UserID   string
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
}

// BookingListQuery pages through a user's bookings. Zero Limit means all.
type BookingListQuery struct {
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// BookingService creates and cancels bookings.
type BookingService struct {
	store repository.Store
	cfg   Config
	log   *zap.Logger
}

func NewBookingService(store repository.Store, cfg *Config, log *zap.Logger) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{store: store, cfg: cfg.withDefaults(), log: log}
}

// CreateBooking books a room for a stay. The room row is locked for the
// length of the transaction, and the room's bookings are read and checked
// under that lock, so two overlapping requests for one room cannot both win.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if in.RoomID == "" {
		return nil, ErrInvalidRoomID
	}
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return nil, ErrMissingDates
	}

	cal := s.cfg.Calendar
	stay := cal.Span(in.CheckIn, in.CheckOut)
	today := cal.DayOf(s.cfg.Now())
	if stay.CheckIn.Day < today {
		return nil, ErrDateInPast
	}
	if stay.CheckOut.Day <= stay.CheckIn.Day {
		return nil, ErrInvalidDateRange
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	var booking models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		room, err := tx.Rooms().LockByID(ctx, in.RoomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		existing, err := tx.Bookings().FindCurrent(ctx, repository.BookingScope{
			EndsOnOrAfter: cal.Time(today),
			RoomID:        room.ID,
			Touching:      &repository.Window{From: cal.StartOf(in.CheckIn), To: cal.StartOf(in.CheckOut)},
		})
		if err != nil {
			return fmt.Errorf("failed to load bookings: %w", err)
		}
		for _, b := range existing {
			if availability.Overlaps(stay, cal.Span(b.CheckIn, b.CheckOut)) {
				return ErrRoomUnavailable
			}
		}

		booking = models.Booking{
			RoomID:       room.ID,
			HotelID:      room.HotelID,
			UserID:       in.UserID,
			CheckIn:      in.CheckIn,
			CheckOut:     in.CheckOut,
			CheckInDate:  datatypes.Date(cal.StartOf(in.CheckIn)),
			CheckOutDate: datatypes.Date(cal.StartOf(in.CheckOut)),
			Cost:         cal.Cost(room.Price, in.CheckIn, in.CheckOut),
		}
		if err := tx.Bookings().Insert(ctx, &booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if IsConflictError(err) {
			s.log.Info("booking rejected",
				zap.String("room_id", in.RoomID),
				zap.Time("check_in", in.CheckIn),
				zap.Time("check_out", in.CheckOut),
			)
		}
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", booking.RoomID),
		zap.String("user_id", booking.UserID),
		zap.Int64("cost", booking.Cost),
	)
	return &booking, nil
}

// CancelBooking soft-deletes one of the user's bookings. Cancelling a booking
// twice is not an error.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		booking, err := s.owned(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}
		if booking.IsDeleted {
			return nil
		}
		if err := tx.Bookings().SoftDelete(ctx, booking.ID); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		s.log.Info("booking cancelled", zap.String("booking_id", booking.ID), zap.String("user_id", userID))
		return nil
	})
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string, q BookingListQuery) ([]models.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, ErrInvalidPage
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	bookings, err := s.store.Bookings().FindAllByUser(ctx, userID, repository.Page{
		Limit:          q.Limit,
		Offset:         q.Offset,
		IncludeDeleted: q.IncludeDeleted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	return s.owned(ctx, s.store, userID, bookingID)
}

// owned loads a booking and hides it from everyone but its owner.
func (s *BookingService) owned(ctx context.Context, store repository.Store, userID, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, ErrBookingNotFound
	}
	booking, err := store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}
