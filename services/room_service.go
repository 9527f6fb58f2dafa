package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotel-booking/availability"
	"hotel-booking/models"
	"hotel-booking/repository"
)

// RoomQuery filters ListAvailable. Nil fields are not filtered on.
type RoomQuery struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	MaxPrice *int64

	// IncludeDeleted makes cancelled bookings block rooms too.
	IncludeDeleted bool
}

// RoomUpdate changes a room's price and/or number. Nil fields stay as they are.
type RoomUpdate struct {
	Price      *int64
	RoomNumber *int
}

// RoomService answers which rooms can be booked and for how much.
type RoomService struct {
	store repository.Store
	cfg   Config
	log   *zap.Logger
}

func NewRoomService(store repository.Store, cfg *Config, log *zap.Logger) *RoomService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomService{store: store, cfg: cfg.withDefaults(), log: log}
}

// Calendar is the calendar the service normalizes dates with.
func (s *RoomService) Calendar() availability.Calendar {
	return s.cfg.Calendar
}

// ListAvailable returns every room that passes the price filter and, when both
// dates are given, has no current booking overlapping them. Rooms keep the
// order the store returns them in.
func (s *RoomService) ListAvailable(ctx context.Context, q RoomQuery) ([]models.Room, error) {
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		return nil, ErrInvalidPrice
	}
	candidate := s.cfg.Calendar.Interval(q.CheckIn, q.CheckOut)
	if candidate.Complete() && candidate.CheckOut.Day <= candidate.CheckIn.Day {
		return nil, ErrInvalidDateRange
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	rooms, err := s.store.Rooms().FindAll(ctx, repository.RoomFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	// Only a complete interval is checked against bookings.
	var taken map[string][]availability.Interval
	if candidate.Complete() {
		bookings, err := s.store.Bookings().FindCurrent(ctx, repository.BookingScope{
			EndsOnOrAfter:  s.cfg.today(),
			IncludeDeleted: q.IncludeDeleted,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		taken = make(map[string][]availability.Interval, len(bookings))
		for _, b := range bookings {
			taken[b.RoomID] = append(taken[b.RoomID], s.cfg.Calendar.Span(b.CheckIn, b.CheckOut))
		}
	}

	out := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if q.MaxPrice != nil && room.Price > *q.MaxPrice {
			continue
		}
		if overlapsAny(candidate, taken[room.ID]) {
			continue
		}
		out = append(out, room)
	}
	return out, nil
}

// IsAvailable reports whether no current booking of roomID overlaps the stay.
func (s *RoomService) IsAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if roomID == "" {
		return false, ErrInvalidRoomID
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		return false, ErrMissingDates
	}
	candidate := s.cfg.Calendar.Span(checkIn, checkOut)
	if candidate.CheckOut.Day <= candidate.CheckIn.Day {
		return false, ErrInvalidDateRange
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.Rooms().FindByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrRoomNotFound
		}
		return false, fmt.Errorf("failed to load room: %w", err)
	}

	bookings, err := s.store.Bookings().FindCurrent(ctx, repository.BookingScope{
		EndsOnOrAfter: s.cfg.today(),
		RoomID:        roomID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to load bookings: %w", err)
	}
	return !overlapsAny(candidate, spans(s.cfg.Calendar, bookings)), nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if id == "" {
		return nil, ErrInvalidRoomID
	}
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	room, err := s.store.Rooms().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	return room, nil
}

// UpdateRoom changes price and number under the room's lock, so it never
// interleaves with a booking being priced for the same room.
func (s *RoomService) UpdateRoom(ctx context.Context, id string, upd RoomUpdate) (*models.Room, error) {
	if id == "" {
		return nil, ErrInvalidRoomID
	}
	if upd.Price != nil && *upd.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		room, err := tx.Rooms().LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}
		if upd.Price != nil {
			room.Price = *upd.Price
		}
		if upd.RoomNumber != nil {
			room.RoomNumber = *upd.RoomNumber
		}
		if err := tx.Rooms().Update(ctx, room); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("room updated", zap.String("room_id", id))
	return s.GetRoom(ctx, id)
}

// Quote is what a stay in room costs. Without both dates it quotes one night.
func (s *RoomService) Quote(room models.Room, checkIn, checkOut *time.Time) int64 {
	if checkIn == nil || checkOut == nil {
		return room.Price
	}
	return s.cfg.Calendar.Cost(room.Price, *checkIn, *checkOut)
}

// Paginate cuts one page out of rooms. Offset counts rooms, not pages.
func Paginate(rooms []models.Room, limit, offset int) []models.Room {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rooms) {
		return []models.Room{}
	}
	rooms = rooms[offset:]
	if limit > 0 && limit < len(rooms) {
		rooms = rooms[:limit]
	}
	return rooms
}

func spans(cal availability.Calendar, bookings []models.Booking) []availability.Interval {
	out := make([]availability.Interval, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, cal.Span(b.CheckIn, b.CheckOut))
	}
	return out
}

func overlapsAny(candidate availability.Interval, existing []availability.Interval) bool {
	if !candidate.Complete() {
		return false
	}
	for _, e := range existing {
		if availability.Overlaps(candidate, e) {
			return true
		}
	}
	return false
}
