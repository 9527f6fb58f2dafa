package repository

import (
	"context"
	"errors"
	"time"

	"hotel-booking/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrReferentialIntegrity is returned when a write references a row that does not exist.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

// RoomFilter narrows FindAll. Zero Limit means no limit.
type RoomFilter struct {
	HotelID string
	Limit   int
	Offset  int
}

// Window is an inclusive range of calendar days, given as midnights.
type Window struct {
	From time.Time
	To   time.Time
}

// BookingScope selects current bookings: not cancelled (unless IncludeDeleted)
// and not yet over on EndsOnOrAfter.
type BookingScope struct {
	EndsOnOrAfter  time.Time
	RoomID         string
	IncludeDeleted bool

	// Touching keeps only bookings whose days intersect the window.
	Touching *Window
}

// Page is a limit/offset pair. Zero Limit means no limit.
type Page struct {
	Limit          int
	Offset         int
	IncludeDeleted bool
}

type HotelRepository interface {
	FindAll(ctx context.Context) ([]models.Hotel, error)
	Create(ctx context.Context, hotel *models.Hotel) error
	Count(ctx context.Context) (int64, error)
}

type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	FindAll(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	// LockByID loads a room and holds it until the surrounding transaction
	// ends, so that writers to the same room queue up behind each other.
	LockByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
}

type BookingRepository interface {
	FindCurrent(ctx context.Context, scope BookingScope) ([]models.Booking, error)
	FindAllByUser(ctx context.Context, userID string, page Page) ([]models.Booking, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) error
	SoftDelete(ctx context.Context, id string) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories. Repositories obtained from the Store passed
// to a Transaction callback run inside that transaction.
type Store interface {
	Hotels() HotelRepository
	Rooms() RoomRepository
	Bookings() BookingRepository
	Users() UserRepository
	Sessions() SessionRepository

	// Transaction runs fn atomically: if fn returns an error nothing it wrote
	// is kept.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
