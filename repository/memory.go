package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel-booking/models"
)

// MemoryStore keeps everything in process memory. A transaction holds the
// store exclusively for its whole run and rolls back by restoring a snapshot.
// Calls made outside a transaction wait for it to finish, so they neither see
// its uncommitted writes nor get undone by its rollback.
type MemoryStore struct {
	state  *memoryState
	nested bool
}

type memoryState struct {
	txMu sync.RWMutex
	mu   sync.RWMutex
	data *memoryData
}

// memoryConn is how repositories reach the state: inside a transaction the
// caller already owns txMu.
type memoryConn struct {
	st   *memoryState
	inTx bool
}

type memoryData struct {
	hotels   []models.Hotel
	rooms    []models.Room
	bookings []models.Booking
	users    []models.User
	sessions map[string]models.Session
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		hotels:   append([]models.Hotel(nil), d.hotels...),
		rooms:    append([]models.Room(nil), d.rooms...),
		bookings: append([]models.Booking(nil), d.bookings...),
		users:    append([]models.User(nil), d.users...),
		sessions: make(map[string]models.Session, len(d.sessions)),
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			data: &memoryData{sessions: map[string]models.Session{}},
		},
	}
}

func (s *MemoryStore) Hotels() HotelRepository     { return memoryHotelRepository{s.conn()} }
func (s *MemoryStore) Rooms() RoomRepository       { return memoryRoomRepository{s.conn()} }
func (s *MemoryStore) Bookings() BookingRepository { return memoryBookingRepository{s.conn()} }
func (s *MemoryStore) Users() UserRepository       { return memoryUserRepository{s.conn()} }
func (s *MemoryStore) Sessions() SessionRepository { return memorySessionRepository{s.conn()} }

func (s *MemoryStore) conn() memoryConn {
	return memoryConn{st: s.state, inTx: s.nested}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.nested {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.txMu.Lock()
	defer s.state.txMu.Unlock()

	s.state.mu.RLock()
	snapshot := s.state.data.clone()
	s.state.mu.RUnlock()

	if err := fn(&MemoryStore{state: s.state, nested: true}); err != nil {
		s.state.mu.Lock()
		s.state.data = snapshot
		s.state.mu.Unlock()
		return err
	}
	return nil
}

func (c memoryConn) read(ctx context.Context, fn func(d *memoryData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.inTx {
		c.st.txMu.RLock()
		defer c.st.txMu.RUnlock()
	}
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	return fn(c.st.data)
}

func (c memoryConn) write(ctx context.Context, fn func(d *memoryData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.inTx {
		c.st.txMu.Lock()
		defer c.st.txMu.Unlock()
	}
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return fn(c.st.data)
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (d *memoryData) hotel(id string) (models.Hotel, bool) {
	for _, h := range d.hotels {
		if h.ID == id {
			return h, true
		}
	}
	return models.Hotel{}, false
}

func (d *memoryData) room(id string) (int, bool) {
	for i, r := range d.rooms {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (d *memoryData) booking(id string) (int, bool) {
	for i, b := range d.bookings {
		if b.ID == id {
			return i, true
		}
	}
	return -1, false
}

// withRoom returns r with its hotel attached, as Preload("Hotel") would.
func (d *memoryData) withRoom(r models.Room) models.Room {
	if h, ok := d.hotel(r.HotelID); ok {
		r.Hotel = h
	}
	return r
}

func (d *memoryData) withRelations(b models.Booking) models.Booking {
	if i, ok := d.room(b.RoomID); ok {
		room := d.rooms[i]
		b.Room = &room
	}
	if h, ok := d.hotel(b.HotelID); ok {
		b.Hotel = &h
	}
	return b
}

// ---------------------------
// Hotels
// ---------------------------

type memoryHotelRepository struct{ st memoryConn }

func (r memoryHotelRepository) FindAll(ctx context.Context) ([]models.Hotel, error) {
	var out []models.Hotel
	err := r.st.read(ctx, func(d *memoryData) error {
		out = append([]models.Hotel{}, d.hotels...)
		return nil
	})
	return out, err
}

func (r memoryHotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	return r.st.write(ctx, func(d *memoryData) error {
		if hotel.ID == "" {
			hotel.ID = uuid.NewString()
		}
		if _, ok := d.hotel(hotel.ID); ok {
			return fmt.Errorf("%w: hotel %s", ErrDuplicate, hotel.ID)
		}
		stamp(&hotel.CreatedAt, &hotel.UpdatedAt)
		h := *hotel
		h.Rooms = nil
		d.hotels = append(d.hotels, h)
		return nil
	})
}

func (r memoryHotelRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.st.read(ctx, func(d *memoryData) error {
		n = int64(len(d.hotels))
		return nil
	})
	return n, err
}

// ---------------------------
// Rooms
// ---------------------------

type memoryRoomRepository struct{ st memoryConn }

func (r memoryRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var out *models.Room
	err := r.st.read(ctx, func(d *memoryData) error {
		i, ok := d.room(id)
		if !ok {
			return ErrNotFound
		}
		room := d.withRoom(d.rooms[i])
		out = &room
		return nil
	})
	return out, err
}

func (r memoryRoomRepository) FindAll(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	var out []models.Room
	err := r.st.read(ctx, func(d *memoryData) error {
		out = make([]models.Room, 0, len(d.rooms))
		for _, room := range d.rooms {
			if filter.HotelID != "" && room.HotelID != filter.HotelID {
				continue
			}
			out = append(out, d.withRoom(room))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

// LockByID needs no lock of its own: the transaction already holds the store.
func (r memoryRoomRepository) LockByID(ctx context.Context, id string) (*models.Room, error) {
	return r.FindByID(ctx, id)
}

func (r memoryRoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.st.write(ctx, func(d *memoryData) error {
		if _, ok := d.hotel(room.HotelID); !ok {
			return fmt.Errorf("%w: hotel %s", ErrReferentialIntegrity, room.HotelID)
		}
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		if _, ok := d.room(room.ID); ok {
			return fmt.Errorf("%w: room %s", ErrDuplicate, room.ID)
		}
		stamp(&room.CreatedAt, &room.UpdatedAt)
		rm := *room
		rm.Hotel = models.Hotel{}
		d.rooms = append(d.rooms, rm)
		return nil
	})
}

func (r memoryRoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.st.write(ctx, func(d *memoryData) error {
		i, ok := d.room(room.ID)
		if !ok {
			return ErrNotFound
		}
		d.rooms[i].RoomNumber = room.RoomNumber
		d.rooms[i].Price = room.Price
		d.rooms[i].UpdatedAt = time.Now()
		return nil
	})
}

// ---------------------------
// Bookings
// ---------------------------

type memoryBookingRepository struct{ st memoryConn }

func (r memoryBookingRepository) FindCurrent(ctx context.Context, scope BookingScope) ([]models.Booking, error) {
	var out []models.Booking
	err := r.st.read(ctx, func(d *memoryData) error {
		out = make([]models.Booking, 0)
		for _, b := range d.bookings {
			checkIn, checkOut := time.Time(b.CheckInDate), time.Time(b.CheckOutDate)
			if b.IsDeleted && !scope.IncludeDeleted {
				continue
			}
			if !scope.EndsOnOrAfter.IsZero() && checkOut.Before(scope.EndsOnOrAfter) {
				continue
			}
			if scope.RoomID != "" && b.RoomID != scope.RoomID {
				continue
			}
			if w := scope.Touching; w != nil && (checkIn.After(w.To) || checkOut.Before(w.From)) {
				continue
			}
			out = append(out, b)
		}
		return nil
	})
	return out, err
}

func (r memoryBookingRepository) FindAllByUser(ctx context.Context, userID string, page Page) ([]models.Booking, error) {
	var out []models.Booking
	err := r.st.read(ctx, func(d *memoryData) error {
		out = make([]models.Booking, 0)
		for _, b := range d.bookings {
			if b.UserID != userID || (b.IsDeleted && !page.IncludeDeleted) {
				continue
			}
			out = append(out, d.withRelations(b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, page.Limit, page.Offset), nil
}

func (r memoryBookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var out *models.Booking
	err := r.st.read(ctx, func(d *memoryData) error {
		i, ok := d.booking(id)
		if !ok {
			return ErrNotFound
		}
		b := d.withRelations(d.bookings[i])
		out = &b
		return nil
	})
	return out, err
}

func (r memoryBookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	return r.st.write(ctx, func(d *memoryData) error {
		if _, ok := d.room(booking.RoomID); !ok {
			return fmt.Errorf("%w: room %s", ErrReferentialIntegrity, booking.RoomID)
		}
		if booking.ID == "" {
			booking.ID = uuid.NewString()
		}
		if _, ok := d.booking(booking.ID); ok {
			return fmt.Errorf("%w: booking %s", ErrDuplicate, booking.ID)
		}
		stamp(&booking.CreatedAt, &booking.UpdatedAt)
		b := *booking
		b.Room, b.Hotel, b.User = nil, nil, nil
		d.bookings = append(d.bookings, b)
		return nil
	})
}

func (r memoryBookingRepository) SoftDelete(ctx context.Context, id string) error {
	return r.st.write(ctx, func(d *memoryData) error {
		i, ok := d.booking(id)
		if !ok {
			return ErrNotFound
		}
		d.bookings[i].IsDeleted = true
		d.bookings[i].UpdatedAt = time.Now()
		return nil
	})
}

// ---------------------------
// Users & sessions
// ---------------------------

type memoryUserRepository struct{ st memoryConn }

func (r memoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.st.read(ctx, func(d *memoryData) error {
		for _, u := range d.users {
			if u.ID == id {
				user := u
				out = &user
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r memoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.st.read(ctx, func(d *memoryData) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				user := u
				out = &user
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.st.write(ctx, func(d *memoryData) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, user.Email) || (user.ID != "" && u.ID == user.ID) {
				return fmt.Errorf("%w: user %s", ErrDuplicate, user.Email)
			}
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		stamp(&user.CreatedAt, &user.UpdatedAt)
		d.users = append(d.users, *user)
		return nil
	})
}

type memorySessionRepository struct{ st memoryConn }

func (r memorySessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var out *models.Session
	err := r.st.read(ctx, func(d *memoryData) error {
		s, ok := d.sessions[id]
		if !ok {
			return ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r memorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.st.write(ctx, func(d *memoryData) error {
		if _, ok := d.sessions[session.ID]; ok {
			return fmt.Errorf("%w: session", ErrDuplicate)
		}
		stamp(&session.CreatedAt, &session.UpdatedAt)
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r memorySessionRepository) Delete(ctx context.Context, id string) error {
	return r.st.write(ctx, func(d *memoryData) error {
		delete(d.sessions, id)
		return nil
	})
}
