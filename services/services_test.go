package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hotel-booking/availability"
	"hotel-booking/models"
	"hotel-booking/repository"
)

// testNow is the clock every service test runs at.
var testNow = time.Date(2022, 12, 31, 9, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *Config {
	return &Config{
		Calendar:     availability.NewCalendar(time.UTC),
		Now:          func() time.Time { return testNow },
		QueryTimeout: time.Second,
		SessionTTL:   time.Hour,
	}
}

type fixture struct {
	store    *repository.MemoryStore
	rooms    *RoomService
	bookings *BookingService
	users    *UserService
	hotel    models.Hotel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	hotel := models.Hotel{Name: "Riverside", City: "Bangkok", Address: "1 Charoen Krung"}
	require.NoError(t, store.Hotels().Create(context.Background(), &hotel))

	cfg := testConfig()
	return &fixture{
		store:    store,
		rooms:    NewRoomService(store, cfg, nil),
		bookings: NewBookingService(store, cfg, nil),
		users:    NewUserService(store, cfg, nil),
		hotel:    hotel,
	}
}

func (f *fixture) addRoom(t *testing.T, number int, price int64) models.Room {
	t.Helper()
	room := models.Room{HotelID: f.hotel.ID, RoomNumber: number, Price: price}
	require.NoError(t, f.store.Rooms().Create(context.Background(), &room))
	return room
}

func (f *fixture) addUser(t *testing.T, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Email: email, Password: string(hash)}
	require.NoError(t, f.store.Users().Create(context.Background(), &user))
	return user
}

func (f *fixture) book(t *testing.T, userID string, room models.Room, in, out time.Time) *models.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), CreateBookingInput{
		UserID: userID, RoomID: room.ID, CheckIn: in, CheckOut: out,
	})
	require.NoError(t, err)
	return b
}

func roomIDs(rooms []models.Room) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.ID)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
