package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking/models"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.addUser(t, "guest@example.com", "secret")

	session, got, err := f.users.Login(ctx, "guest@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Len(t, session.ID, 64)
	assert.Equal(t, testNow.Add(time.Hour), session.ExpiresAt)

	authed, err := f.users.Authenticate(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "guest@example.com", "secret")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "guest@example.com", "nope"},
		{"unknown email", "ghost@example.com", "secret"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.users.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.True(t, IsAuthError(err))
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "guest@example.com", "secret")

	session, _, err := f.users.Login(ctx, "guest@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, f.users.Logout(ctx, session.ID))
	_, err = f.users.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, f.users.Logout(ctx, "unknown"))
}

func TestAuthenticate_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.addUser(t, "guest@example.com", "secret")

	expired := models.Session{ID: "stale", UserID: user.ID, ExpiresAt: testNow}
	require.NoError(t, f.store.Sessions().Create(ctx, &expired))

	_, err := f.users.Authenticate(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired row is gone afterwards.
	_, err = f.users.Authenticate(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.users.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "new@example.com", "pa55word")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word", user.Password)

	_, got, err := f.users.Login(ctx, "new@example.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.users.Register(ctx, "new@example.com", "again")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestHotelService_List(t *testing.T) {
	f := newFixture(t)

	hotels, err := NewHotelService(f.store, testConfig()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, "Riverside", hotels[0].Name)
}
