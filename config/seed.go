package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hotel-booking/models"
	"hotel-booking/repository"
)

// Fixed ids of the demo data, so local clients can hard-code them.
const (
	DemoHotelID   = "3f5c7a1e-2b8d-4c6f-9e0a-1d2b3c4d5e6f"
	DemoRoomID    = "8ad380c7-9120-431c-9ed6-a0c24817503e"
	DemoUserID    = "0816592e-a179-43d5-9913-ab8dc0d6bf24"
	DemoUserEmail = "hello@test.hu"
)

// SeedDatabase inserts a demo hotel, its rooms and one user into an empty
// store. A store that already has hotels is left alone.
func SeedDatabase(ctx context.Context, store repository.Store, password string, log *zap.Logger) error {
	count, err := store.Hotels().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count hotels: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	return store.Transaction(ctx, func(tx repository.Store) error {
		hotel := models.Hotel{ID: DemoHotelID, Name: "Grand Danube", City: "Budapest", Address: "Széchenyi tér 1"}
		if err := tx.Hotels().Create(ctx, &hotel); err != nil {
			return fmt.Errorf("failed to seed hotel: %w", err)
		}

		rooms := []models.Room{
			{ID: DemoRoomID, HotelID: hotel.ID, RoomNumber: 101, Price: 5000},
			{HotelID: hotel.ID, RoomNumber: 102, Price: 7500},
			{HotelID: hotel.ID, RoomNumber: 201, Price: 12000},
		}
		for i := range rooms {
			if err := tx.Rooms().Create(ctx, &rooms[i]); err != nil {
				return fmt.Errorf("failed to seed room %d: %w", rooms[i].RoomNumber, err)
			}
		}

		user := models.User{ID: DemoUserID, Email: DemoUserEmail, Password: string(hash)}
		if err := tx.Users().Create(ctx, &user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		log.Info("database seeded", zap.Int("rooms", len(rooms)), zap.String("user", DemoUserEmail))
		return nil
	})
}
