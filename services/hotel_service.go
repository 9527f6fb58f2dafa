package services

import (
	"context"
	"fmt"

	"hotel-booking/models"
	"hotel-booking/repository"
)

type HotelService struct {
	store repository.Store
	cfg   Config
}

func NewHotelService(store repository.Store, cfg *Config) *HotelService {
	return &HotelService{store: store, cfg: cfg.withDefaults()}
}

func (s *HotelService) List(ctx context.Context) ([]models.Hotel, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	hotels, err := s.store.Hotels().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}
	return hotels, nil
}
