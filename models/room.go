package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Room struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	HotelID string `gorm:"column:hotel_id;type:varchar(36);not null;index:idx_rooms_hotel_number" json:"hotelId"`

	// Unique within a hotel; the index backs lookups, uniqueness is not enforced here.
	RoomNumber int `gorm:"column:room_number;not null;index:idx_rooms_hotel_number" json:"roomNumber"`

	// Nightly price in minor currency units.
	Price int64 `gorm:"column:price;not null" json:"price"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Hotel Hotel `gorm:"foreignKey:HotelID;references:ID" json:"hotel"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
