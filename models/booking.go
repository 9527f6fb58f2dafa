package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking is one stay of one user in one room. Cancelling sets IsDeleted and
// keeps the row for history.
type Booking struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomID  string `gorm:"column:room_id;type:varchar(36);not null;index:idx_bookings_room_dates,priority:1" json:"roomId"`
	HotelID string `gorm:"column:hotel_id;type:varchar(36);not null;index" json:"hotelId"`
	UserID  string `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`

	CheckIn  time.Time `gorm:"column:check_in;not null" json:"checkIn"`
	CheckOut time.Time `gorm:"column:check_out;not null" json:"checkOut"`

	// Calendar days of CheckIn/CheckOut, used for range queries.
	CheckInDate  datatypes.Date `gorm:"column:check_in_date;not null;index:idx_bookings_room_dates,priority:2" json:"-"`
	CheckOutDate datatypes.Date `gorm:"column:check_out_date;not null;index:idx_bookings_room_dates,priority:3" json:"-"`

	Cost      int64     `gorm:"column:cost;not null" json:"cost"`
	IsDeleted bool      `gorm:"column:is_deleted;not null;default:false;index" json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Room  *Room  `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Hotel *Hotel `gorm:"foreignKey:HotelID;references:ID" json:"hotel,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
