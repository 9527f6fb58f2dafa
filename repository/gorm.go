package repository

import (
	"context"
	"errors"
	"fmt"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking/models"
)

// GormStore is a Store on top of *gorm.DB (MySQL in production).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Hotels() HotelRepository     { return gormHotelRepository{db: s.DB} }
func (s *GormStore) Rooms() RoomRepository       { return gormRoomRepository{db: s.DB} }
func (s *GormStore) Bookings() BookingRepository { return gormBookingRepository{db: s.DB} }
func (s *GormStore) Users() UserRepository       { return gormUserRepository{db: s.DB} }
func (s *GormStore) Sessions() SessionRepository { return gormSessionRepository{db: s.DB} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		switch merr.Number {
		case 1451, 1452:
			return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
		case 1062:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}

// ---------------------------
// Hotels
// ---------------------------

type gormHotelRepository struct {
	db *gorm.DB
}

func (r gormHotelRepository) FindAll(ctx context.Context) ([]models.Hotel, error) {
	var hotels []models.Hotel
	if err := r.db.WithContext(ctx).Order("name, id").Find(&hotels).Error; err != nil {
		return nil, translateError(err)
	}
	return hotels, nil
}

func (r gormHotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	return translateError(r.db.WithContext(ctx).Create(hotel).Error)
}

func (r gormHotelRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Hotel{}).Count(&n).Error
	return n, translateError(err)
}

// ---------------------------
// Rooms
// ---------------------------

type gormRoomRepository struct {
	db *gorm.DB
}

func (r gormRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Preload("Hotel").First(&room, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r gormRoomRepository) FindAll(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	q := r.db.WithContext(ctx).Preload("Hotel").Order("hotel_id, room_number, id")
	if filter.HotelID != "" {
		q = q.Where("hotel_id = ?", filter.HotelID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, translateError(err)
	}
	return rooms, nil
}

func (r gormRoomRepository) LockByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	// No Preload here: the lock must only cover the room row.
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &room, nil
}

func (r gormRoomRepository) Create(ctx context.Context, room *models.Room) error {
	return translateError(r.db.WithContext(ctx).Omit("Hotel").Create(room).Error)
}

func (r gormRoomRepository) Update(ctx context.Context, room *models.Room) error {
	res := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", room.ID).
		Updates(map[string]interface{}{
			"room_number": room.RoomNumber,
			"price":       room.Price,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	return nil
}

// ---------------------------
// Bookings
// ---------------------------

type gormBookingRepository struct {
	db *gorm.DB
}

func (r gormBookingRepository) FindCurrent(ctx context.Context, scope BookingScope) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if !scope.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if !scope.EndsOnOrAfter.IsZero() {
		q = q.Where("check_out_date >= ?", datatypes.Date(scope.EndsOnOrAfter))
	}
	if scope.RoomID != "" {
		q = q.Where("room_id = ?", scope.RoomID)
	}
	if w := scope.Touching; w != nil {
		// Inclusive day ranges intersect iff each starts before the other ends.
		q = q.Where("check_in_date <= ? AND check_out_date >= ?", datatypes.Date(w.To), datatypes.Date(w.From))
	}

	var bookings []models.Booking
	if err := q.Order("check_in_date, id").Find(&bookings).Error; err != nil {
		return nil, translateError(err)
	}
	return bookings, nil
}

func (r gormBookingRepository) FindAllByUser(ctx context.Context, userID string, page Page) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Hotel").
		Where("user_id = ?", userID).
		Order("check_in, id")
	if !page.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, translateError(err)
	}
	return bookings, nil
}

func (r gormBookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Room").Preload("Hotel").First(&booking, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &booking, nil
}

func (r gormBookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error)
}

func (r gormBookingRepository) SoftDelete(ctx context.Context, id string) error {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Select("id").First(&booking, "id = ?", id).Error; err != nil {
		return translateError(err)
	}
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
	return translateError(err)
}

// ---------------------------
// Users & sessions
// ---------------------------

type gormUserRepository struct {
	db *gorm.DB
}

func (r gormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r gormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

type gormSessionRepository struct {
	db *gorm.DB
}

func (r gormSessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

func (r gormSessionRepository) Create(ctx context.Context, session *models.Session) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(session).Error)
}

func (r gormSessionRepository) Delete(ctx context.Context, id string) error {
	return translateError(r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error)
}
