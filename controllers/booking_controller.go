package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/services"
	"hotel-booking/utils"
)

type createBookingPayload struct {
	RoomID   string `json:"roomId" binding:"required"`
	CheckIn  string `json:"checkIn" binding:"required"`
	CheckOut string `json:"checkOut" binding:"required"`
}

type BookingController struct {
	BookingSvc *services.BookingService
	RoomSvc    *services.RoomService
	log        *zap.Logger
}

func NewBookingController(bookings *services.BookingService, rooms *services.RoomService, log *zap.Logger) *BookingController {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingController{BookingSvc: bookings, RoomSvc: rooms, log: log}
}

// GetBookings (GET /api/users/:id/bookings?limit&offset&includeDeleted)
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	includeDeleted, ok := queryBool(c, "includeDeleted")
	if !ok {
		return
	}

	bookings, err := ctrl.BookingSvc.ListUserBookings(c.Request.Context(), c.Param("id"), services.BookingListQuery{
		Limit:          limit,
		Offset:         offset,
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CreateBooking (POST /api/users/:id/bookings)
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	loc := ctrl.RoomSvc.Calendar().Location()
	checkIn, err := parseDate(payload.CheckIn, loc)
	if err != nil || checkIn == nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "checkIn must be a date")
		return
	}
	checkOut, err := parseDate(payload.CheckOut, loc)
	if err != nil || checkOut == nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "checkOut must be a date")
		return
	}

	booking, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		UserID:   c.Param("id"),
		RoomID:   payload.RoomID,
		CheckIn:  *checkIn,
		CheckOut: *checkOut,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bookingId": booking.ID, "cost": booking.Cost})
}

// GetBooking (GET /api/users/:id/bookings/:bookingId)
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	booking, err := ctrl.BookingSvc.GetBooking(c.Request.Context(), c.Param("id"), c.Param("bookingId"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking (DELETE /api/users/:id/bookings/:bookingId)
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	if err := ctrl.BookingSvc.CancelBooking(c.Request.Context(), c.Param("id"), c.Param("bookingId")); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
