package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/models"
	"hotel-booking/services"
	"hotel-booking/utils"
)

// roomResponse is a room with what the requested stay would cost.
type roomResponse struct {
	models.Room
	OverallCost int64 `json:"overallCost"`
}

type updateRoomPayload struct {
	Price      *int64 `json:"price" binding:"omitempty,gt=0"`
	RoomNumber *int   `json:"roomNumber" binding:"omitempty,gte=1"`
}

type RoomController struct {
	RoomSvc *services.RoomService
	log     *zap.Logger
}

func NewRoomController(svc *services.RoomService, log *zap.Logger) *RoomController {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomController{RoomSvc: svc, log: log}
}

// GetRooms (GET /api/rooms?limit&offset&price&checkIn&checkOut&includeDeleted)
func (ctrl *RoomController) GetRooms(c *gin.Context) {
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
	checkIn, checkOut, ok := queryDates(c, ctrl.RoomSvc.Calendar().Location())
	if !ok {
		return
	}

	q := services.RoomQuery{CheckIn: checkIn, CheckOut: checkOut, IncludeDeleted: includeDeleted}
	price, ok := queryInt(c, "price", 0)
	if !ok {
		return
	}
	// price=0 means no ceiling, same as leaving it out.
	if price > 0 {
		maxPrice := int64(price)
		q.MaxPrice = &maxPrice
	}

	rooms, err := ctrl.RoomSvc.ListAvailable(c.Request.Context(), q)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	page := services.Paginate(rooms, limit, offset)
	out := make([]roomResponse, 0, len(page))
	for _, room := range page {
		out = append(out, roomResponse{Room: room, OverallCost: ctrl.RoomSvc.Quote(room, checkIn, checkOut)})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// GetRoom (GET /api/rooms/:id)
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	room, err := ctrl.RoomSvc.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetAvailability (GET /api/rooms/:id/availability?checkIn&checkOut)
func (ctrl *RoomController) GetAvailability(c *gin.Context) {
	checkIn, checkOut, ok := queryDates(c, ctrl.RoomSvc.Calendar().Location())
	if !ok {
		return
	}
	if checkIn == nil || checkOut == nil {
		respondError(c, ctrl.log, services.ErrMissingDates)
		return
	}

	room, err := ctrl.RoomSvc.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	available, err := ctrl.RoomSvc.IsAvailable(c.Request.Context(), room.ID, *checkIn, *checkOut)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roomId":      room.ID,
		"available":   available,
		"overallCost": ctrl.RoomSvc.Quote(*room, checkIn, checkOut),
	})
}

// UpdateRoom (PATCH /api/rooms/:id)
func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	var payload updateRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	if payload.Price == nil && payload.RoomNumber == nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "Nothing to update")
		return
	}

	room, err := ctrl.RoomSvc.UpdateRoom(c.Request.Context(), c.Param("id"), services.RoomUpdate{
		Price:      payload.Price,
		RoomNumber: payload.RoomNumber,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
