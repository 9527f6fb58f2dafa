package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/services"
)

type HotelController struct {
	HotelSvc *services.HotelService
	log      *zap.Logger
}

func NewHotelController(svc *services.HotelService, log *zap.Logger) *HotelController {
	if log == nil {
		log = zap.NewNop()
	}
	return &HotelController{HotelSvc: svc, log: log}
}

// GetHotels (GET /api/hotels)
func (ctrl *HotelController) GetHotels(c *gin.Context) {
	hotels, err := ctrl.HotelSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": hotels})
}
