package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/controllers"
	"hotel-booking/middleware"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Rooms    *controllers.RoomController
	Hotels   *controllers.HotelController
	Bookings *controllers.BookingController
}

type Options struct {
	Logger        *zap.Logger
	CORSOrigins   []string
	CookieName    string
	Authenticator middleware.Authenticator

	// Idempotency guards booking creation when set.
	Idempotency *middleware.IdempotencyConfig
}

// SetupRouter wires controllers to their routes.
func SetupRouter(ctrl Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(opts.Logger))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader, middleware.IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		public := api.Group("/public/user")
		{
			public.POST("/login", ctrl.Auth.Login)
			public.POST("/register", ctrl.Auth.Register)
		}

		authed := api.Group("", middleware.RequireSession(opts.Authenticator, opts.CookieName))

		authed.POST("/user/logout", ctrl.Auth.Logout)

		rooms := authed.Group("/rooms")
		{
			rooms.GET("", ctrl.Rooms.GetRooms)
			rooms.GET("/:id", ctrl.Rooms.GetRoom)
			rooms.GET("/:id/availability", ctrl.Rooms.GetAvailability)
			rooms.PATCH("/:id", ctrl.Rooms.UpdateRoom)
		}

		authed.GET("/hotels", ctrl.Hotels.GetHotels)

		bookings := authed.Group("/users/:id/bookings", middleware.RequireSameUser("id"))
		{
			bookings.GET("", ctrl.Bookings.GetBookings)
			if opts.Idempotency != nil {
				bookings.POST("", middleware.Idempotency(*opts.Idempotency), ctrl.Bookings.CreateBooking)
			} else {
				bookings.POST("", ctrl.Bookings.CreateBooking)
			}
			bookings.GET("/:bookingId", ctrl.Bookings.GetBooking)
			bookings.DELETE("/:bookingId", ctrl.Bookings.CancelBooking)
		}
	}

	return r
}
