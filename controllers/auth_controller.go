package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking/middleware"
	"hotel-booking/models"
	"hotel-booking/services"
)

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthController struct {
	Users  *services.UserService
	Cookie CookieConfig
	log    *zap.Logger
}

func NewAuthController(users *services.UserService, cookie CookieConfig, log *zap.Logger) *AuthController {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthController{Users: users, Cookie: cookie, log: log}
}

// Login (POST /api/public/user/login) opens a session and sets its cookie.
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	session, user, err := ctrl.Users.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.Cookie.Name, session.ID, int(ctrl.Cookie.TTL.Seconds()), "/", "", ctrl.Cookie.Secure, true)

	c.JSON(http.StatusOK, loginResponse{Token: session.ID, ExpiresAt: session.ExpiresAt, User: *user})
}

// Register (POST /api/public/user/register)
func (ctrl *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ctrl.Users.Register(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Logout (POST /api/user/logout) ends the current session and clears the cookie.
func (ctrl *AuthController) Logout(c *gin.Context) {
	if err := ctrl.Users.Logout(c.Request.Context(), middleware.GetSessionToken(c)); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.Cookie.Name, "", -1, "/", "", ctrl.Cookie.Secure, true)
	c.Status(http.StatusNoContent)
}
