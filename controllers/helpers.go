package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hotel-booking/services"
	"hotel-booking/utils"
)

const dateLayout = "2006-01-02"

var errorCodes = []struct {
	err  error
	code string
}{
	{services.ErrInvalidDateRange, "error.invalidDateRange"},
	{services.ErrDateInPast, "error.dateInPast"},
	{services.ErrMissingDates, "error.missingDates"},
	{services.ErrInvalidPrice, "error.invalidPrice"},
	{services.ErrInvalidRoomID, "error.invalidRoomId"},
	{services.ErrInvalidUserID, "error.invalidUserId"},
	{services.ErrInvalidPage, "error.invalidPage"},
	{services.ErrRoomNotFound, "error.roomNotFound"},
	{services.ErrBookingNotFound, "error.bookingNotFound"},
	{services.ErrUserNotFound, "error.userNotFound"},
	{services.ErrRoomUnavailable, "error.roomUnavailable"},
	{services.ErrEmailTaken, "error.emailTaken"},
	{services.ErrInvalidCredentials, "error.invalidCredentials"},
	{services.ErrSessionNotFound, "error.unauthorized"},
	{services.ErrSessionExpired, "error.sessionExpired"},
}

func errorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "error.internal"
}

// respondError writes err as the JSON error envelope with the status its
// class maps to. Unclassified errors are logged and hidden behind a 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case services.IsValidationError(err):
		utils.JSONError(c, http.StatusBadRequest, errorCode(err), err.Error())
	case services.IsNotFoundError(err):
		utils.JSONError(c, http.StatusNotFound, errorCode(err), err.Error())
	case services.IsConflictError(err):
		utils.JSONError(c, http.StatusConflict, errorCode(err), err.Error())
	case services.IsAuthError(err):
		utils.JSONError(c, http.StatusUnauthorized, errorCode(err), err.Error())
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "Something went wrong, please try again later")
	}
}

// respondBindError turns a binding failure into a 400. Validator errors are
// reported per field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", strings.Join(fields, "; "))
		return
	}
	utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseDate accepts YYYY-MM-DD, read in loc, or an RFC3339 timestamp.
// An empty value is nil.
func parseDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date", value)
	}
	return &t, nil
}

// queryDates reads the checkIn and checkOut query parameters.
func queryDates(c *gin.Context, loc *time.Location) (checkIn, checkOut *time.Time, ok bool) {
	var err error
	if checkIn, err = parseDate(c.Query("checkIn"), loc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "checkIn: "+err.Error())
		return nil, nil, false
	}
	if checkOut, err = parseDate(c.Query("checkOut"), loc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "checkOut: "+err.Error())
		return nil, nil, false
	}
	return checkIn, checkOut, true
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", name+" must be true or false")
		return false, false
	}
	return b, true
}
