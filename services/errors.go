package services

import "errors"

var (
	// Validation errors
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	ErrDateInPast       = errors.New("dates must not be in the past")
	ErrMissingDates     = errors.New("check-in and check-out are required")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidRoomID    = errors.New("invalid room id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidPage      = errors.New("limit and offset must not be negative")

	// Not found errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	// Conflict errors
	ErrRoomUnavailable = errors.New("room is not available for the requested dates")
	ErrEmailTaken      = errors.New("email is already registered")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")
)

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrDateInPast) ||
		errors.Is(err, ErrMissingDates) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidRoomID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidPage)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrEmailTaken)
}

// IsAuthError checks if the error means the caller is not logged in
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired)
}
