package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		err        error
		validation bool
		notFound   bool
		conflict   bool
		auth       bool
	}{
		{ErrInvalidDateRange, true, false, false, false},
		{ErrDateInPast, true, false, false, false},
		{ErrMissingDates, true, false, false, false},
		{ErrRoomNotFound, false, true, false, false},
		{ErrBookingNotFound, false, true, false, false},
		{ErrRoomUnavailable, false, false, true, false},
		{ErrEmailTaken, false, false, true, false},
		{ErrSessionExpired, false, false, false, true},
		{fmt.Errorf("wrapped: %w", ErrRoomUnavailable), false, false, true, false},
		{errors.New("storage down"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.auth, IsAuthError(tt.err))
		})
	}
}
