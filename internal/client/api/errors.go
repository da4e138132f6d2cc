package api

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/common"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the shared sentinel errors so callers
// can use errors.Is(err, common.ErrUnauthorized) and friends.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrInvalidState
	case http.StatusServiceUnavailable:
		return common.ErrStorageDisabled
	}
	return nil
}
