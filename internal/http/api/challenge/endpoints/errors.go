package endpoints

import (
	"errors"
	"net/http"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

var errNotRegistered = &api.APIError{
	Code:    http.StatusPreconditionRequired,
	Message: "register a display name and group name first",
}

func progressError(err error) *api.APIError {
	switch {
	case errors.Is(err, progress.ErrLoading), errors.Is(err, session.ErrClosed):
		return &api.APIError{Code: http.StatusServiceUnavailable, Message: err.Error()}
	case errors.Is(err, progress.ErrPreviousIncomplete), errors.Is(err, progress.ErrNotYetOpen):
		return &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, progress.ErrDayOutOfRange), errors.Is(err, progress.ErrPrayerNotTracked):
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, identity.ErrAuthentication):
		return &api.APIError{Code: http.StatusUnauthorized, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: "Something went wrong, please try again"}
	}
}
