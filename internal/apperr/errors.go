package apperr

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnavailable     = errors.New("store unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrNoActiveSession = errors.New("no active session")
	ErrBusy            = errors.New("operation already in progress")
)

// Unavailable reports whether err should be treated as a store outage.
// Auth failures count as outages from the caller's point of view.
func Unavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrUnauthorized)
}

// Known reports whether err carries one of the sentinels above
func Known(err error) bool {
	for _, sentinel := range []error{ErrValidation, ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrConflict, ErrNoActiveSession, ErrBusy} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// UserMessage converts err into the one-line text shown to the user.
// action is the verb phrase of what was attempted, e.g. "end session".
func UserMessage(action string, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, ErrConflict):
		return "Already exists: " + err.Error()
	case errors.Is(err, ErrBusy):
		return "Still working on the previous request, please wait."
	case errors.Is(err, ErrUnauthorized):
		return "Failed to " + action + ". Check your auth token."
	default:
		return "Failed to " + action + ". Please try again."
	}
}
