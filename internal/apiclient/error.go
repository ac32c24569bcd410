package apiclient

import (
	"errors"
	"net/http"
)

var (
	// -- Session --
	ErrSessionExpired    = errors.New("session expired, please log in again")
	ErrEmptyRefreshToken = errors.New("refresh response carried no access token")

	// -- Response --
	ErrNotJSON = errors.New("response is not JSON")
)

// APIError is a non-success reply from the server. Message is shown to the
// user as-is.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsNotFound is IsStatus(err, 404).
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// Message returns the text to show for err: the server message when there is
// one, the error string otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
