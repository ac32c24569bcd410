package session

import "errors"

var (
	// -- File store --
	ErrSealedStore   = errors.New("session file is sealed, SESSION_KEY is required")
	ErrCorruptStore  = errors.New("session file is corrupt")
	ErrWrongPassword = errors.New("session file could not be opened with the given key")

	// -- Tokens --
	ErrNoToken      = errors.New("no access token")
	ErrInvalidToken = errors.New("access token is not a valid JWT")
)
