package auth

import "errors"

var (
	// -- Validation --
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")

	// -- Login --
	ErrNoAccessToken = errors.New("login response carried no access token")
	ErrNotLoggedIn   = errors.New("not logged in")
)
