package identity

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that is
	// already in use
	ErrEmailTaken = errors.New("a user with this email already exists")

	// ErrUsernameTaken is returned when registering with a username
	// that is already in use
	ErrUsernameTaken = errors.New("a user with this username already exists")

	// ErrInvalidCredentials is returned for unknown emails, wrong
	// passwords and inactive accounts alike
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned when a user id resolves to nothing
	ErrUserNotFound = errors.New("user not found")

	// ErrPermissionDenied is returned when the current password check
	// fails on a password change
	ErrPermissionDenied = errors.New("permission denied")
)
