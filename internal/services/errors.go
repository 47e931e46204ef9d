package services

import "errors"

// Sentinel errors surfaced to the HTTP boundary. Messages stay generic on
// purpose: which sub-check failed is never revealed to the client.
var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password so login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Reported only after identity and password already matched.
	ErrAccountInactive = errors.New("account is deactivated")
	ErrAccountDeleted  = errors.New("account has been deleted")

	// ErrInvalidToken covers malformed, expired, wrong-type and
	// non-matching-hash tokens uniformly.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUserNotFound means the token itself was cryptographically valid
	// but its principal no longer exists or is unusable.
	ErrUserNotFound = errors.New("user not found")

	// ErrConflictRetry signals a toggle that lost a uniqueness race twice.
	ErrConflictRetry = errors.New("concurrent update conflict, please retry")

	ErrUserExists   = errors.New("username or email already exists")
	ErrPostNotFound = errors.New("post not found")

	// ErrSecretPostDenied covers missing and wrong secret-post passwords.
	ErrSecretPostDenied = errors.New("post password verification failed")
)
