package account

import "errors"

var (
	// ErrAccountNotFound indicates the account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidInput indicates invalid account input.
	ErrInvalidInput = errors.New("invalid account input")
	// ErrInvalidToken indicates an API key that matches no account.
	ErrInvalidToken = errors.New("invalid api key")
)
