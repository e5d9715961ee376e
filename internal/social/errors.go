package social

import "errors"

var (
	// ErrNotFound signals a missing user, ticket or review.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation signals a request that can never succeed, such
	// as following yourself.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrForbidden signals a mutation attempt by a non-owner.
	ErrForbidden = errors.New("forbidden")
)
