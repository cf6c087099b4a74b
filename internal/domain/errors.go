package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the acting user may not touch the review.
	ErrForbidden = errors.New("action forbidden")
	// ErrUnauthorized indicates a missing, invalid or expired token, or a role outside the allowed set.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrReviewAlreadyExists indicates that a user has already reviewed a specific target.
	ErrReviewAlreadyExists = errors.New("review already exists for this user and target")
	// ErrUpstream indicates that a required downstream service failed.
	ErrUpstream = errors.New("upstream service failure")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)
