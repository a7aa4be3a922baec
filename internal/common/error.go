package common

import "errors"

// Sentinel errors shared by the client layers; match them with errors.Is.
var (
	// Local storage errors.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// Session errors.
	ErrEmptyCredential = errors.New("empty credential")
	ErrNoCredential    = errors.New("response carried no credential")

	// Validation errors.
	ErrInvalidInput = errors.New("invalid input")
)
