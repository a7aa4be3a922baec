package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	defaultErrorMessage = "An error occurred"
	networkErrorMessage = "Network error occurred"
)

// APIError is a failed backend call. Status is 0 when the request never got
// an HTTP response.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Unwrap exposes the matching sentinel and the transport cause, if any.
func (e *APIError) Unwrap() []error {
	var errs []error
	if s := e.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *APIError) sentinel() error {
	switch e.Status {
	case 0, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return nil
	}
}

func networkError(err error) *APIError {
	return &APIError{Status: 0, Message: networkErrorMessage, Err: err}
}

func statusError(status int, message string) *APIError {
	if message == "" {
		message = defaultErrorMessage
	}
	return &APIError{Status: status, Message: message}
}
