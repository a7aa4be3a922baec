package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

var (
	// ErrSignupLoginFailed means the account exists but no session could be
	// obtained for it.
	ErrSignupLoginFailed = errors.New("signup succeeded but login failed")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotInCart         = errors.New("product is not in the cart")
	ErrNothingToUpdate   = errors.New("no profile field to update")
)

// InputError is a rejected form field. It matches common.ErrInvalidInput.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == common.ErrInvalidInput }

// UserMessage turns err into text fit for a customer.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var inputErr *InputError
	var apiErr *client.APIError
	switch {
	case errors.Is(err, ErrSignupLoginFailed):
		return "Signup succeeded but login failed. Please try signing in."
	case errors.As(err, &inputErr):
		return inputErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, common.ErrNoCredential):
		return "The server did not start a session. Please try again."
	case errors.Is(err, common.ErrStorageUnavailable), errors.Is(err, common.ErrEmptyCredential):
		return "Could not keep you signed in on this device."
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, ErrNotInCart):
		return "That product is not in your cart."
	case errors.Is(err, ErrNothingToUpdate):
		return "Nothing to update."
	case errors.Is(err, client.ErrUnauthorized):
		return "Please sign in to continue."
	case errors.Is(err, gate.ErrClosed), errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return "An error occurred"
	}
}
