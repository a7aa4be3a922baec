// Package cli provides the interactive shopkeeper command-line storefront.
//
// It wires configuration, local storage, the API client and the services,
// then runs a REPL. Visitors browse and fill a cart as guests; the cart lives
// on the device until they log in or sign up, when it is merged into the
// account cart.
//
// Commands that need an account (checkout, orders, profile, editprofile,
// passwd) are accepted while signed out: the sign-in notice is printed and
// the command resumes by itself after a successful login or signup. The same
// happens when the backend rejects a stored credential.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled.
package cli
