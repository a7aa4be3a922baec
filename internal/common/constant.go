// Package common contains shared constants and sentinel errors used across
// shopkeeper components.
package common

// Well-known keys of the local key-value store. The values mirror the keys
// the web storefront keeps in browser storage so both clients describe the
// same device-local state.
const (
	GuestCartKey     = "feeluxe-guest-cart"
	GuestWishlistKey = "feeluxe-guest-wishlist"
	CredentialKey    = "feeluxe-token"
)

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// MaskToken returns a loggable form of a credential: the first and last four
// characters with the middle elided. Short tokens are fully masked.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
