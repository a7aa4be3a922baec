// Package client talks to the storefront REST backend and opens the local
// database.
//
// Client is the transport contract used by the services; HTTPClient is the
// REST implementation. Calls are single-shot: nothing is retried here. Every
// request carries Content-Type: application/json and a fresh X-Request-ID;
// calls that take a token send it as a Bearer credential.
//
// # Errors
//
// A non-2xx response becomes *APIError carrying the HTTP status and the
// server's message (or "An error occurred"). A transport failure becomes
// *APIError with Status 0 and "Network error occurred". APIError matches the
// sentinels ErrUnauthorized (401, 403) and ErrUnavailable (transport failure,
// 502, 503, 504) with errors.Is.
package client
