// Package models defines the client-side storefront types: catalog products,
// guest and account carts, customers, orders and the backend response
// envelope.
package models
