// Package kv is the device-local key-value store that backs the guest cart,
// the guest wishlist and the persisted credential.
//
// Values are opaque bytes; callers own the encoding. Get returns (nil, nil)
// for an absent key and Delete is idempotent.
package kv
