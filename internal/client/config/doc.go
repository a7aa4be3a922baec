// Package config loads runtime configuration for the shopkeeper CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional config file passed with -c or -config. Files ending in
//     .yaml or .yml are decoded as YAML, anything else as JSON.
//  3. Environment variables prefixed with SHOPKEEPER_. A .env file in the
//     working directory is loaded first and never overrides variables that
//     are already set.
//  4. Command-line flags.
//
// Flags
//
//	-a string     base URL of the storefront REST API
//	-d string     path to the local SQLite database
//	-t duration   per-request timeout (e.g. 15s)
//	-p duration   credential poll interval for the auth gate, 0 disables
//	-w            merge the guest wishlist into the account on sign-in
//
// File format
//
//	{
//	  "api_base_url": "https://api.feeluxe.ng/api",
//	  "database_path": "shopkeeper.db",
//	  "request_timeout": "15s",
//	  "auth_poll_interval": "300ms",
//	  "merge_guest_wishlist": false,
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Durations accept Go duration strings or integer nanoseconds.
package config
