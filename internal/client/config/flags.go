package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-p", "-w"}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// the package doc are looked at; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("shopkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the storefront API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.DurationVar(&cfg.AuthPollInterval, "p", cfg.AuthPollInterval, "credential poll interval, 0 disables")
	fs.BoolVar(&cfg.MergeGuestWishlist, "w", cfg.MergeGuestWishlist, "merge guest wishlist on sign-in")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
