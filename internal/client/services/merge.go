package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/guest"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"go.uber.org/multierr"
)

// MergeReport summarizes one merge. It is logged, never shown to the
// customer.
type MergeReport struct {
	Attempted int
	Synced    int
	Skipped   int
	Failed    int

	WishlistSynced int
	WishlistFailed int

	// Err aggregates every per-entry failure, or holds the context error
	// when the merge stopped early.
	Err error
}

// MergeService pushes guest state into the account identified by token.
type MergeService interface {
	Merge(ctx context.Context, token string) MergeReport
}

type mergeService struct {
	client        client.Client
	guest         *guest.Store
	log           logging.Logger
	mergeWishlist bool
}

type MergeOption func(*mergeService)

// WithWishlistMerge also moves the guest wishlist into the account.
func WithWishlistMerge(enabled bool) MergeOption {
	return func(m *mergeService) { m.mergeWishlist = enabled }
}

func NewMergeService(c client.Client, g *guest.Store, log logging.Logger, opts ...MergeOption) MergeService {
	if log == nil {
		log = logging.Nop()
	}
	m := &mergeService{client: c, guest: g, log: log.With("component", "merge")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge adds every guest cart entry to the account cart, one request at a
// time and in stored order. A failed entry is logged and does not stop the
// others. Each attempted entry leaves the guest cart right after its
// request, and the guest cart is cleared once all entries were attempted,
// whatever their outcome. If ctx ends first, entries not yet attempted stay
// in the guest cart for the next sign-in.
func (m *mergeService) Merge(ctx context.Context, token string) MergeReport {
	var report MergeReport
	// bookkeeping must survive a cancelled ctx, or attempted entries would be
	// sent twice next time
	store := context.WithoutCancel(ctx)

	entries := m.guest.GetCart(ctx)
	if len(entries) > 0 {
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				report.Err = multierr.Append(report.Err, err)
				m.log.Warn(ctx, "guest cart merge interrupted", "left", len(entries)-report.Attempted-report.Skipped, "err", err)
				return report
			}

			id := e.Product.ProductID()
			if id == "" {
				report.Skipped++
				m.log.Warn(ctx, "skipping guest cart entry without product id", "name", e.Product.Name)
				continue
			}

			qty := max(e.Quantity, 1)
			report.Attempted++
			if err := m.client.AddToCart(ctx, token, id, qty); err != nil {
				report.Failed++
				report.Err = multierr.Append(report.Err, fmt.Errorf("product %s: %w", id, err))
				m.log.Warn(ctx, "guest cart entry not merged", "product", id, "quantity", qty, "err", err)
			} else {
				report.Synced++
			}
			m.guest.RemoveFromCart(store, id)
		}
		m.guest.ClearCart(store)
	}

	if m.mergeWishlist {
		m.mergeWishlistInto(ctx, store, token, &report)
	}

	m.log.Info(ctx, "guest state merged",
		"attempted", report.Attempted, "synced", report.Synced,
		"skipped", report.Skipped, "failed", report.Failed,
		"wishlist_synced", report.WishlistSynced, "wishlist_failed", report.WishlistFailed,
		"token", common.MaskToken(token))
	return report
}

func (m *mergeService) mergeWishlistInto(ctx, store context.Context, token string, report *MergeReport) {
	products := m.guest.GetWishlist(ctx)
	if len(products) == 0 {
		return
	}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			report.Err = multierr.Append(report.Err, err)
			return
		}
		id := p.ProductID()
		if id == "" {
			continue
		}
		if err := m.client.AddToWishlist(ctx, token, id); err != nil {
			report.WishlistFailed++
			report.Err = multierr.Append(report.Err, fmt.Errorf("wishlist product %s: %w", id, err))
			m.log.Warn(ctx, "guest wishlist entry not merged", "product", id, "err", err)
		} else {
			report.WishlistSynced++
		}
		m.guest.RemoveFromWishlist(store, id)
	}
	m.guest.ClearWishlist(store)
}
