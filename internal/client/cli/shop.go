package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
)

const productsPageSize = 20

func (a *App) products(ctx context.Context, search string) {
	page, err := a.shop.Products(ctx, models.ProductFilter{Limit: productsPageSize, Page: 1, Search: search})
	if err != nil {
		a.fail(err)
		return
	}
	if len(page.Data) == 0 {
		a.println("No products found.")
		return
	}
	tw := newTable(a.out)
	tw.row("ID", "NAME", "PRICE", "CATEGORY")
	for _, p := range page.Data {
		tw.row(p.ProductID(), p.Name, formatPrice(p.UnitPrice()), p.Category)
	}
	tw.flush()
	if page.TotalCount > len(page.Data) {
		a.printf("Showing %d of %d products.\n", len(page.Data), page.TotalCount)
	}
}

func (a *App) product(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: product <id>")
		return
	}
	p, err := a.shop.Product(ctx, args[0])
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("%s\n  id:       %s\n  price:    %s\n", p.Name, p.ProductID(), formatPrice(p.UnitPrice()))
	if p.Category != "" {
		a.printf("  category: %s\n", p.Category)
	}
	a.printf("  image:    %s\n", p.ImageRef())
	if p.Description != "" {
		a.printf("  %s\n", p.Description)
	}
}

// lookup fetches the product so the guest store keeps its display fields.
func (a *App) lookup(ctx context.Context, id string) (*models.Product, bool) {
	p, err := a.shop.Product(ctx, id)
	if err != nil {
		a.fail(err)
		return nil, false
	}
	return p, true
}

func (a *App) add(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		a.println("Usage: add <id> [qty]")
		return
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			a.println("Quantity must be a positive number.")
			return
		}
		qty = n
	}
	p, ok := a.lookup(ctx, args[0])
	if !ok {
		return
	}
	dest, err := a.shop.AddToCart(ctx, *p, qty)
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("Added %d x %s to your %s.\n", qty, p.Name, cartName(dest))
}

func (a *App) cart(ctx context.Context) {
	view, err := a.shop.Cart(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	if len(view.Lines) == 0 {
		a.println("Your cart is empty.")
		return
	}
	tw := newTable(a.out)
	tw.row("ID", "NAME", "QTY", "PRICE", "TOTAL")
	for _, l := range view.Lines {
		tw.row(l.ProductID, l.Name, strconv.Itoa(l.Quantity), formatPrice(l.UnitPrice), formatPrice(l.LineTotal))
	}
	tw.flush()
	a.printf("Subtotal: %s (%d item(s), %s)\n", formatPrice(view.Subtotal), view.Count, cartName(view.Source))
}

func (a *App) qty(ctx context.Context, args []string) {
	if len(args) != 2 {
		a.println("Usage: qty <id> <n>")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		a.println("Quantity must be a number.")
		return
	}
	if n < 1 {
		a.println("Quantity can't go below 1; use 'remove' to drop the item.")
		n = 1
	}
	if _, err := a.shop.UpdateCartQuantity(ctx, args[0], n); err != nil {
		a.fail(err)
		return
	}
	a.printf("Quantity set to %d.\n", n)
}

func (a *App) remove(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: remove <id>")
		return
	}
	dest, err := a.shop.RemoveFromCart(ctx, args[0])
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("Removed from your %s.\n", cartName(dest))
}

func (a *App) wish(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: wish <id>")
		return
	}
	p, ok := a.lookup(ctx, args[0])
	if !ok {
		return
	}
	if _, err := a.shop.AddToWishlist(ctx, *p); err != nil {
		a.fail(err)
		return
	}
	a.printf("Added %s to your wishlist.\n", p.Name)
}

func (a *App) unwish(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.println("Usage: unwish <id>")
		return
	}
	if _, err := a.shop.RemoveFromWishlist(ctx, args[0]); err != nil {
		a.fail(err)
		return
	}
	a.println("Removed from your wishlist.")
}

func (a *App) wishlist(ctx context.Context) {
	list, _, err := a.shop.Wishlist(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	if len(list) == 0 {
		a.println("Your wishlist is empty.")
		return
	}
	tw := newTable(a.out)
	tw.row("ID", "NAME", "PRICE")
	for _, p := range list {
		tw.row(p.ProductID(), p.Name, formatPrice(p.UnitPrice()))
	}
	tw.flush()
}

func (a *App) checkout(ctx context.Context, notes string) {
	// resumed commands outlive the line that queued them
	ctx = context.WithoutCancel(ctx)
	p := a.shop.Checkout(ctx, notes, func(h *services.PaymentHandoff, err error) {
		if err != nil {
			a.fail(err)
			return
		}
		a.printf("Order %s placed, total %s.\nComplete payment at: %s\nReference: %s\n",
			h.OrderNumber, formatPrice(h.Total), h.AuthorizationURL, h.Reference)
	})
	a.track(p)
}

func (a *App) orders(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	p := a.shop.Orders(ctx, func(orders []models.Order, err error) {
		if err != nil {
			a.fail(err)
			return
		}
		if len(orders) == 0 {
			a.println("You have no orders yet.")
			return
		}
		tw := newTable(a.out)
		tw.row("ORDER", "PLACED", "STATUS", "ITEMS", "TOTAL")
		for _, o := range orders {
			tw.row(o.OrderNumber, o.PlacedAt.Format("2006-01-02"), string(o.Status), strconv.Itoa(len(o.Items)), formatPrice(o.TotalAmount))
		}
		tw.flush()
	})
	a.track(p)
}

func cartName(d services.Destination) string {
	if d == services.ToAccount {
		return "account cart"
	}
	return "guest cart"
}
