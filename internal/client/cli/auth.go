package cli

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// login prompts for credentials. On success the guest cart has been merged
// and commands waiting for sign-in have resumed before the next prompt.
func (a *App) login(ctx context.Context) {
	if a.auth.IsAuthenticated() {
		a.println("You are already signed in. Type 'logout' first to switch accounts.")
		return
	}
	email, err := a.readLine(ctx, "Email")
	if err != nil {
		return
	}
	password, err := a.readSecret(ctx, "Password")
	if err != nil {
		return
	}

	customer, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.fail(err)
		return
	}
	a.signedIn(ctx, customer, "Welcome back")
}

func (a *App) signup(ctx context.Context) {
	if a.auth.IsAuthenticated() {
		a.println("You are already signed in. Type 'logout' first to create another account.")
		return
	}
	var req models.SignupRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name", &req.Name},
		{"Email", &req.Email},
		{"Phone (optional)", &req.Phone},
		{"Address (optional)", &req.Address},
	}
	for _, f := range fields {
		v, err := a.readLine(ctx, f.prompt)
		if err != nil {
			return
		}
		*f.dst = v
	}
	password, err := a.readSecret(ctx, "Password")
	if err != nil {
		return
	}
	req.Password = password

	customer, err := a.auth.Signup(ctx, req)
	if err != nil {
		a.fail(err)
		return
	}
	a.signedIn(ctx, customer, "Welcome")
}

func (a *App) signedIn(ctx context.Context, customer *models.Customer, greeting string) {
	a.customer = customer.Name
	if a.customer == "" {
		a.customer = customer.Email
	}
	a.printf("%s, %s!\n", greeting, a.customer)
	a.awaitResumed(ctx)
}

// logout keeps the guest cart and wishlist on the device.
func (a *App) logout(ctx context.Context) {
	if !a.auth.IsAuthenticated() {
		a.println("You are not signed in.")
		return
	}
	if err := a.auth.Logout(ctx); err != nil {
		a.fail(err)
		return
	}
	a.customer = ""
	a.println("Signed out.")
}

func (a *App) showStatus(ctx context.Context) {
	switch {
	case !a.auth.IsAuthenticated():
		a.println("Browsing as a guest.")
	case a.customer != "":
		a.printf("Signed in as %s.\n", a.customer)
	default:
		a.println("Signed in.")
	}
	view, err := a.shop.Cart(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("Cart: %d item(s), subtotal %s\n", view.Count, formatPrice(view.Subtotal))
	if n := a.waiting(); n > 0 {
		a.printf("%d request(s) waiting for sign-in.\n", n)
	}
}
