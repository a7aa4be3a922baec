package cli

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

func (a *App) profile(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	p := a.account.Profile(ctx, func(c *models.Customer, err error) {
		if err != nil {
			a.fail(err)
			return
		}
		tw := newTable(a.out)
		tw.row("Name", c.Name)
		tw.row("Email", c.Email)
		tw.row("Phone", orDash(c.Phone))
		tw.row("Address", orDash(c.Address))
		tw.flush()
	})
	a.track(p)
}

// editProfile asks for each field; a blank answer keeps the current value.
func (a *App) editProfile(ctx context.Context) {
	var req models.UpdateProfileRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name (blank to keep)", &req.Name},
		{"Phone (blank to keep)", &req.Phone},
		{"Address (blank to keep)", &req.Address},
	}
	for _, f := range fields {
		v, err := a.readLine(ctx, f.prompt)
		if err != nil {
			return
		}
		*f.dst = v
	}

	p, err := a.account.UpdateProfile(context.WithoutCancel(ctx), req, func(_ *models.Customer, err error) {
		if err != nil {
			a.fail(err)
			return
		}
		a.println("Profile updated.")
	})
	if err != nil {
		a.fail(err)
		return
	}
	a.track(p)
}

func (a *App) changePassword(ctx context.Context) {
	current, err := a.readSecret(ctx, "Current password")
	if err != nil {
		return
	}
	next, err := a.readSecret(ctx, "New password")
	if err != nil {
		return
	}

	req := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	p, err := a.account.ChangePassword(context.WithoutCancel(ctx), req, func(err error) {
		if err != nil {
			a.fail(err)
			return
		}
		a.println("Password changed.")
	})
	if err != nil {
		a.fail(err)
		return
	}
	a.track(p)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
