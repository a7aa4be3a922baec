package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a lightweight stub.
type execIface interface {
	status() string
	help()
	products(ctx context.Context, search string)
	product(ctx context.Context, args []string)
	add(ctx context.Context, args []string)
	cart(ctx context.Context)
	qty(ctx context.Context, args []string)
	remove(ctx context.Context, args []string)
	wish(ctx context.Context, args []string)
	unwish(ctx context.Context, args []string)
	wishlist(ctx context.Context)
	checkout(ctx context.Context, notes string)
	orders(ctx context.Context)
	profile(ctx context.Context)
	editProfile(ctx context.Context)
	changePassword(ctx context.Context)
	login(ctx context.Context)
	signup(ctx context.Context)
	logout(ctx context.Context)
	showStatus(ctx context.Context)
}

const helpText = `Commands:
  products [search]   list products
  product <id>        show one product
  add <id> [qty]      add to cart
  cart                show cart
  qty <id> <n>        change quantity
  remove <id>         remove from cart
  wish <id>           add to wishlist
  unwish <id>         remove from wishlist
  wishlist            show wishlist
  checkout [notes]    place an order and start payment (account)
  orders              order history (account)
  profile             show your profile (account)
  editprofile         change name, phone or address (account)
  passwd              change your password (account)
  login | signup      sign in or create an account
  logout              sign out
  status              show session and cart
  exit | quit         leave`

// runREPL reads commands line by line and dispatches them to a. It returns
// nil on EOF or exit, and ctx's error when ctx ends first. Handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, readLine func(ctx context.Context, prompt string) (string, error), out io.Writer) error {
	for {
		line, err := readLine(ctx, "shopkeeper"+a.status())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			a.help()
		case "products":
			a.products(ctx, rest)
		case "product":
			a.product(ctx, args)
		case "add":
			a.add(ctx, args)
		case "cart":
			a.cart(ctx)
		case "qty":
			a.qty(ctx, args)
		case "remove":
			a.remove(ctx, args)
		case "wish":
			a.wish(ctx, args)
		case "unwish":
			a.unwish(ctx, args)
		case "wishlist":
			a.wishlist(ctx)
		case "checkout":
			a.checkout(ctx, rest)
		case "orders":
			a.orders(ctx)
		case "profile":
			a.profile(ctx)
		case "editprofile":
			a.editProfile(ctx)
		case "passwd":
			a.changePassword(ctx)
		case "login":
			a.login(ctx)
		case "signup":
			a.signup(ctx)
		case "logout":
			a.logout(ctx)
		case "status":
			a.showStatus(ctx)
		case "exit", "quit":
			_, _ = io.WriteString(out, "Bye!\n")
			return nil
		default:
			_, _ = io.WriteString(out, "Unknown command: "+cmd+" (type 'help')\n")
		}
	}
}

func (a *App) repl(ctx context.Context) error {
	a.println("Welcome to shopkeeper (type 'help' for commands)")
	return runREPL(ctx, a, a.readLine, a.out)
}

func (a *App) help() { a.println(helpText) }

// status is appended to the prompt.
func (a *App) status() string {
	switch {
	case !a.auth.IsAuthenticated():
		return " (guest)"
	case a.customer != "":
		return " (" + a.customer + ")"
	default:
		return " (signed in)"
	}
}
