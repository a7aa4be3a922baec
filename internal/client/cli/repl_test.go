package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) record(call string) { f.calls = append(f.calls, call) }
func (f *fakeExec) status() string { return "" }
func (f *fakeExec) help() { f.record("help") }
func (f *fakeExec) cart(context.Context) { f.record("cart") }
func (f *fakeExec) wishlist(context.Context) {
	f.record("wishlist")
}
func (f *fakeExec) orders(context.Context) { f.record("orders") }
func (f *fakeExec) profile(context.Context) { f.record("profile") }
func (f *fakeExec) editProfile(context.Context) { f.record("editprofile") }
func (f *fakeExec) changePassword(context.Context) { f.record("passwd") }
func (f *fakeExec) login(context.Context) { f.record("login") }
func (f *fakeExec) signup(context.Context) { f.record("signup") }
func (f *fakeExec) logout(context.Context) { f.record("logout") }
func (f *fakeExec) showStatus(context.Context) { f.record("status") }
func (f *fakeExec) products(_ context.Context, search string) {
	f.record("products:" + search)
}
func (f *fakeExec) product(_ context.Context, args []string) {
	f.record("product:" + strings.Join(args, ","))
}
func (f *fakeExec) add(_ context.Context, args []string) {
	f.record("add:" + strings.Join(args, ","))
}
func (f *fakeExec) qty(_ context.Context, args []string) {
	f.record("qty:" + strings.Join(args, ","))
}
func (f *fakeExec) remove(_ context.Context, args []string) {
	f.record("remove:" + strings.Join(args, ","))
}
func (f *fakeExec) wish(_ context.Context, args []string) {
	f.record("wish:" + strings.Join(args, ","))
}
func (f *fakeExec) unwish(_ context.Context, args []string) {
	f.record("unwish:" + strings.Join(args, ","))
}
func (f *fakeExec) checkout(_ context.Context, notes string) {
	f.record("checkout:" + notes)
}

func lineReader(input string) func(context.Context, string) (string, error) {
	r := bufio.NewReader(strings.NewReader(input))
	return func(context.Context, string) (string, error) {
		return GetSimpleText(r, "", io.Discard)
	}
}

func TestRunREPL_Dispatch(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"",
		"products red dress",
		"product p1",
		"add p1 2",
		"cart",
		"qty p1 3",
		"remove p1",
		"wish p2",
		"unwish p2",
		"wishlist",
		"checkout leave at the gate",
		"orders",
		"profile",
		"editprofile",
		"passwd",
		"login",
		"signup",
		"status",
		"logout",
		"frobnicate",
		"exit",
		"cart",
	}, "\n") + "\n"

	f := &fakeExec{}
	var out bytes.Buffer
	err := runREPL(context.Background(), f, lineReader(input), &out)
	require.NoError(t, err)

	want := []string{
		"help", "products:red dress", "product:p1", "add:p1,2", "cart", "qty:p1,3",
		"remove:p1", "wish:p2", "unwish:p2", "wishlist", "checkout:leave at the gate",
		"orders", "profile", "editprofile", "passwd", "login", "signup", "status", "logout",
	}
	assert.Equal(t, want, f.calls)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_EOF(t *testing.T) {
	f := &fakeExec{}
	err := runREPL(context.Background(), f, lineReader("cart\n"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"cart"}, f.calls)
}

func TestRunREPL_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	read := func(ctx context.Context, _ string) (string, error) { return "", ctx.Err() }

	err := runREPL(ctx, &fakeExec{}, read, io.Discard)

	assert.ErrorIs(t, err, context.Canceled)
}
