package gate

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	mu        sync.Mutex
	token     string
	persisted string
	ch        chan struct{}
	refreshes int
}

func newFakeSession() *fakeSession { return &fakeSession{ch: make(chan struct{})} }

func (f *fakeSession) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != ""
}

func (f *fakeSession) Authenticated() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch
}

func (f *fakeSession) Refresh(context.Context) bool {
	f.mu.Lock()
	f.refreshes++
	persisted := f.persisted
	f.mu.Unlock()
	if persisted != "" && !f.IsAuthenticated() {
		f.login(persisted)
	}
	return f.IsAuthenticated()
}

func (f *fakeSession) login(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	select {
	case <-f.ch:
	default:
		close(f.ch)
	}
}

// logout drops the token, as a demote after a rejected credential does.
func (f *fakeSession) logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.ch = make(chan struct{})
}

// persistElsewhere simulates a sign-in completed by another process.
func (f *fakeSession) persistElsewhere(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persisted = token
}

type fakePrompter struct {
	mu     sync.Mutex
	opens  int
	closes int
	open   bool
}

func (p *fakePrompter) Open(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	p.open = true
}

func (p *fakePrompter) Close(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	p.open = false
}

func (p *fakePrompter) state() (opens, closes int, open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens, p.closes, p.open
}

type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) action(name string) Action {
	return func(ctx context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.runs = append(r.runs, name)
		return nil
	}
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func waitDone(t *testing.T, p *Pending) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("pending action did not complete")
	}
}

func TestRequireAuth_AuthenticatedRunsImmediately(t *testing.T) {
	sess := newFakeSession()
	sess.login("tok")
	prompt := &fakePrompter{}
	g := New(sess, prompt)
	defer g.Close()

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rec.action("checkout"))

	require.True(t, p.Ran())
	assert.NoError(t, p.Err())
	assert.Equal(t, []string{"checkout"}, rec.got())
	opens, _, _ := prompt.state()
	assert.Zero(t, opens)
}

func TestRequireAuth_AnonymousQueuesInOrderAndRunsOnce(t *testing.T) {
	sess := newFakeSession()
	prompt := &fakePrompter{}
	g := New(sess, prompt, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	first := g.RequireAuth(context.Background(), rec.action("checkout"))
	second := g.RequireAuth(context.Background(), rec.action("orders"))

	assert.False(t, first.Ran())
	assert.Empty(t, rec.got(), "nothing runs before sign-in")
	assert.Equal(t, 2, g.Queued())
	opens, _, open := prompt.state()
	assert.Equal(t, 1, opens, "prompt opens once for many actions")
	assert.True(t, open)

	sess.login("tok")
	waitDone(t, first)
	waitDone(t, second)

	assert.Equal(t, []string{"checkout", "orders"}, rec.got())
	assert.True(t, first.Ran())
	assert.True(t, second.Ran())
	assert.Zero(t, g.Queued())
	_, closes, open := prompt.state()
	assert.Equal(t, 1, closes)
	assert.False(t, open)

	// later calls run directly and nothing reruns
	third := g.RequireAuth(context.Background(), rec.action("wishlist"))
	assert.True(t, third.Ran())
	assert.Equal(t, []string{"checkout", "orders", "wishlist"}, rec.got())
}

func TestRequireAuth_ActionErrorIsReported(t *testing.T) {
	sess := newFakeSession()
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	boom := assert.AnError
	p := g.RequireAuth(context.Background(), func(context.Context) error { return boom })
	sess.login("tok")
	waitDone(t, p)

	assert.True(t, p.Ran())
	assert.ErrorIs(t, p.Err(), boom)
}

// rejectOnce demotes sess and asks for a new sign-in the first time it runs.
func rejectOnce(sess *fakeSession, rec *recorder, name string) Action {
	rejected := false
	return func(ctx context.Context) error {
		if !rejected {
			rejected = true
			sess.logout()
			return Reauth(assert.AnError)
		}
		return rec.action(name)(ctx)
	}
}

func TestRequireAuth_RejectedCredentialRequeues(t *testing.T) {
	sess := newFakeSession()
	sess.login("stale")
	prompt := &fakePrompter{}
	g := New(sess, prompt, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rejectOnce(sess, rec, "checkout"))

	select {
	case <-p.Done():
		t.Fatalf("action completed after its credential was rejected: %v", p.Err())
	default:
	}
	assert.Equal(t, 1, g.Queued())
	opens, _, open := prompt.state()
	assert.Equal(t, 1, opens)
	assert.True(t, open)

	sess.login("fresh")
	waitDone(t, p)

	assert.True(t, p.Ran())
	assert.NoError(t, p.Err())
	assert.Equal(t, []string{"checkout"}, rec.got())
	assert.Zero(t, g.Queued())
	_, closes, open := prompt.state()
	assert.Equal(t, 1, closes)
	assert.False(t, open)
}

func TestRequireAuth_RejectedDuringFlushKeepsOthersQueued(t *testing.T) {
	sess := newFakeSession()
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	first := g.RequireAuth(context.Background(), rejectOnce(sess, rec, "checkout"))
	second := g.RequireAuth(context.Background(), rec.action("orders"))

	sess.login("stale")
	require.Eventually(t, func() bool { return !sess.IsAuthenticated() && g.Queued() == 2 },
		2*time.Second, 10*time.Millisecond)
	assert.Empty(t, rec.got(), "nothing runs after the session was lost")

	sess.login("fresh")
	waitDone(t, first)
	waitDone(t, second)
	assert.Equal(t, []string{"checkout", "orders"}, rec.got())
}

func TestRequireAuth_ReauthWhileStillAuthenticatedCompletes(t *testing.T) {
	sess := newFakeSession()
	sess.login("tok")
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	p := g.RequireAuth(context.Background(), func(context.Context) error {
		return Reauth(assert.AnError)
	})

	require.True(t, p.Ran())
	assert.ErrorIs(t, p.Err(), assert.AnError)
	assert.Zero(t, g.Queued())
}

func TestClose_CompletesRequeuedAction(t *testing.T) {
	sess := newFakeSession()
	sess.login("stale")
	g := New(sess, nil, WithPollInterval(0))

	p := g.RequireAuth(context.Background(), rejectOnce(sess, &recorder{}, "orders"))
	g.Close()

	waitDone(t, p)
	assert.False(t, p.Ran())
	assert.ErrorIs(t, p.Err(), ErrClosed)
}

func TestRequireAuth_CancelDropsAction(t *testing.T) {
	sess := newFakeSession()
	prompt := &fakePrompter{}
	g := New(sess, prompt, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rec.action("checkout"))
	p.Cancel()
	waitDone(t, p)

	assert.False(t, p.Ran())
	assert.ErrorIs(t, p.Err(), context.Canceled)
	assert.Zero(t, g.Queued())
	_, closes, open := prompt.state()
	assert.Equal(t, 1, closes, "prompt closes when nothing is left to resume")
	assert.False(t, open)

	sess.login("tok")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.got())
}

func TestRequireAuth_CallerContextCancelled(t *testing.T) {
	sess := newFakeSession()
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	keep := g.RequireAuth(context.Background(), rec.action("orders"))
	dropped := g.RequireAuth(ctx, rec.action("checkout"))
	cancel()
	waitDone(t, dropped)

	sess.login("tok")
	waitDone(t, keep)
	assert.Equal(t, []string{"orders"}, rec.got())

	done, cancelDone := context.WithCancel(context.Background())
	cancelDone()
	sess2 := newFakeSession()
	g2 := New(sess2, nil)
	defer g2.Close()
	p := g2.RequireAuth(done, rec.action("never"))
	waitDone(t, p)
	assert.False(t, p.Ran())
	assert.Zero(t, g2.Queued())
}

func TestRequireAuth_PollPicksUpOtherProcessSignIn(t *testing.T) {
	sess := newFakeSession()
	g := New(sess, nil, WithPollInterval(10*time.Millisecond))
	defer g.Close()

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rec.action("checkout"))

	sess.persistElsewhere("tok-from-other-window")
	waitDone(t, p)

	assert.True(t, p.Ran())
	assert.True(t, sess.IsAuthenticated())
}

func TestRequireAuth_PollingDisabled(t *testing.T) {
	sess := newFakeSession()
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rec.action("checkout"))
	sess.persistElsewhere("tok-from-other-window")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, p.Ran())
	sess.mu.Lock()
	assert.Zero(t, sess.refreshes)
	sess.mu.Unlock()

	sess.login("tok")
	waitDone(t, p)
	assert.True(t, p.Ran())
}

func TestClose_CompletesQueuedAndStopsWaiter(t *testing.T) {
	sess := newFakeSession()
	prompt := &fakePrompter{}
	g := New(sess, prompt, WithPollInterval(5*time.Millisecond))

	rec := &recorder{}
	p := g.RequireAuth(context.Background(), rec.action("checkout"))
	g.Close()
	g.Close()

	waitDone(t, p)
	assert.False(t, p.Ran())
	assert.ErrorIs(t, p.Err(), ErrClosed)
	_, _, open := prompt.state()
	assert.False(t, open)

	late := g.RequireAuth(context.Background(), rec.action("late"))
	waitDone(t, late)
	assert.ErrorIs(t, late.Err(), ErrClosed)

	sess.login("tok")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.got())
}

func TestGate_WithRealSession(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	require.NoError(t, migrations.Up(ctx, db))

	sess := session.New(session.NewCredentialStore(kv.NewSQLiteRepository(db)), nil)
	g := New(sess, nil, WithPollInterval(0))
	defer g.Close()

	var seenToken string
	p := g.RequireAuth(ctx, func(context.Context) error {
		seenToken = sess.Token()
		return nil
	})
	assert.False(t, p.Ran())

	require.NoError(t, sess.Establish(ctx, "opaque-token-value"))
	waitDone(t, p)
	assert.True(t, p.Ran())
	assert.Equal(t, "opaque-token-value", seenToken, "actions run with the credential in place")
}
