// Package gate defers actions that need an authenticated customer.
//
// RequireAuth runs the action at once when the session is authenticated.
// Otherwise it opens the sign-in prompt, queues the action and returns. When
// the session becomes authenticated, either through its own event channel or
// because a poll finds a credential persisted by another process, the prompt
// is closed and every queued action runs exactly once, oldest first.
//
// An action that finds its credential rejected returns Reauth(err) after
// demoting the session; it is queued again, behind the actions already
// waiting, and its Pending completes only once it runs to an outcome.
package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// ErrClosed completes actions still queued when the gate shuts down.
var ErrClosed = errors.New("auth gate closed")

// DefaultPollInterval is how often the persisted credential is checked
// while actions are waiting.
const DefaultPollInterval = 300 * time.Millisecond

// Action is a protected operation. ctx is cancelled if the caller cancels
// the pending action.
type Action func(ctx context.Context) error

// Session is the part of the auth session the gate needs.
type Session interface {
	IsAuthenticated() bool
	Authenticated() <-chan struct{}
	// Refresh re-reads the persisted credential and reports whether the
	// session is authenticated afterwards.
	Refresh(ctx context.Context) bool
}

// Prompter shows and hides the sign-in prompt. Both methods are called with
// the gate's lock held and must not call back into the Gate.
type Prompter interface {
	Open(ctx context.Context)
	Close(ctx context.Context)
}

type nopPrompter struct{}

func (nopPrompter) Open(context.Context)  {}
func (nopPrompter) Close(context.Context) {}

type Gate struct {
	session  Session
	prompter Prompter
	poll     time.Duration
	log      logging.Logger

	mu         sync.Mutex
	queue      []*Pending
	waiting    bool
	promptOpen bool
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Gate)

// WithPollInterval sets the credential poll interval; 0 disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(g *Gate) {
		if d >= 0 {
			g.poll = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.log = l.With("component", "gate")
		}
	}
}

func New(session Session, prompter Prompter, opts ...Option) *Gate {
	if prompter == nil {
		prompter = nopPrompter{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gate{
		session:  session,
		prompter: prompter,
		poll:     DefaultPollInterval,
		log:      logging.Nop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequireAuth runs action now when authenticated, otherwise queues it until
// the session becomes authenticated. It never blocks on authentication.
func (g *Gate) RequireAuth(ctx context.Context, action Action) *Pending {
	p := newPending(ctx, action)

	if g.session.IsAuthenticated() {
		g.execute(p)
		return p
	}
	g.enqueue(p)
	return p
}

// execute runs p and queues it again if it asked for a new sign-in.
func (g *Gate) execute(p *Pending) {
	cause := p.run()
	if cause == nil {
		return
	}
	if g.session.IsAuthenticated() {
		// nothing to wait for
		p.complete(true, cause)
		return
	}
	g.log.Info(p.ctx, "credential rejected, waiting for sign-in again")
	g.enqueue(p)
}

func (g *Gate) enqueue(p *Pending) {
	if p.stopWatch != nil {
		p.stopWatch()
	}
	p.stopWatch = context.AfterFunc(p.ctx, func() { g.drop(p) })

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		p.stopWatch()
		p.complete(false, ErrClosed)
		return
	}
	if err := p.ctx.Err(); err != nil {
		g.mu.Unlock()
		p.complete(false, err)
		return
	}
	g.queue = append(g.queue, p)
	if !g.promptOpen {
		// under mu so Open and Close cannot be reordered
		g.promptOpen = true
		g.prompter.Open(p.ctx)
	}
	if !g.waiting {
		g.waiting = true
		g.wg.Add(1)
		go g.wait()
	}
	g.mu.Unlock()

	g.log.Debug(p.ctx, "action queued until sign-in")
}

// Queued is the number of actions waiting for authentication.
func (g *Gate) Queued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Close completes every queued action with ErrClosed and stops the waiter.
// It is safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	queued := g.queue
	g.queue = nil
	g.closePromptLocked(context.Background())
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()

	for _, p := range queued {
		p.stopWatch()
		p.complete(false, ErrClosed)
	}
}

func (g *Gate) closePromptLocked(ctx context.Context) {
	if g.promptOpen {
		g.promptOpen = false
		g.prompter.Close(ctx)
	}
}

// wait blocks until the session is authenticated or the gate closes, then
// flushes the queue.
func (g *Gate) wait() {
	defer g.wg.Done()

	var tick <-chan time.Time
	if g.poll > 0 {
		ticker := time.NewTicker(g.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		authed := g.session.Authenticated()
		select {
		case <-g.ctx.Done():
			g.mu.Lock()
			g.waiting = false
			g.mu.Unlock()
			return
		case <-authed:
		case <-tick:
			if !g.session.Refresh(g.ctx) {
				continue
			}
		}
		if g.flush() {
			return
		}
	}
}

// flush runs the queued actions in order. It returns false when the session
// was lost again before the queue could be taken, so waiting goes on.
func (g *Gate) flush() bool {
	g.mu.Lock()
	if !g.session.IsAuthenticated() {
		g.mu.Unlock()
		return false
	}
	queued := g.queue
	g.queue = nil
	g.waiting = false
	g.closePromptLocked(g.ctx)
	g.mu.Unlock()

	g.log.Debug(g.ctx, "session authenticated, resuming queued actions", "count", len(queued))
	for _, p := range queued {
		if !g.session.IsAuthenticated() {
			// an earlier action lost the session
			g.enqueue(p)
			continue
		}
		g.execute(p)
	}
	return true
}

// drop removes a cancelled action from the queue.
func (g *Gate) drop(p *Pending) {
	g.mu.Lock()
	removed := false
	for i, q := range g.queue {
		if q == p {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
			removed = true
			break
		}
	}
	if removed && len(g.queue) == 0 {
		g.closePromptLocked(context.Background())
	}
	g.mu.Unlock()

	if removed {
		p.complete(false, p.ctx.Err())
	}
}
