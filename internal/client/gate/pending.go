package gate

import (
	"context"
	"errors"
	"sync"
)

// Reauth wraps the error of an action whose credential was rejected. The
// gate then keeps the action pending and runs it again after the next
// sign-in instead of completing it.
func Reauth(err error) error { return &reauthError{err: err} }

type reauthError struct{ err error }

func (e *reauthError) Error() string { return e.err.Error() }
func (e *reauthError) Unwrap() error { return e.err }

// Pending tracks one action passed to RequireAuth.
type Pending struct {
	ctx       context.Context
	cancel    context.CancelFunc
	action    Action
	stopWatch func() bool

	once sync.Once
	done chan struct{}
	ran  bool
	err  error
}

func newPending(ctx context.Context, action Action) *Pending {
	pctx, cancel := context.WithCancel(ctx)
	return &Pending{
		ctx:    pctx,
		cancel: cancel,
		action: action,
		done:   make(chan struct{}),
	}
}

// Cancel drops the action if it has not started yet.
func (p *Pending) Cancel() { p.cancel() }

// Done is closed once the action ran or was dropped.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Ran reports whether the action was executed. Valid after Done is closed.
func (p *Pending) Ran() bool {
	select {
	case <-p.done:
		return p.ran
	default:
		return false
	}
}

// Err is the action's result, or why it never ran. Valid after Done is
// closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// run executes the action unless it was cancelled. When the action asks
// for a new sign-in, p stays incomplete and the cause is returned.
func (p *Pending) run() error {
	if p.stopWatch != nil {
		p.stopWatch()
	}
	if err := p.ctx.Err(); err != nil {
		p.complete(false, err)
		return nil
	}
	err := p.action(p.ctx)
	var r *reauthError
	if errors.As(err, &r) {
		return r.err
	}
	p.complete(true, err)
	return nil
}

func (p *Pending) complete(ran bool, err error) {
	p.once.Do(func() {
		p.ran = ran
		p.err = err
		close(p.done)
		p.cancel()
	})
}
