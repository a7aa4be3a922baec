package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/client/guest"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/filex"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const resumeCheckInterval = 50 * time.Millisecond

type App struct {
	auth    services.AuthService
	shop    services.ShopService
	account services.ProfileService
	log     logging.Logger

	in       *bufio.Reader
	out      *syncWriter
	terminal bool

	// customer is the display name after a login in this process.
	customer string
	// resumed holds gated commands queued while signed out.
	mu      sync.Mutex
	resumed []*gate.Pending

	closeStore func() error
}

// NewApp wires local storage, the API client, the session and the services
// from cfg. Local storage that cannot be opened is logged and the storefront
// runs without persistence.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := newApp(os.Stdin, os.Stdout, log)
	a.terminal = term.IsTerminal(int(os.Stdin.Fd()))

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		// OpenLocalStore reports the failure and falls back
		a.log.Warn(ctx, "could not create database directory", "err", err)
	}
	repo, closeStore := client.OpenLocalStore(ctx, cfg.DatabasePath, a.log)
	a.closeStore = closeStore

	api := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(a.log),
	)
	a.wire(api, repo, cfg.AuthPollInterval, cfg.MergeGuestWishlist)

	if a.auth.Restore(ctx) {
		a.log.Info(ctx, "restored session from local storage")
	}
	return a, nil
}

func newApp(in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		in:  bufio.NewReader(in),
		out: &syncWriter{w: out},
		log: log,
	}
}

// wire builds the session, the gate and the services on top of api and repo.
func (a *App) wire(api client.Client, repo kv.Repository, poll time.Duration, mergeWishlist bool) {
	store := guest.NewStore(repo, a.log)
	sess := session.New(session.NewCredentialStore(repo), a.log)
	g := gate.New(sess, notice{w: a.out, authed: sess.IsAuthenticated},
		gate.WithPollInterval(poll),
		gate.WithLogger(a.log),
	)
	merge := services.NewMergeService(api, store, a.log, services.WithWishlistMerge(mergeWishlist))
	a.auth = services.NewAuthService(api, sess, g, merge, a.log)
	a.shop = services.NewShopService(api, store, a.auth, a.log)
	a.account = services.NewProfileService(api, a.auth, a.log)
}

// Run executes the REPL until the user exits or ctx is cancelled, then
// releases gated commands still waiting for sign-in.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.closeStore == nil {
			return
		}
		if err := a.closeStore(); err != nil {
			a.log.Warn(context.Background(), "closing local storage", "err", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	replCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return a.repl(replCtx)
	})
	g.Go(func() error {
		<-replCtx.Done()
		a.auth.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// fail prints the customer-facing form of err.
func (a *App) fail(err error) {
	a.println(services.UserMessage(err))
}

// track remembers p until it completes so a later sign-in can wait for it.
func (a *App) track(p *gate.Pending) {
	select {
	case <-p.Done():
		return
	default:
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resumed = append(a.resumed, p)
}

// awaitResumed blocks until the commands released by a sign-in finished, so
// their output lands before the next prompt. Commands whose credential is
// rejected again stay tracked for the next sign-in.
func (a *App) awaitResumed(ctx context.Context) {
	a.mu.Lock()
	pending := a.resumed
	a.resumed = nil
	a.mu.Unlock()

	tick := time.NewTicker(resumeCheckInterval)
	defer tick.Stop()
	for i := 0; i < len(pending); {
		select {
		case <-pending[i].Done():
			i++
		case <-ctx.Done():
			return
		case <-tick.C:
			if !a.auth.IsAuthenticated() {
				for _, p := range pending[i:] {
					a.track(p)
				}
				return
			}
		}
	}
}

func (a *App) waiting() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, p := range a.resumed {
		select {
		case <-p.Done():
		default:
			n++
		}
	}
	return n
}

// syncWriter serializes output from the REPL and from resumed commands,
// which run on the gate's goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// notice is the sign-in prompt shown while gated commands wait.
type notice struct {
	w      io.Writer
	authed func() bool
}

func (n notice) Open(context.Context) {
	fmt.Fprintln(n.w, "Please sign in to continue: type 'login' or 'signup'. Your request will resume afterwards.")
}

// Close also runs when waiting commands are cancelled or the app exits;
// only a sign-in is announced.
func (n notice) Close(context.Context) {
	if n.authed() {
		fmt.Fprintln(n.w, "Signed in, resuming your request.")
	}
}
