package auth

import (
	"context"
	"sync"
)

// AuthAPI is the slice of the backend the gate needs: credential exchange.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password string) (string, error)
}

// CredentialStore persists the token across restarts.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Gate owns the in-memory credential and derives the session from it:
// authenticated means a token is present. It is the only writer; readers use
// IsAuthenticated and Token, both synchronous and safe on a render path.
type Gate struct {
	api   AuthAPI
	store CredentialStore

	mu     sync.RWMutex
	token  string
	loaded bool
	subs   []func(authenticated bool)
}

func NewGate(api AuthAPI, store CredentialStore) *Gate {
	return &Gate{api: api, store: store}
}

// Init performs the one-time read of the persisted credential. Rendering
// decisions for protected views must wait until Ready reports true, so a
// stored session never flashes the login screen and vice versa.
func (g *Gate) Init(ctx context.Context) error {
	token, err := g.store.Load(ctx)

	g.mu.Lock()
	g.loaded = true
	if err == nil {
		g.token = token
	}
	g.mu.Unlock()
	g.notify()

	return err
}

// Ready reports whether the initial credential read has completed.
func (g *Gate) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// IsAuthenticated is a pure read of the derived session state.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token != ""
}

// Token returns the current credential for outgoing requests. It is read
// fresh at call time; a logout between two calls is always observed.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Login exchanges credentials with the server and, on success, persists the
// returned token and flips the session to authenticated. A failed attempt
// leaves the session exactly as it was.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	token, err := g.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return g.adopt(ctx, token)
}

// Signup is symmetric to Login for new accounts.
func (g *Gate) Signup(ctx context.Context, email, password string) error {
	token, err := g.api.Signup(ctx, email, password)
	if err != nil {
		return err
	}
	return g.adopt(ctx, token)
}

func (g *Gate) adopt(ctx context.Context, token string) error {
	if err := g.store.Save(ctx, token); err != nil {
		return err
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	g.notify()
	return nil
}

// Logout clears the credential unconditionally. It is idempotent and never
// fails: a store error cannot keep the session alive.
func (g *Gate) Logout(ctx context.Context) {
	_ = g.store.Clear(ctx)

	g.mu.Lock()
	changed := g.token != ""
	g.token = ""
	g.mu.Unlock()
	if changed {
		g.notify()
	}
}

// Subscribe registers fn to run after every session change. Subscribers are
// invoked synchronously with the new derived state.
func (g *Gate) Subscribe(fn func(authenticated bool)) {
	g.mu.Lock()
	g.subs = append(g.subs, fn)
	g.mu.Unlock()
}

func (g *Gate) notify() {
	g.mu.RLock()
	authed := g.token != ""
	subs := make([]func(bool), len(g.subs))
	copy(subs, g.subs)
	g.mu.RUnlock()

	for _, fn := range subs {
		fn(authed)
	}
}
