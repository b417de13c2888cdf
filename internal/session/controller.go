// Package session owns the client-side session state: bearer token, cached
// profile, and the server-authoritative cart. All transitions go through the
// Controller; views read snapshots and subscribe to changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kbrands/storefront-go/internal/api"
	"github.com/kbrands/storefront-go/internal/model"
	"github.com/kbrands/storefront-go/internal/token"
)

// ErrMutationInFlight is returned when a cart mutation is requested for a
// product whose previous mutation has not resolved yet. Same-product
// mutations are never sent concurrently.
var ErrMutationInFlight = errors.New("cart mutation already in flight for this product")

// RouteHome is the navigation target signalled after login and logout.
const RouteHome = "/"

// Navigator receives navigation signals emitted by session transitions.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// API is the slice of the storefront client the controller drives.
// *api.Client satisfies it.
type API interface {
	Login(ctx context.Context, email, password string) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Profile(ctx context.Context) (model.Profile, error)
	Cart(ctx context.Context) ([]model.CartItem, error)
	AddToCart(ctx context.Context, productID int64) ([]model.CartItem, error)
	RemoveFromCart(ctx context.Context, productID int64) ([]model.CartItem, error)
	SetToken(token string)
	ClearToken()
}

// State is an immutable snapshot of the controller's observable state.
// Profile is non-nil only while Token is non-empty.
type State struct {
	Token   string
	Profile *model.Profile
	Cart    []model.CartItem
}

// LoggedIn reports whether a session token is present.
func (s State) LoggedIn() bool { return s.Token != "" }

// Controller is the session state machine. It synchronizes token, profile,
// and cart with the backend on token changes and cart mutations.
type Controller struct {
	api   API
	store token.Store
	nav   Navigator
	log   *slog.Logger

	mu        sync.Mutex
	token     string
	profile   *model.Profile
	cart      []model.CartItem
	inflight  map[int64]bool
	listeners []func(State)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithNavigator installs the navigation sink for login/logout transitions.
func WithNavigator(nav Navigator) ControllerOption {
	return func(c *Controller) { c.nav = nav }
}

// WithLogger replaces the default slog logger.
func WithLogger(log *slog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// New creates a Controller in the logged-out state.
func New(apiClient API, store token.Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:      apiClient,
		store:    store,
		nav:      NavigatorFunc(func(string) {}),
		log:      slog.Default(),
		inflight: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	cart := make([]model.CartItem, len(c.cart))
	copy(cart, c.cart)
	return State{Token: c.token, Profile: c.profile, Cart: cart}
}

// Subscribe registers fn to be called after every state change.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// notify snapshots state and invokes listeners outside the lock, so a
// listener may call back into the controller.
func (c *Controller) notify() {
	c.mu.Lock()
	state := c.snapshotLocked()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// Initialize restores a persisted session at process start. With no
// persisted token the state stays logged out and no network calls are made.
// With one, the token is installed and a full synchronization runs.
func (c *Controller) Initialize(ctx context.Context) error {
	persisted, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("loading persisted token: %w", err)
	}
	if persisted == "" {
		return nil
	}

	c.api.SetToken(persisted)
	c.mu.Lock()
	c.token = persisted
	c.mu.Unlock()
	c.notify()

	c.Synchronize(ctx)
	return nil
}

// Synchronize refreshes profile and cart from the backend. The two fetches
// run concurrently and independently: the cart fetch is not gated on the
// profile fetch succeeding. A failed profile fetch is treated as an invalid
// or expired token and drops the session; a failed cart fetch keeps the
// cached cart, since stale contents beat flashing an empty cart on a
// transient error.
func (c *Controller) Synchronize(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		profile, err := c.api.Profile(ctx)
		if err != nil {
			// A canceled fetch says nothing about the token; only a
			// completed failure may drop the session.
			if ctx.Err() != nil {
				return
			}
			c.expireSession(err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.mu.Lock()
		c.profile = &profile
		c.mu.Unlock()
		c.notify()
	}()

	go func() {
		defer wg.Done()
		items, err := c.api.Cart(ctx)
		if err != nil {
			c.log.Warn("cart fetch failed, keeping cached cart", "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.mu.Lock()
		c.cart = items
		c.mu.Unlock()
		c.notify()
	}()

	wg.Wait()
}

// expireSession is the sole path by which an invalid token self-heals to a
// logged-out state: the persisted token is erased and token and profile are
// cleared. The cart is left alone; Logout is the only cart-clearing path.
func (c *Controller) expireSession(cause error) {
	c.log.Warn("profile fetch failed, dropping session", "error", cause)
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clearing persisted token failed", "error", err)
	}
	c.api.ClearToken()

	c.mu.Lock()
	c.token = ""
	c.profile = nil
	c.mu.Unlock()
	c.notify()
}

// Login authenticates with the backend. On success the returned token is
// persisted and installed, a full synchronization runs, and navigation to
// the home view is signalled. On failure the state is unchanged and the
// error carries the server-provided message when there is one.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return surface(err, "login failed")
	}
	c.adoptToken(ctx, resp.Access)
	return nil
}

// Register creates an account; a successful registration logs the new user
// in with the same contract as Login.
func (c *Controller) Register(ctx context.Context, req model.RegisterRequest) error {
	resp, err := c.api.Register(ctx, req)
	if err != nil {
		return surface(err, "registration failed")
	}
	c.adoptToken(ctx, resp.Access)
	return nil
}

func (c *Controller) adoptToken(ctx context.Context, tok string) {
	if err := c.store.Save(tok); err != nil {
		c.log.Warn("persisting token failed", "error", err)
	}
	c.api.SetToken(tok)

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	c.notify()

	c.Synchronize(ctx)
	c.nav.Navigate(RouteHome)
}

// Logout is a synchronous, idempotent, purely client-side teardown: it
// erases the persisted token, clears token, profile, and cart, and signals
// navigation home. No network calls.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clearing persisted token failed", "error", err)
	}
	c.api.ClearToken()

	c.mu.Lock()
	c.token = ""
	c.profile = nil
	c.cart = nil
	c.mu.Unlock()
	c.notify()

	c.nav.Navigate(RouteHome)
}

// AddToCart asks the backend to add one unit of a product and replaces the
// cached cart with the returned authoritative list.
func (c *Controller) AddToCart(ctx context.Context, productID int64) error {
	return c.mutateCart(ctx, productID, c.api.AddToCart)
}

// RemoveFromCart asks the backend to drop a product's line and replaces the
// cached cart with the returned authoritative list.
func (c *Controller) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.mutateCart(ctx, productID, c.api.RemoveFromCart)
}

func (c *Controller) mutateCart(ctx context.Context, productID int64, op func(context.Context, int64) ([]model.CartItem, error)) error {
	c.mu.Lock()
	if c.inflight[productID] {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	c.inflight[productID] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, productID)
		c.mu.Unlock()
	}()

	items, err := op(ctx, productID)
	if err != nil {
		c.log.Warn("cart mutation failed", "product_id", productID, "error", err)
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.mu.Lock()
	c.cart = items
	c.mu.Unlock()
	c.notify()
	return nil
}

// surface keeps the server-provided message when there is one and falls
// back to a generic one for transport-level failures.
func surface(err error, fallback string) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return fmt.Errorf("%s: %w", fallback, err)
}

// CartTotal formats the current cart total with two fixed decimals.
func (c *Controller) CartTotal() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.FormatAmount(model.CartTotal(c.cart))
}
