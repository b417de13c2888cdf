package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kbrands/storefront-go/internal/api"
	"github.com/kbrands/storefront-go/internal/model"
	"github.com/kbrands/storefront-go/internal/token"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, handler http.Handler, opts ...ControllerOption) (*Controller, *token.MemStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := token.NewMemStore()
	opts = append([]ControllerOption{WithLogger(quietLogger())}, opts...)
	ctrl := New(api.NewClient(srv.URL), store, opts...)
	return ctrl, store
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func testItems(quantity int) []model.CartItem {
	return []model.CartItem{
		{ID: 1, Quantity: quantity, Product: model.Product{
			ID:    1,
			Name:  "Smartphone",
			Price: decimal.RequireFromString("699.99"),
		}},
	}
}

func TestInitialize_NoPersistedToken_NoNetworkCalls(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})

	ctrl, _ := newController(t, handler)
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	if n := atomic.LoadInt32(&requests); n != 0 {
		t.Errorf("expected 0 requests, got %d", n)
	}
	state := ctrl.Snapshot()
	if state.LoggedIn() || state.Profile != nil || len(state.Cart) != 0 {
		t.Errorf("expected logged-out empty state, got %+v", state)
	}
}

func TestLogin_PersistsTokenAndSynchronizes(t *testing.T) {
	var profileCalls, cartCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@b.com" || req.Password != "x" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid email or password"})
			return
		}
		respondJSON(w, http.StatusOK, model.AuthResponse{Access: "tok123"})
	})
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&profileCalls, 1)
		if r.Header.Get("Authorization") != "Bearer tok123" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "unauthorized"})
			return
		}
		respondJSON(w, http.StatusOK, model.Profile{Username: "testuser", Email: "a@b.com"})
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cartCalls, 1)
		respondJSON(w, http.StatusOK, model.CartResponse{Items: testItems(1)})
	})

	var navigated string
	ctrl, store := newController(t, mux, WithNavigator(NavigatorFunc(func(route string) {
		navigated = route
	})))

	if err := ctrl.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	state := ctrl.Snapshot()
	if state.Token != "tok123" {
		t.Errorf("expected token tok123, got %q", state.Token)
	}
	if persisted, _ := store.Load(); persisted != "tok123" {
		t.Errorf("expected persisted token tok123, got %q", persisted)
	}
	if n := atomic.LoadInt32(&profileCalls); n != 1 {
		t.Errorf("expected exactly 1 profile fetch, got %d", n)
	}
	if n := atomic.LoadInt32(&cartCalls); n != 1 {
		t.Errorf("expected exactly 1 cart fetch, got %d", n)
	}
	if state.Profile == nil || state.Profile.Username != "testuser" {
		t.Errorf("expected cached profile, got %+v", state.Profile)
	}
	if len(state.Cart) != 1 {
		t.Errorf("expected 1 cart item, got %d", len(state.Cart))
	}
	if navigated != RouteHome {
		t.Errorf("expected navigation to %q, got %q", RouteHome, navigated)
	}
}

func TestLogin_FailureSurfacesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid email or password"})
	})

	ctrl, store := newController(t, mux)
	err := ctrl.Login(context.Background(), "a@b.com", "wrong")

	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "invalid email or password" {
		t.Errorf("expected server message, got %q", err.Error())
	}
	if state := ctrl.Snapshot(); state.LoggedIn() {
		t.Errorf("expected state unchanged, got %+v", state)
	}
	if persisted, _ := store.Load(); persisted != "" {
		t.Errorf("expected no persisted token, got %q", persisted)
	}
}

func TestSynchronize_UnauthorizedProfileDropsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, model.CartResponse{Items: testItems(1)})
	})

	ctrl, store := newController(t, mux)
	if err := store.Save("stale-token"); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	state := ctrl.Snapshot()
	if state.Token != "" {
		t.Errorf("expected cleared token, got %q", state.Token)
	}
	if state.Profile != nil {
		t.Errorf("expected nil profile, got %+v", state.Profile)
	}
	if persisted, _ := store.Load(); persisted != "" {
		t.Errorf("expected persisted token erased, got %q", persisted)
	}
}

func TestSynchronize_CartFailureKeepsCachedCart(t *testing.T) {
	var failCart atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, model.Profile{Username: "testuser"})
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		if failCart.Load() {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		respondJSON(w, http.StatusOK, model.CartResponse{Items: testItems(2)})
	})

	ctrl, store := newController(t, mux)
	store.Save("tok123")
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(ctrl.Snapshot().Cart); got != 1 {
		t.Fatalf("expected populated cart, got %d items", got)
	}

	failCart.Store(true)
	ctrl.Synchronize(context.Background())

	state := ctrl.Snapshot()
	if len(state.Cart) != 1 || state.Cart[0].Quantity != 2 {
		t.Errorf("expected stale cart preserved, got %+v", state.Cart)
	}
}

func TestAddToCart_ReplacesCartWholesale(t *testing.T) {
	// Server aggregates to a quantity the client could not derive locally.
	canonical := testItems(5)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, model.CartResponse{Items: canonical})
	})

	ctrl, _ := newController(t, mux)
	if err := ctrl.AddToCart(context.Background(), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	state := ctrl.Snapshot()
	if len(state.Cart) != 1 || state.Cart[0].Quantity != 5 {
		t.Errorf("expected server's canonical list, got %+v", state.Cart)
	}
}

func TestAddToCart_FailureLeavesCartUnchanged(t *testing.T) {
	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		respondJSON(w, http.StatusCreated, model.CartResponse{Items: testItems(1)})
	})

	ctrl, _ := newController(t, mux)
	if err := ctrl.AddToCart(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	if err := ctrl.AddToCart(context.Background(), 99); err == nil {
		t.Fatal("expected error")
	}

	state := ctrl.Snapshot()
	if len(state.Cart) != 1 || state.Cart[0].Quantity != 1 {
		t.Errorf("expected cart unchanged after failed mutation, got %+v", state.Cart)
	}
}

func TestRemoveFromCart_SameProductNeverSentConcurrently(t *testing.T) {
	release := make(chan struct{})
	var removeCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/remove/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&removeCalls, 1)
		<-release
		respondJSON(w, http.StatusOK, model.CartResponse{Items: nil})
	})

	ctrl, _ := newController(t, mux)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.RemoveFromCart(context.Background(), 1)
	}()

	// Wait for the first request to reach the server.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&removeCalls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first remove never reached the server")
		}
		time.Sleep(time.Millisecond)
	}

	if err := ctrl.RemoveFromCart(context.Background(), 1); !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("expected ErrMutationInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first remove failed: %v", err)
	}
	if n := atomic.LoadInt32(&removeCalls); n != 1 {
		t.Errorf("expected exactly 1 remove request, got %d", n)
	}

	// The guard lifts once the first mutation resolves.
	if err := ctrl.RemoveFromCart(context.Background(), 1); err != nil {
		t.Errorf("expected second remove to succeed after first resolved, got %v", err)
	}
}

func TestLogout_ThenInitialize_NoNetworkCalls(t *testing.T) {
	var requests int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		respondJSON(w, http.StatusOK, model.Profile{Username: "testuser"})
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		respondJSON(w, http.StatusOK, model.CartResponse{Items: testItems(1)})
	})

	var navigations int
	ctrl, store := newController(t, mux, WithNavigator(NavigatorFunc(func(string) {
		navigations++
	})))
	store.Save("tok123")
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	before := atomic.LoadInt32(&requests)
	ctrl.Logout()

	if n := atomic.LoadInt32(&requests); n != before {
		t.Errorf("logout issued %d network calls", n-before)
	}
	if persisted, _ := store.Load(); persisted != "" {
		t.Errorf("expected persisted token erased, got %q", persisted)
	}
	if navigations != 1 {
		t.Errorf("expected 1 navigation signal, got %d", navigations)
	}

	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&requests); n != before {
		t.Errorf("initialize after logout issued %d network calls", n-before)
	}

	state := ctrl.Snapshot()
	if state.Token != "" || state.Profile != nil || len(state.Cart) != 0 {
		t.Errorf("expected empty state after logout+initialize, got %+v", state)
	}

	// Logout is idempotent.
	ctrl.Logout()
	if n := atomic.LoadInt32(&requests); n != before {
		t.Error("second logout issued network calls")
	}
}

func TestInitialize_CanceledContextKeepsPersistedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, model.Profile{Username: "testuser"})
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, model.CartResponse{Items: testItems(1)})
	})

	ctrl, store := newController(t, mux)
	store.Save("tok123")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ctrl.Initialize(ctx); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// A canceled synchronize is discarded, never applied as a logout.
	if got := ctrl.Snapshot().Token; got != "tok123" {
		t.Errorf("expected token kept, got %q", got)
	}
	if persisted, _ := store.Load(); persisted != "tok123" {
		t.Errorf("expected persisted token kept, got %q", persisted)
	}
}

func TestSynchronize_CanceledMidFlightDiscarded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	})
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	})

	ctrl, store := newController(t, mux)
	store.Save("tok123")
	ctrl.Initialize(ctx)

	state := ctrl.Snapshot()
	if state.Token != "tok123" {
		t.Errorf("expected token kept, got %q", state.Token)
	}
	if state.Profile != nil {
		t.Errorf("expected no profile applied, got %+v", state.Profile)
	}
	if persisted, _ := store.Load(); persisted != "tok123" {
		t.Errorf("expected persisted token kept, got %q", persisted)
	}
}

func TestAddToCart_CanceledContextLeavesCartUnchanged(t *testing.T) {
	var fill atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
		if fill.Load() {
			io.Copy(io.Discard, r.Body)
			cancel()
			<-r.Context().Done()
			return
		}
		respondJSON(w, http.StatusCreated, model.CartResponse{Items: testItems(1)})
	})

	ctrl, _ := newController(t, mux)
	if err := ctrl.AddToCart(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	fill.Store(true)
	if err := ctrl.AddToCart(ctx, 1); err == nil {
		t.Fatal("expected error from canceled mutation")
	}

	state := ctrl.Snapshot()
	if len(state.Cart) != 1 || state.Cart[0].Quantity != 1 {
		t.Errorf("expected cart unchanged after canceled mutation, got %+v", state.Cart)
	}
}

func TestSubscribe_SeesStateChanges(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, model.CartResponse{Items: testItems(3)})
	})

	ctrl, _ := newController(t, mux)

	var last State
	ctrl.Subscribe(func(s State) { last = s })

	if err := ctrl.AddToCart(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if len(last.Cart) != 1 || last.Cart[0].Quantity != 3 {
		t.Errorf("listener saw %+v", last.Cart)
	}
}

func TestCartTotal_FormatsTwoDecimals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/add/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, model.CartResponse{Items: []model.CartItem{
			{ID: 1, Quantity: 2, Product: model.Product{ID: 1, Price: decimal.RequireFromString("9.99")}},
		}})
	})

	ctrl, _ := newController(t, mux)
	if got := ctrl.CartTotal(); got != "0.00" {
		t.Errorf("expected 0.00 for empty cart, got %s", got)
	}

	if err := ctrl.AddToCart(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if got := ctrl.CartTotal(); got != "19.98" {
		t.Errorf("expected 19.98, got %s", got)
	}
}
