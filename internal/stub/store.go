package stub

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbrands/storefront-go/internal/model"
)

var (
	errDuplicateEmail      = errors.New("email already taken")
	errUserNotFound        = errors.New("user not found")
	errNotVendor           = errors.New("vendor account required")
	errProductNotFound     = errors.New("product not found")
	errCartItemNotFound    = errors.New("item not found in cart")
	errOrderNotFound       = errors.New("order not found")
	errPaymentNotFound     = errors.New("payment not found")
	errPaymentNotConfirmed = errors.New("payment not confirmed")
	errInsufficientStock   = errors.New("insufficient stock")
)

type user struct {
	id           int64
	profile      model.Profile
	passwordHash []byte
	resetToken   string
	storeName    string
}

type payment struct {
	reference    string
	clientSecret string
	orderID      string
	userID       int64
	method       string
	amount       decimal.Decimal
	status       string
}

// store is the stub backend's entire state. One mutex guards everything;
// contention is irrelevant at development scale, and all locking stays in
// this file.
type store struct {
	mu sync.Mutex

	usersByEmail map[string]*user
	usersByID    map[int64]*user
	nextUserID   int64

	products []model.Product

	carts      map[int64][]model.CartItem
	nextLineID int64

	wishlists  map[int64][]model.WishlistItem
	nextWishID int64

	orders   map[int64][]model.Order
	payments map[string]*payment // keyed by reference
	secrets  map[string]*payment // keyed by client secret
	declined map[string]bool     // payment-method tokens that will not confirm
}

func newStore() *store {
	return &store{
		usersByEmail: make(map[string]*user),
		usersByID:    make(map[int64]*user),
		carts:        make(map[int64][]model.CartItem),
		wishlists:    make(map[int64][]model.WishlistItem),
		orders:       make(map[int64][]model.Order),
		payments:     make(map[string]*payment),
		secrets:      make(map[string]*payment),
		declined:     make(map[string]bool),
	}
}

func (s *store) createUser(profile model.Profile, passwordHash []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(profile.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return 0, errDuplicateEmail
	}

	s.nextUserID++
	u := &user{
		id:           s.nextUserID,
		profile:      profile,
		passwordHash: passwordHash,
		storeName:    "My Store",
	}
	s.usersByEmail[key] = u
	s.usersByID[u.id] = u
	return u.id, nil
}

// credentials returns the stored password hash for a login attempt.
func (s *store) credentials(email string) (int64, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return 0, nil, errUserNotFound
	}
	hash := make([]byte, len(u.passwordHash))
	copy(hash, u.passwordHash)
	return u.id, hash, nil
}

func (s *store) profileFor(userID int64) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return model.Profile{}, errUserNotFound
	}
	return u.profile, nil
}

func (s *store) updateProfile(userID int64, update model.ProfileUpdate) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return model.Profile{}, errUserNotFound
	}
	if update.FirstName != "" {
		u.profile.FirstName = update.FirstName
	}
	if update.LastName != "" {
		u.profile.LastName = update.LastName
	}
	return u.profile, nil
}

func (s *store) issueResetToken(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return "", errUserNotFound
	}
	u.resetToken = uuid.NewString()
	return u.resetToken, nil
}

func (s *store) resetPassword(resetToken string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.usersByID {
		if u.resetToken != "" && u.resetToken == resetToken {
			u.passwordHash = passwordHash
			u.resetToken = ""
			return nil
		}
	}
	return errUserNotFound
}

func (s *store) storeName(userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return "", errUserNotFound
	}
	return u.storeName, nil
}

func (s *store) setStoreName(userID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return errUserNotFound
	}
	if !u.profile.IsVendor {
		return errNotVendor
	}
	u.storeName = name
	return nil
}

func (s *store) addProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = int64(len(s.products) + 1)
	s.products = append(s.products, p)
	return p
}

func (s *store) listProducts(search, category string) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(search)
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *store) productByID(id int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productByIDLocked(id)
}

func (s *store) productByIDLocked(id int64) (model.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, errProductNotFound
}

func (s *store) cartItems(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.carts[userID])
}

// addToCart aggregates quantity when the product already has a line,
// mirroring the real backend. Returns the authoritative item list.
func (s *store) addToCart(userID, productID int64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.productByIDLocked(productID)
	if err != nil {
		return nil, err
	}

	items := s.carts[userID]
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity++
			return copyItems(items), nil
		}
	}

	s.nextLineID++
	s.carts[userID] = append(items, model.CartItem{
		ID:       s.nextLineID,
		Quantity: 1,
		Product:  product,
	})
	return copyItems(s.carts[userID]), nil
}

func (s *store) removeFromCart(userID, productID int64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].Product.ID == productID {
			s.carts[userID] = append(items[:i:i], items[i+1:]...)
			return copyItems(s.carts[userID]), nil
		}
	}
	return nil, errCartItemNotFound
}

func (s *store) clearCart(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = nil
	return []model.CartItem{}
}

func (s *store) wishlist(userID int64) []model.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.wishlists[userID]
	out := make([]model.WishlistItem, len(items))
	copy(out, items)
	return out
}

func (s *store) addToWishlist(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.productByIDLocked(productID)
	if err != nil {
		return err
	}

	for _, item := range s.wishlists[userID] {
		if item.Product.ID == productID {
			return nil
		}
	}

	s.nextWishID++
	s.wishlists[userID] = append(s.wishlists[userID], model.WishlistItem{
		ID:      s.nextWishID,
		Product: product,
	})
	return nil
}

func (s *store) removeFromWishlist(userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.wishlists[userID]
	for i := range items {
		if items[i].Product.ID == productID {
			s.wishlists[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return errProductNotFound
}

// createOrder checks stock, captures unit prices, decrements stock, and
// clears the user's cart, the same transaction the real backend runs.
func (s *store) createOrder(userID int64, req model.CreateOrderRequest) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Cart))
	for _, line := range req.Cart {
		product, err := s.productByIDLocked(line.ProductID)
		if err != nil {
			return model.Order{}, err
		}
		if product.Stock < line.Quantity {
			return model.Order{}, errInsufficientStock
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, model.OrderItem{
			Product:  product,
			Quantity: line.Quantity,
			Price:    product.Price,
		})
	}

	for _, line := range req.Cart {
		for i := range s.products {
			if s.products[i].ID == line.ProductID {
				s.products[i].Stock -= line.Quantity
			}
		}
	}

	order := model.Order{
		ID:              uuid.NewString(),
		Status:          model.OrderPending,
		TotalAmount:     total,
		ShippingAddress: req.Address,
		CreatedAt:       time.Now().UTC(),
		Items:           items,
	}
	s.orders[userID] = append(s.orders[userID], order)
	s.carts[userID] = nil
	return order, nil
}

func (s *store) ordersFor(userID int64) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]model.Order, len(s.orders[userID]))
	copy(orders, s.orders[userID])
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (s *store) orderByID(userID int64, orderID string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders[userID] {
		if order.ID == orderID {
			return order, nil
		}
	}
	return model.Order{}, errOrderNotFound
}

func (s *store) createPayment(p *payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments[p.reference] = p
	s.secrets[p.clientSecret] = p
}

// confirmPayment marks the payment behind a client secret confirmed and
// returns a copy of it.
func (s *store) confirmPayment(clientSecret string) (payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.secrets[clientSecret]
	if !ok {
		return payment{}, errPaymentNotFound
	}
	p.status = "confirmed"
	return *p, nil
}

// settlePayment completes a confirmed payment and flips its order to
// confirmed, the stub's version of webhook settlement.
func (s *store) settlePayment(reference string) (payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[reference]
	if !ok {
		return payment{}, errPaymentNotFound
	}
	if p.status != "confirmed" && p.status != "completed" {
		return *p, errPaymentNotConfirmed
	}
	p.status = "completed"

	orders := s.orders[p.userID]
	for i := range orders {
		if orders[i].ID == p.orderID {
			orders[i].Status = model.OrderConfirmed
		}
	}
	return *p, nil
}

func (s *store) markDeclined(methodToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declined[methodToken] = true
}

func (s *store) isDeclined(methodToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.declined[methodToken]
}

func copyItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, len(items))
	copy(out, items)
	return out
}
