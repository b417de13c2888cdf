package stub

import (
	"errors"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, model.CartResponse{Items: s.store.cartItems(userID)})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := s.cartMutationParams(w, r)
	if !ok {
		return
	}

	items, err := s.store.addToCart(userID, productID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("product not found"))
		return
	}
	writeJSON(w, http.StatusCreated, model.CartResponse{Items: items})
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := s.cartMutationParams(w, r)
	if !ok {
		return
	}

	items, err := s.store.removeFromCart(userID, productID)
	if err != nil {
		if errors.Is(err, errCartItemNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("item not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, model.CartResponse{Items: items})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, model.CartResponse{Items: s.store.clearCart(userID)})
}

// cartMutationParams pulls the authenticated user and the product_id out of
// a cart or wishlist mutation request.
func (s *Server) cartMutationParams(w http.ResponseWriter, r *http.Request) (userID, productID int64, ok bool) {
	userID, found := userIDFromContext(r.Context())
	if !found {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return 0, 0, false
	}

	var req model.MutateCartRequest
	if !decodeBody(w, r, &req) {
		return 0, 0, false
	}
	if req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse("product_id is required"))
		return 0, 0, false
	}
	return userID, req.ProductID, true
}
