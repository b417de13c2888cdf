package stub

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products := s.store.listProducts(query.Get("search"), query.Get("category"))
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid product id"))
		return
	}

	product, err := s.store.productByID(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("product not found"))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, s.store.wishlist(userID))
}

func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := s.cartMutationParams(w, r)
	if !ok {
		return
	}

	if err := s.store.addToWishlist(userID, productID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("product not found"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Product added to wishlist"})
}

func (s *Server) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := s.cartMutationParams(w, r)
	if !ok {
		return
	}

	if err := s.store.removeFromWishlist(userID, productID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("product not in wishlist"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product removed from wishlist"})
}
