package stub

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kbrands/storefront-go/internal/model"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, s.store.ordersFor(userID))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	order, err := s.store.orderByID(userID, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Cart) == 0 || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("Cart and address required"))
		return
	}

	order, err := s.store.createOrder(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, errProductNotFound):
			writeJSON(w, http.StatusBadRequest, errorResponse("Invalid product"))
		case errors.Is(err, errInsufficientStock):
			writeJSON(w, http.StatusBadRequest, errorResponse("Insufficient stock"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
