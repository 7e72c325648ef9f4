// internal/circulation/handler.go
package circulation

import (
	"encoding/json"
	"errors"
	"net/http"

	"assetnexus/internal/inventory"
	"assetnexus/pkg/eventstore"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/checkouts", h.HandleCheckout)
	r.Post("/checkins", h.HandleCheckin)
	return r
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(receipt)
}

func (h *Handler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.Checkin(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrAlreadyCheckedOut),
		errors.Is(err, inventory.ErrNotCheckedOut),
		errors.Is(err, eventstore.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrNotCheckoutable),
		errors.Is(err, inventory.ErrNotAssignable),
		errors.Is(err, inventory.ErrSelfAssignment):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
