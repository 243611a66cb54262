package handlers

import (
	"errors"
	"net/http"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
)

func currentUser(r *http.Request) (*models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthorized("not authenticated")
	}
	return user, nil
}

type orderCreateRequest struct {
	DeliveryAddrID *int64                   `json:"delivery_addr_id"`
	Items          []models.OrderItemCreate `json:"items"`
}

func (req *orderCreateRequest) validate() (*models.OrderCreate, error) {
	if req.DeliveryAddrID == nil {
		return nil, apperr.InvalidInput("delivery_addr_id is required")
	}
	return &models.OrderCreate{DeliveryAddrID: *req.DeliveryAddrID, Items: req.Items}, nil
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req orderCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.validate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), user.ID, in)
	h.countOrder(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (h *Handler) countOrder(err error) {
	if h.metrics == nil {
		return
	}
	outcome := "created"
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		outcome = "rejected"
	case err != nil:
		outcome = "failed"
	}
	h.metrics.Orders.WithLabelValues(outcome).Inc()
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := h.orders.GetUserOrders(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.orders.GetOrderDetails(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}
