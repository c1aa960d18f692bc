package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/service"
)

type OrdersHandler struct {
	orders *service.OrderService
}

func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type OrderLineDTO struct {
	ProductID     string            `json:"productId"`
	Quantity      int               `json:"quantity"`
	Size          string            `json:"size,omitempty"`
	Color         string            `json:"color,omitempty"`
	Customization map[string]string `json:"customization,omitempty"`
}

type CreateOrderRequestDTO struct {
	Items           []OrderLineDTO `json:"items"`
	ShippingAddress domain.Address `json:"shippingAddress"`
	BillingAddress  domain.Address `json:"billingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

type CancelOrderRequestDTO struct {
	Reason string `json:"reason,omitempty"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// POST /api/v1/orders
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment method")
		return
	}
	if req.ShippingAddress.Street == "" || req.ShippingAddress.City == "" {
		respondError(w, http.StatusBadRequest, "invalid_address", "shipping address is incomplete")
		return
	}

	lines := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "item quantity must be positive")
			return
		}
		lines = append(lines, domain.CartItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Size:          item.Size,
			Color:         item.Color,
			Customization: item.Customization,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), claims.UserID, lines,
		req.ShippingAddress, req.BillingAddress, method)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), claims.UserID, false)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/admin/orders
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), claims.UserID, true)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), claims.UserID, claims.Role == domain.RoleAdmin, chi.URLParam(r, "order_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// PUT /api/v1/orders/{order_id}/pay
func (h *OrdersHandler) Pay(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var result domain.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.MarkPaid(r.Context(), claims.UserID, claims.Role == domain.RoleAdmin, chi.URLParam(r, "order_id"), result)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// POST /api/v1/orders/{order_id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req CancelOrderRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	order, err := h.orders.CancelOrder(r.Context(), claims.UserID, claims.Role == domain.RoleAdmin, chi.URLParam(r, "order_id"), req.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// PUT /api/v1/admin/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "order_id"), domain.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
