package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/events"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/rs/zerolog"
)

const (
	// TaxRate applied to every order subtotal.
	TaxRate = 0.10
	// FlatShipping charged on any non-empty order.
	FlatShipping = 10.0
)

// OrderService converts cart lines into durable, priced orders while
// protecting the no-oversell invariant, and owns the order lifecycle after
// creation.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	cart      *CartService
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	cart *CartService,
	publisher events.Publisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		cart:      cart,
		publisher: publisher,
		logger:    logger,
	}
}

type appliedLine struct {
	productID string
	quantity  int
}

// CreateOrder validates each submitted line against live stock, decrements
// stock, prices the order from the products' current effective prices and
// persists it with status pending.
//
// The stock check and decrement happen in a single conditional update per
// line, so two concurrent orders cannot both take the last units. If a later
// line fails, decrements already applied for this request are compensated
// before the error is returned, leaving stock as it was.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	userID string,
	lines []domain.CartItem,
	shippingAddress, billingAddress domain.Address,
	paymentMethod domain.PaymentMethod,
) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		subtotal float64
		items    []domain.OrderItem
		applied  []appliedLine
	)

	for _, line := range lines {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			s.compensate(ctx, applied)
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrProductNotFound)
			}
			return nil, fmt.Errorf("failed to load product %s: %w", line.ProductID, err)
		}

		if err := s.products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
			s.compensate(ctx, applied)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, fmt.Errorf("insufficient stock for %s: %w", product.Name, repository.ErrInsufficientStock)
			}
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", product.Name, err)
		}
		applied = append(applied, appliedLine{productID: product.ID, quantity: line.Quantity})

		// The server reprices from the live product here; any price the cart
		// captured at add time is display-only.
		price := product.EffectivePrice()
		subtotal += price * float64(line.Quantity)

		items = append(items, domain.OrderItem{
			ProductID:     product.ID,
			Name:          product.Name,
			Quantity:      line.Quantity,
			Price:         price,
			Size:          line.Size,
			Color:         line.Color,
			Customization: line.Customization,
		})
	}

	taxAmount := subtotal * TaxRate
	shippingAmount := 0.0
	if subtotal > 0 {
		shippingAmount = FlatShipping
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		PaymentMethod:   paymentMethod,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		ShippingAmount:  shippingAmount,
		TotalAmount:     subtotal + taxAmount + shippingAmount,
		OrderStatus:     domain.OrderStatusPending,
		RefundStatus:    domain.RefundNone,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.compensate(ctx, applied)
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// The stored cart served its purpose; clearing it is best-effort.
	if s.cart != nil {
		if err := s.cart.ClearCart(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to clear cart after order")
		}
	}

	s.publishCreated(ctx, order)
	return order, nil
}

// compensate restores stock decrements applied earlier in a request that
// failed part-way, so an aborted order never leaks reserved units.
func (s *OrderService) compensate(ctx context.Context, applied []appliedLine) {
	for _, a := range applied {
		if err := s.products.RestoreStock(ctx, a.productID, a.quantity); err != nil {
			s.logger.Error().Err(err).
				Str("product_id", a.productID).
				Int("quantity", a.quantity).
				Msg("failed to compensate stock decrement")
		}
	}
}

// GetOrder returns the order if the actor owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, actorID string, isAdmin bool, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns all orders for admins, the actor's own otherwise.
func (s *OrderService) ListOrders(ctx context.Context, actorID string, isAdmin bool) ([]*domain.Order, error) {
	if isAdmin {
		return s.orders.ListAllOrders(ctx)
	}
	return s.orders.ListOrdersByUser(ctx, actorID)
}

// UpdateStatus moves an order along the fulfilment state machine. Moving to
// cancelled goes through the cancellation path so stock is restored.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.OrderStatus.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, status)
	}

	if status == domain.OrderStatusCancelled {
		return s.cancel(ctx, order, "")
	}

	from := order.OrderStatus
	order.ApplyStatus(status, time.Now())
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.EventOrderStatusChanged, events.OrderStatusChangedPayload{
		OrderID: order.ID,
		From:    string(from),
		To:      string(status),
	})
	return order, nil
}

// CancelOrder cancels on behalf of the owning user or an admin. Shipped and
// delivered orders are refused. Cancellation restores every line's stock in
// full, the mirror image of creation.
func (s *OrderService) CancelOrder(ctx context.Context, actorID string, isAdmin bool, orderID, reason string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	if !order.CanCancel() {
		return nil, ErrCannotCancel
	}

	return s.cancel(ctx, order, reason)
}

func (s *OrderService) cancel(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	// Persist the terminal status before touching stock. The reverse order
	// would restore units and leave the order cancellable on a persist
	// failure, so a retry would restore them a second time.
	order.OrderStatus = domain.OrderStatusCancelled
	order.CancelReason = reason
	order.UpdatedAt = time.Now()
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			// A product deleted since the order was placed has no stock to
			// restore to; anything else is logged and skipped, matching the
			// per-product best effort of the cancellation contract.
			s.logger.Warn().Err(err).
				Str("order_id", order.ID).
				Str("product_id", item.ProductID).
				Msg("failed to restore stock on cancellation")
		}
	}

	s.publisher.Publish(ctx, events.EventOrderCancelled, events.OrderCancelledPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Reason:  reason,
	})
	return order, nil
}

// MarkPaid records a payment confirmation from the owning user or an admin.
// The payment result blob is stored verbatim; authenticity checks belong to
// the payment gateway, not here.
func (s *OrderService) MarkPaid(ctx context.Context, actorID string, isAdmin bool, orderID string, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = &result
	order.UpdatedAt = now

	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	lines := make([]events.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, events.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	s.publisher.Publish(ctx, events.EventOrderCreated, events.OrderCreatedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       lines,
		TotalAmount: order.TotalAmount,
	})
}
