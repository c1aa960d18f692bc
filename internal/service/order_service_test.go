package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProductRepo struct {
	m          sync.Mutex
	products   map[string]*domain.Product
	restores   []string
	lastUpdate map[string]interface{}
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	repo := &mockProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (m *mockProductRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, id string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockProductRepo) RestoreStock(_ context.Context, id string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += quantity
	m.restores = append(m.restores, fmt.Sprintf("%s:%d", id, quantity))
	return nil
}

func (m *mockProductRepo) stock(id string) int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.products[id].Stock
}

func (m *mockProductRepo) ListProducts(context.Context, repository.ProductFilter) (*repository.ProductPage, error) {
	return nil, nil
}
func (m *mockProductRepo) ListByCategory(context.Context, string) ([]*domain.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *mockProductRepo) UpdateProduct(_ context.Context, id string, fields map[string]interface{}) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	m.lastUpdate = fields
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if raw, ok := fields["discount_price"]; ok {
		if v, ok := raw.(float64); ok {
			p.DiscountPrice = &v
		} else {
			p.DiscountPrice = nil
		}
	}
	if v, ok := fields["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	clone := *p
	return &clone, nil
}
func (m *mockProductRepo) DeleteProduct(context.Context, string) error            { return nil }
func (m *mockProductRepo) AddReview(context.Context, string, domain.Review) error { return nil }

type mockOrderRepo struct {
	m         sync.Mutex
	orders    map[string]*domain.Order
	createErr error
	updateErr error // consumed by the next UpdateOrder call
	nextID    int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	order.ID = fmt.Sprintf("order-%d", m.nextID)
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (m *mockOrderRepo) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAllOrders(context.Context) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		err := m.updateErr
		m.updateErr = nil
		return err
	}
	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

type recordedEvent struct {
	eventType string
	payload   interface{}
}

type mockPublisher struct {
	m      sync.Mutex
	events []recordedEvent
}

func (m *mockPublisher) Publish(_ context.Context, eventType string, payload interface{}) {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, recordedEvent{eventType: eventType, payload: payload})
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) types() []string {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.eventType)
	}
	return out
}

func discount(v float64) *float64 { return &v }

func newOrderService(products *mockProductRepo, orders *mockOrderRepo, pub *mockPublisher) *OrderService {
	return NewOrderService(orders, products, nil, pub, zerolog.Nop())
}

var (
	shipTo = domain.Address{Street: "1 Main St", City: "Pune", State: "MH", ZipCode: "411001", Country: "IN"}
	billTo = domain.Address{Street: "2 Side St", City: "Pune", State: "MH", ZipCode: "411001", Country: "IN"}
)

func TestCreateOrder_DiscountedProduct(t *testing.T) {
	products := newMockProductRepo(&domain.Product{
		ID: "A", Name: "Match Jersey", Price: 100, DiscountPrice: discount(80), Stock: 5,
	})
	orders := newMockOrderRepo()
	pub := &mockPublisher{}
	sut := newOrderService(products, orders, pub)

	order, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{{ProductID: "A", Quantity: 3}},
		shipTo, billTo, domain.PaymentCreditCard)

	require.NoError(t, err)
	assert.Equal(t, 2, products.stock("A"))
	assert.Equal(t, 240.0, order.Subtotal)
	assert.Equal(t, 24.0, order.TaxAmount)
	assert.Equal(t, 10.0, order.ShippingAmount)
	assert.Equal(t, 274.0, order.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, order.OrderStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 80.0, order.Items[0].Price, "effective price is the discount price")
	assert.Equal(t, "Match Jersey", order.Items[0].Name)
	assert.Equal(t, []string{"OrderCreated"}, pub.types())
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Match Jersey", Price: 100, Stock: 2})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{{ProductID: "A", Quantity: 3}},
		shipTo, billTo, domain.PaymentPayPal)

	require.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.ErrorContains(t, err, "Match Jersey")
	assert.Nil(t, order)
	assert.Equal(t, 2, products.stock("A"), "stock untouched")
	assert.Empty(t, orders.orders, "no order persisted")
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	products := newMockProductRepo()
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})

	_, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{{ProductID: "ghost", Quantity: 1}},
		shipTo, billTo, domain.PaymentPayPal)

	require.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.ErrorContains(t, err, "ghost")
}

func TestCreateOrder_LaterLineFailure_CompensatesEarlierDecrements(t *testing.T) {
	products := newMockProductRepo(
		&domain.Product{ID: "A", Name: "Jersey", Price: 50, Stock: 10},
		&domain.Product{ID: "B", Name: "Boots", Price: 120, Stock: 1},
	)
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})

	_, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{
			{ProductID: "A", Quantity: 4},
			{ProductID: "B", Quantity: 2}, // fails, A must be restored
		},
		shipTo, billTo, domain.PaymentCreditCard)

	require.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.Equal(t, 10, products.stock("A"), "earlier decrement compensated")
	assert.Equal(t, 1, products.stock("B"))
	assert.Equal(t, []string{"A:4"}, products.restores)
	assert.Empty(t, orders.orders)
}

func TestCreateOrder_PersistFailure_CompensatesAllDecrements(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 50, Stock: 10})
	orders := newMockOrderRepo()
	orders.createErr = fmt.Errorf("database down")
	sut := newOrderService(products, orders, &mockPublisher{})

	_, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{{ProductID: "A", Quantity: 4}},
		shipTo, billTo, domain.PaymentCreditCard)

	require.ErrorContains(t, err, "database down")
	assert.Equal(t, 10, products.stock("A"))
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	sut := newOrderService(newMockProductRepo(), newMockOrderRepo(), &mockPublisher{})

	_, err := sut.CreateOrder(context.Background(), "u1", nil, shipTo, billTo, domain.PaymentCreditCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_MergedVariantLinesPriceIndependently(t *testing.T) {
	products := newMockProductRepo(
		&domain.Product{ID: "A", Name: "Jersey", Price: 100, DiscountPrice: discount(80), Stock: 10},
		&domain.Product{ID: "B", Name: "Socks", Price: 10, Stock: 10},
	)
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{
			{ProductID: "A", Quantity: 1, Size: "M"},
			{ProductID: "A", Quantity: 1, Size: "L"},
			{ProductID: "B", Quantity: 2},
		},
		shipTo, billTo, domain.PaymentBankTransfer)

	require.NoError(t, err)
	// 80 + 80 + 20 = 180 subtotal, 18 tax, 10 shipping
	assert.Equal(t, 180.0, order.Subtotal)
	assert.Equal(t, 208.0, order.TotalAmount)
	assert.Equal(t, 8, products.stock("A"))
	assert.Equal(t, 8, products.stock("B"))
}

func createTestOrder(t *testing.T, sut *OrderService, products *mockProductRepo) *domain.Order {
	t.Helper()
	order, err := sut.CreateOrder(context.Background(), "u1",
		[]domain.CartItem{{ProductID: "A", Quantity: 3}},
		shipTo, billTo, domain.PaymentCreditCard)
	require.NoError(t, err)
	return order
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	pub := &mockPublisher{}
	sut := newOrderService(products, orders, pub)
	order := createTestOrder(t, sut, products)
	require.Equal(t, 2, products.stock("A"))

	cancelled, err := sut.CancelOrder(context.Background(), "u1", false, order.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)
	assert.Equal(t, 5, products.stock("A"), "stock fully restored")
	assert.Equal(t, []string{"OrderCreated", "OrderCancelled"}, pub.types())
}

func TestCancelOrder_PersistFailureLeavesStockUntouched(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)
	require.Equal(t, 2, products.stock("A"))

	orders.updateErr = fmt.Errorf("database down")
	_, err := sut.CancelOrder(context.Background(), "u1", false, order.ID, "changed my mind")
	require.ErrorContains(t, err, "database down")
	assert.Equal(t, 2, products.stock("A"), "no restore when the cancellation did not persist")

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.OrderStatus)

	// The retry succeeds and restores the units exactly once.
	_, err = sut.CancelOrder(context.Background(), "u1", false, order.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 5, products.stock("A"))
	assert.Equal(t, []string{"A:3"}, products.restores)
}

func TestCancelOrder_ShippedIsRejected(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	_, err := sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = sut.CancelOrder(context.Background(), "u1", false, order.ID, "too late")
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Equal(t, 2, products.stock("A"), "no stock restored")
}

func TestCancelOrder_OtherUserForbidden(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	_, err := sut.CancelOrder(context.Background(), "intruder", false, order.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin may cancel anyone's order.
	_, err = sut.CancelOrder(context.Background(), "admin", true, order.ID, "fraud check")
	assert.NoError(t, err)
}

func TestUpdateStatus_WalksStateMachine(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	_, err := sut.MarkPaid(context.Background(), "u1", false, order.ID, domain.PaymentResult{ID: "pay-1", Status: "COMPLETED"})
	require.NoError(t, err)

	got, err := sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.NotNil(t, got.PaidAt, "processing stamps paidAt for paid orders")

	got, err = sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, got.IsShipped)
	assert.NotNil(t, got.ShippedAt)

	got, err = sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.True(t, got.IsDelivered)
	assert.NotNil(t, got.DeliveredAt)

	_, err = sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_SkippingAStageIsRejected(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	_, err := sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = sut.UpdateStatus(context.Background(), order.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_CancelRestoresStock(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	got, err := sut.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.OrderStatus)
	assert.Equal(t, 5, products.stock("A"))
}

func TestMarkPaid_StoresPaymentResult(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	got, err := sut.MarkPaid(context.Background(), "u1", false, order.ID, domain.PaymentResult{
		ID: "pay-9", Status: "COMPLETED", EmailAddress: "shopper@example.com",
	})
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.NotNil(t, got.PaidAt)
	require.NotNil(t, got.PaymentResult)
	assert.Equal(t, "pay-9", got.PaymentResult.ID)

	_, err = sut.MarkPaid(context.Background(), "intruder", false, order.ID, domain.PaymentResult{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetOrder_AccessControl(t *testing.T) {
	products := newMockProductRepo(&domain.Product{ID: "A", Name: "Jersey", Price: 100, Stock: 5})
	orders := newMockOrderRepo()
	sut := newOrderService(products, orders, &mockPublisher{})
	order := createTestOrder(t, sut, products)

	_, err := sut.GetOrder(context.Background(), "u1", false, order.ID)
	assert.NoError(t, err)

	_, err = sut.GetOrder(context.Background(), "intruder", false, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = sut.GetOrder(context.Background(), "admin", true, order.ID)
	assert.NoError(t, err)

	_, err = sut.GetOrder(context.Background(), "u1", false, "missing")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}
