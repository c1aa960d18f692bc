package repository

import (
	"context"
	"errors"

	"github.com/hanu-sports/storefront/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
)

// ProductFilter narrows and orders a catalog listing. Zero values mean "no
// constraint".
type ProductFilter struct {
	Category    string
	Subcategory string
	MinPrice    float64
	MaxPrice    float64
	Search      string
	Sort        string // price-low, price-high, rating, newest
	Page        int
	Limit       int
}

type ProductPage struct {
	Products    []*domain.Product
	Total       int64
	TotalPages  int
	CurrentPage int
}

// ProductRepository defines the interface for catalog data operations.
// Consumers define this interface, not the MongoDB implementation.
type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, review domain.Review) error

	// DecrementStock atomically checks and decrements: the update applies
	// only when the product's stock covers the quantity, otherwise
	// ErrInsufficientStock is returned and stock is untouched.
	DecrementStock(ctx context.Context, id string, quantity int) error
	// RestoreStock adds the quantity back, used for order cancellation and
	// for compensating a partly-applied order.
	RestoreStock(ctx context.Context, id string, quantity int) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, itemKey string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemKey string) error
	DeleteCart(ctx context.Context, userID string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
